package transport

import (
	"time"

	"qdp/pkg/queue"
)

// MemTransport is a lossless, non-reordering, in-memory Transport backed
// by a pair of blocking queues, one per direction. It is the Go analogue
// of the original source's IdealNetwork and is used by tests and
// single-process deployments where producer and consumer share an
// address space.
type MemTransport struct {
	toConsumer *queue.Queue[[]byte]
	toProducer *queue.Queue[[]byte]
}

// NewMemTransport creates a fresh in-memory transport.
func NewMemTransport() *MemTransport {
	return &MemTransport{
		toConsumer: queue.New[[]byte](),
		toProducer: queue.New[[]byte](),
	}
}

func (m *MemTransport) ProducerSend(data []byte) { m.toConsumer.Enqueue(data) }

func (m *MemTransport) ProducerRecv(timeout time.Duration) ([]byte, bool) {
	return m.toProducer.DequeueTimeout(timeout)
}

func (m *MemTransport) ConsumerSend(data []byte) { m.toProducer.Enqueue(data) }

func (m *MemTransport) ConsumerRecv(timeout time.Duration) ([]byte, bool) {
	return m.toConsumer.DequeueTimeout(timeout)
}

// ProducerToConsumerSize reports the number of datagrams currently
// buffered on the data path, for tests that inspect transport backlog.
func (m *MemTransport) ProducerToConsumerSize() int { return m.toConsumer.Size() }

// ConsumerToProducerSize reports the number of datagrams currently
// buffered on the ack path.
func (m *MemTransport) ConsumerToProducerSize() int { return m.toProducer.Size() }

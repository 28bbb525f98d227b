// Package qdp bundles a producer, a consumer, and a shared transport into
// a single reliable, ordered, one-way queue: values pushed in on one end
// of a ReliableQueue come out the other end in order and never more than
// once, whatever the transport in between does to the datagrams carrying
// them. A sequence number that is still missing when the consumer's skip
// timeout expires is skipped: its value is not delivered, and the skip is
// reported through the missed-frame callback.
package qdp

import (
	"time"

	"qdp/pkg/consumer"
	"qdp/pkg/frame"
	"qdp/pkg/producer"
	"qdp/pkg/transport"
)

// ReliableQueue is the Go analogue of the original source's ReliableQ<T>:
// it owns one Producer, one Consumer, and the Transport they share, and
// is not copyable (copy it by sharing a pointer, never a value).
type ReliableQueue[T any] struct {
	_ noCopy

	tr       transport.Transport
	producer *producer.Producer[T]
	consumer *consumer.Consumer[T]
}

// noCopy embeds into ReliableQueue to make `go vet`'s copylocks check
// flag accidental copies; it has no behavior of its own.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Option configures both the Producer and Consumer half of a
// ReliableQueue.
type Option struct {
	producer []producer.Option
	consumer []consumer.Option
}

// WithMaxPendingFrames bounds the producer's unacknowledged window.
func WithMaxPendingFrames(n int) Option {
	return Option{producer: []producer.Option{producer.WithMaxPendingFrames(n)}}
}

// WithResendPeriod overrides how often the producer retransmits an
// unacknowledged frame.
func WithResendPeriod(d time.Duration) Option {
	return Option{producer: []producer.Option{producer.WithResendPeriod(d)}}
}

// WithSkipTimeout overrides how long the consumer waits for a missing
// frame before treating it as permanently lost.
func WithSkipTimeout(d time.Duration) Option {
	return Option{consumer: []consumer.Option{consumer.WithSkipTimeout(d)}}
}

// WithReceiveTimeout overrides the consumer worker's per-iteration
// transport receive timeout.
func WithReceiveTimeout(d time.Duration) Option {
	return Option{consumer: []consumer.Option{consumer.WithReceiveTimeout(d)}}
}

// WithAckIdlePeriod overrides the consumer's idle re-ack rate.
func WithAckIdlePeriod(d time.Duration) Option {
	return Option{consumer: []consumer.Option{consumer.WithAckIdlePeriod(d)}}
}

// WithProducerOptions folds in producer.Options built elsewhere, such as
// from a parsed config file.
func WithProducerOptions(opts ...producer.Option) Option {
	return Option{producer: opts}
}

// WithConsumerOptions folds in consumer.Options built elsewhere, such as
// from a parsed config file.
func WithConsumerOptions(opts ...consumer.Option) Option {
	return Option{consumer: opts}
}

// New builds a ReliableQueue over tr, framing records with codec.
func New[T any](tr transport.Transport, codec frame.Codec[T], opts ...Option) *ReliableQueue[T] {
	var producerOpts []producer.Option
	var consumerOpts []consumer.Option
	for _, o := range opts {
		producerOpts = append(producerOpts, o.producer...)
		consumerOpts = append(consumerOpts, o.consumer...)
	}

	return &ReliableQueue[T]{
		tr:       tr,
		producer: producer.New[T](tr, codec, producerOpts...),
		consumer: consumer.New[T](tr, codec, consumerOpts...),
	}
}

// Enqueue hands a record to the producer side. It never blocks.
func (q *ReliableQueue[T]) Enqueue(record T) {
	q.producer.Enqueue(record)
}

// Dequeue blocks until a delivered record is available on the consumer
// side.
func (q *ReliableQueue[T]) Dequeue() T {
	return q.consumer.Dequeue()
}

// SetMissedFrameCallback installs a callback invoked whenever the
// consumer side skips past a permanently lost sequence number.
func (q *ReliableQueue[T]) SetMissedFrameCallback(cb consumer.MissedFrameCallback) {
	q.consumer.SetMissedFrameCallback(cb)
}

// Size reports records in flight across all three stages: queued on the
// producer side, in transit on the transport, and delivered but not yet
// dequeued on the consumer side. Like the original source's Size(), this
// is inherently racy against concurrent Enqueue/Dequeue calls, but is
// useful for tests and monitoring.
func (q *ReliableQueue[T]) Size() int {
	producerSide := q.producer.Size()
	consumerSide := q.consumer.Size()

	inTransit := 0
	if sized, ok := q.tr.(interface{ ProducerToConsumerSize() int }); ok {
		inTransit = sized.ProducerToConsumerSize()
	}

	return producerSide + inTransit + consumerSide
}

// Stop shuts down both the consumer and producer workers and waits for
// them to exit, in that order, matching the original's destructor. Safe
// to call more than once.
func (q *ReliableQueue[T]) Stop() {
	q.consumer.Stop()
	q.producer.Stop()
}

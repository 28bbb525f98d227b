// Package consumer implements the QDP consumer endpoint: it receives
// frames from a transport, rejects duplicates and out-of-window arrivals,
// buffers out-of-order frames, delivers a contiguous prefix to the
// application in sequence order, acknowledges cumulatively, and advances
// past a missing sequence number after a bounded wait.
package consumer

import (
	"log"
	"sync"
	"time"

	"qdp/pkg/frame"
	"qdp/pkg/queue"
	"qdp/pkg/seqnum"
	"qdp/pkg/transport"
)

// Tuning constants, defaults per spec.md §6.
const (
	DefaultSkipTimeout          = 200 * time.Millisecond
	DefaultWorkerReceiveTimeout = 100 * time.Millisecond
	DefaultAckIdlePeriod        = 200 * time.Millisecond
)

// MissedFrameCallback is invoked whenever the worker skips past a
// sequence number rather than delivering it.
type MissedFrameCallback func(seqNo uint16)

// Consumer owns a worker goroutine that receives frames, buffers
// out-of-order arrivals in a pending-receive map keyed by sequence
// number, and delivers a contiguous prefix into an output queue.
type Consumer[T any] struct {
	codec     frame.Codec[T]
	transport transport.Transport

	skipTimeout   time.Duration
	recvTimeout   time.Duration
	ackIdlePeriod time.Duration

	out *queue.Queue[T]

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	missedMu sync.Mutex
	missed   MissedFrameCallback

	// worker-local state: touched only by run, no locking needed.
	frontier     frame.ID
	pending      map[uint16]frame.Frame[T]
	lastDelivery time.Time
	lastAckSent  time.Time
}

// Option configures a Consumer at construction.
type Option func(*config)

type config struct {
	skipTimeout   time.Duration
	recvTimeout   time.Duration
	ackIdlePeriod time.Duration
}

// WithSkipTimeout overrides DefaultSkipTimeout.
func WithSkipTimeout(d time.Duration) Option {
	return func(c *config) { c.skipTimeout = d }
}

// WithReceiveTimeout overrides DefaultWorkerReceiveTimeout.
func WithReceiveTimeout(d time.Duration) Option {
	return func(c *config) { c.recvTimeout = d }
}

// WithAckIdlePeriod overrides DefaultAckIdlePeriod: the maximum rate at
// which the consumer re-sends its current cumulative ack while idle.
func WithAckIdlePeriod(d time.Duration) Option {
	return func(c *config) { c.ackIdlePeriod = d }
}

// New constructs a Consumer over the given transport and starts its
// worker goroutine. The delivery frontier starts at (0, 0), per spec.md
// §3.
func New[T any](tr transport.Transport, codec frame.Codec[T], opts ...Option) *Consumer[T] {
	cfg := config{
		skipTimeout:   DefaultSkipTimeout,
		recvTimeout:   DefaultWorkerReceiveTimeout,
		ackIdlePeriod: DefaultAckIdlePeriod,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Consumer[T]{
		codec:         codec,
		transport:     tr,
		skipTimeout:   cfg.skipTimeout,
		recvTimeout:   cfg.recvTimeout,
		ackIdlePeriod: cfg.ackIdlePeriod,
		out:           queue.New[T](),
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		pending:       make(map[uint16]frame.Frame[T]),
		lastDelivery:  time.Now(),
	}

	go c.run()
	return c
}

// Dequeue blocks until a delivered record is available.
func (c *Consumer[T]) Dequeue() T {
	return c.out.Dequeue()
}

// Size reports the number of delivered records not yet taken by the
// application.
func (c *Consumer[T]) Size() int {
	return c.out.Size()
}

// SetMissedFrameCallback installs a callback invoked whenever the worker
// skips past a permanently lost sequence number. It may be called at any
// time while the worker runs; nil disables the callback.
func (c *Consumer[T]) SetMissedFrameCallback(cb MissedFrameCallback) {
	c.missedMu.Lock()
	c.missed = cb
	c.missedMu.Unlock()
}

// Stop requests the worker to stop and waits for it. Safe to call more
// than once.
func (c *Consumer[T]) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.done
}

func (c *Consumer[T]) run() {
	defer close(c.done)

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		advanced := false
		if data, ok := c.transport.ConsumerRecv(c.recvTimeout); ok {
			c.receiveDatagram(data)
		}
		advanced = c.deliverPass()
		c.maybeAck(advanced)
	}
}

func (c *Consumer[T]) receiveDatagram(data []byte) {
	f, err := frame.Decode(data, c.codec)
	if err != nil {
		log.Printf("consumer: discarding malformed datagram: %v", err)
		return
	}
	if !f.HasBody {
		return
	}
	if c.isDuplicate(f.Header.ID) {
		return
	}
	c.pending[f.Header.ID.SeqNo] = f
}

// isDuplicate implements the duplicate / out-of-window test of spec.md
// §4.5: a frame is rejected if its sequence number is at or behind the
// frontier, if it carries an epoch older than the frontier's (a stale
// retransmission from before the last wrap), or if it is already
// buffered.
func (c *Consumer[T]) isDuplicate(id frame.ID) bool {
	if seqnum.InExclusionWindow(id.SeqNo, c.frontier.SeqNo) {
		return true
	}
	if id.TxEpoch < c.frontier.TxEpoch {
		return true
	}
	if _, exists := c.pending[id.SeqNo]; exists {
		return true
	}
	return false
}

// deliverPass delivers every contiguous successor of the frontier
// currently buffered, and applies the skip-timeout when the immediate
// successor is missing. It returns whether the frontier advanced.
func (c *Consumer[T]) deliverPass() bool {
	advanced := false

	for {
		nextSeq := c.frontier.SeqNo + 1
		f, ok := c.pending[nextSeq]

		if !ok {
			if time.Since(c.lastDelivery) <= c.skipTimeout {
				return advanced
			}

			c.frontier = frame.ID{SeqNo: nextSeq, TxEpoch: c.frontier.TxEpoch}
			c.lastDelivery = time.Now()
			advanced = true
			c.reportMissed(nextSeq)
			continue
		}

		c.out.Enqueue(f.Body)
		delete(c.pending, nextSeq)
		c.frontier = f.Header.ID
		c.lastDelivery = time.Now()
		advanced = true
	}
}

func (c *Consumer[T]) reportMissed(seqNo uint16) {
	c.missedMu.Lock()
	cb := c.missed
	c.missedMu.Unlock()
	if cb != nil {
		cb(seqNo)
	}
}

// maybeAck emits a cumulative ack whenever the frontier advanced this
// iteration, and otherwise at most once per ackIdlePeriod while idle.
// This resolves spec.md's Open Question 1: the final iteration of the
// original source stopped acking from its worker loop entirely, which
// would stall the producer's retransmit-on-timeout recovery forever.
func (c *Consumer[T]) maybeAck(advanced bool) {
	if !advanced && time.Since(c.lastAckSent) < c.ackIdlePeriod {
		return
	}

	ack := frame.NewAck[T](c.frontier.SeqNo)
	c.transport.ConsumerSend(frame.Encode(ack, c.codec))
	c.lastAckSent = time.Now()
}

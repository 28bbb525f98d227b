// Package producer implements the QDP producer endpoint: it accepts
// application records, assigns them sequence numbers, and drives them to
// the consumer despite an unreliable transport, retransmitting the oldest
// unacknowledged frame until it is cumulatively acknowledged.
package producer

import (
	"container/list"
	"log"
	"sync"
	"time"

	"qdp/pkg/frame"
	"qdp/pkg/queue"
	"qdp/pkg/transport"
)

// Tuning constants, defaults per spec.md §6.
const (
	DefaultMaxPendingFrames = 8
	DefaultResendPeriod     = 100 * time.Millisecond
)

// pendingFrame is one outstanding, transmitted-but-unacknowledged frame,
// the Go analogue of the original source's mPendingFrames list entries.
type pendingFrame struct {
	raw      []byte
	seqNo    uint16
	lastSent time.Time
}

// Producer owns a worker goroutine that pulls records off an input queue,
// frames and sends them, and retransmits the head of its pending window
// on a timer until it is acknowledged.
type Producer[T any] struct {
	codec     frame.Codec[T]
	transport transport.Transport

	maxPendingFrames int
	resendPeriod     time.Duration

	in *queue.Queue[T]

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// worker-local state: touched only by run, no locking needed.
	nextSeqNo uint16
	startTime time.Time
	pending   *list.List // of *pendingFrame, ordered oldest-first
}

// Option configures a Producer at construction.
type Option func(*config)

type config struct {
	maxPendingFrames int
	resendPeriod     time.Duration
}

// WithMaxPendingFrames overrides DefaultMaxPendingFrames.
func WithMaxPendingFrames(n int) Option {
	return func(c *config) { c.maxPendingFrames = n }
}

// WithResendPeriod overrides DefaultResendPeriod.
func WithResendPeriod(d time.Duration) Option {
	return func(c *config) { c.resendPeriod = d }
}

// New constructs a Producer over the given transport and starts its
// worker goroutine. The sequence number of the first frame sent is 1, per
// spec.md §4.4.
func New[T any](tr transport.Transport, codec frame.Codec[T], opts ...Option) *Producer[T] {
	cfg := config{
		maxPendingFrames: DefaultMaxPendingFrames,
		resendPeriod:     DefaultResendPeriod,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Producer[T]{
		codec:            codec,
		transport:        tr,
		maxPendingFrames: cfg.maxPendingFrames,
		resendPeriod:     cfg.resendPeriod,
		in:               queue.New[T](),
		stopCh:           make(chan struct{}),
		done:             make(chan struct{}),
		nextSeqNo:        1,
		startTime:        time.Now(),
		pending:          list.New(),
	}

	go p.run()
	return p
}

// Enqueue hands a record to the producer worker. It never blocks.
func (p *Producer[T]) Enqueue(record T) {
	p.in.Enqueue(record)
}

// Size reports the number of records queued but not yet framed.
func (p *Producer[T]) Size() int {
	return p.in.Size()
}

// MaxPendingFrames exposes the fixed window size.
func (p *Producer[T]) MaxPendingFrames() int {
	return p.maxPendingFrames
}

// Stop requests the worker to stop and waits for it. Safe to call more
// than once. Any unacknowledged pending frames are discarded.
func (p *Producer[T]) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	<-p.done
}

func (p *Producer[T]) txEpoch() uint16 {
	return uint16(time.Since(p.startTime) / time.Second)
}

func (p *Producer[T]) run() {
	defer close(p.done)

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		timeTillNextResend := p.resendPendingIfNeeded()

		if p.pending.Len() >= p.maxPendingFrames {
			p.sleepOrStop(timeTillNextResend)
		} else if record, ok := p.in.DequeueTimeout(timeTillNextResend); ok {
			p.sendNew(record)
		}

		p.drainAcks()
	}
}

// sleepOrStop sleeps for d, but wakes early if Stop is called.
func (p *Producer[T]) sleepOrStop(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-p.stopCh:
	}
}

// resendPendingIfNeeded retransmits the head of the pending window if its
// last send was at least resendPeriod ago, and returns how long until the
// next retransmission is due.
func (p *Producer[T]) resendPendingIfNeeded() time.Duration {
	front := p.pending.Front()
	if front == nil {
		return p.resendPeriod
	}

	head := front.Value.(*pendingFrame)
	since := time.Since(head.lastSent)
	if since >= p.resendPeriod {
		p.transport.ProducerSend(head.raw)
		head.lastSent = time.Now()
		return p.resendPeriod
	}
	return p.resendPeriod - since
}

func (p *Producer[T]) sendNew(record T) {
	seqNo := p.nextSeqNo
	p.nextSeqNo++

	id := frame.ID{SeqNo: seqNo, TxEpoch: p.txEpoch()}
	f := frame.NewData(id, record)
	raw := frame.Encode(f, p.codec)

	p.transport.ProducerSend(raw)
	p.pending.PushBack(&pendingFrame{raw: raw, seqNo: seqNo, lastSent: time.Now()})
}

// drainAcks applies every acknowledgement currently available on the
// transport, non-blocking.
func (p *Producer[T]) drainAcks() {
	for {
		data, ok := p.transport.ProducerRecv(0)
		if !ok {
			return
		}

		ackFrame, err := frame.Decode(data, p.codec)
		if err != nil {
			log.Printf("producer: discarding malformed ack: %v", err)
			continue
		}

		p.applyAck(ackFrame.Header.ID.SeqNo)
	}
}

// applyAck removes every pending-send entry with sequence number <= ack,
// implementing cumulative, idempotent acknowledgement (spec.md §4.4). An
// ack whose sequence number matches no pending entry is stale or
// out-of-order and is ignored.
func (p *Producer[T]) applyAck(ack uint16) {
	var cut *list.Element
	for e := p.pending.Front(); e != nil; e = e.Next() {
		if e.Value.(*pendingFrame).seqNo == ack {
			cut = e
			break
		}
	}
	if cut == nil {
		return
	}

	for e := p.pending.Front(); e != nil; {
		next := e.Next()
		p.pending.Remove(e)
		if e == cut {
			break
		}
		e = next
	}

	if front := p.pending.Front(); front != nil {
		front.Value.(*pendingFrame).lastSent = time.Now()
	}
}

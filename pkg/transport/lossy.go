package transport

import (
	"math/rand/v2"
	"sync"
	"time"
)

// LossyOptions configures LossyTransport's adversarial behavior. Each
// probability applies independently and per datagram, per spec.md's
// stress-test scenario: a transport that loses, duplicates, and delays
// each datagram with some probability.
type LossyOptions struct {
	LossProb      float64       // probability a send is silently dropped
	DuplicateProb float64       // probability a send is delivered twice
	MaxDelay      time.Duration // upper bound of an added random delay
}

// LossyTransport wraps a Transport and perturbs every send according to
// Options, without altering payload contents when a datagram is in fact
// delivered. It generalizes the one-off adversarial harness the original
// source's stress test improvised, into a reusable test double.
type LossyTransport struct {
	inner Transport
	opts  LossyOptions

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewLossyTransport wraps inner with the given options. seed makes the
// adversarial schedule reproducible across test runs.
func NewLossyTransport(inner Transport, opts LossyOptions, seed uint64) *LossyTransport {
	return &LossyTransport{
		inner: inner,
		opts:  opts,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// roll draws the next float64 from rng. ProducerSend and ConsumerSend run
// on different goroutines (the producer and consumer workers) and share
// this one Rand, so every draw is serialized through rngMu.
func (l *LossyTransport) roll() float64 {
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return l.rng.Float64()
}

func (l *LossyTransport) rollDelay(max time.Duration) time.Duration {
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return time.Duration(l.rng.Int64N(int64(max) + 1))
}

func (l *LossyTransport) perturbedSend(send func([]byte)) func([]byte) {
	return func(data []byte) {
		if l.roll() < l.opts.LossProb {
			return
		}

		cp := append([]byte(nil), data...)
		l.dispatch(send, cp)

		if l.roll() < l.opts.DuplicateProb {
			l.dispatch(send, append([]byte(nil), data...))
		}
	}
}

func (l *LossyTransport) dispatch(send func([]byte), data []byte) {
	if l.opts.MaxDelay <= 0 {
		send(data)
		return
	}
	delay := l.rollDelay(l.opts.MaxDelay)
	if delay == 0 {
		send(data)
		return
	}
	go func() {
		time.Sleep(delay)
		send(data)
	}()
}

func (l *LossyTransport) ProducerSend(data []byte) {
	l.perturbedSend(l.inner.ProducerSend)(data)
}

func (l *LossyTransport) ConsumerSend(data []byte) {
	l.perturbedSend(l.inner.ConsumerSend)(data)
}

func (l *LossyTransport) ProducerRecv(timeout time.Duration) ([]byte, bool) {
	return l.inner.ProducerRecv(timeout)
}

func (l *LossyTransport) ConsumerRecv(timeout time.Duration) ([]byte, bool) {
	return l.inner.ConsumerRecv(timeout)
}

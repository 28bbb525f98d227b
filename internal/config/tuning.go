package config

import (
	"time"

	"qdp/pkg/consumer"
	"qdp/pkg/producer"
)

// ProducerOptions translates a Tuning block into producer.Options,
// omitting any field left at its zero value so the package defaults
// apply.
func (t Tuning) ProducerOptions() []producer.Option {
	var opts []producer.Option
	if t.MaxPendingFrames > 0 {
		opts = append(opts, producer.WithMaxPendingFrames(t.MaxPendingFrames))
	}
	if t.ResendPeriodMs > 0 {
		opts = append(opts, producer.WithResendPeriod(time.Duration(t.ResendPeriodMs)*time.Millisecond))
	}
	return opts
}

// ConsumerOptions translates a Tuning block into consumer.Options,
// omitting any field left at its zero value so the package defaults
// apply.
func (t Tuning) ConsumerOptions() []consumer.Option {
	var opts []consumer.Option
	if t.SkipTimeoutMs > 0 {
		opts = append(opts, consumer.WithSkipTimeout(time.Duration(t.SkipTimeoutMs)*time.Millisecond))
	}
	if t.ReceiveTimeoutMs > 0 {
		opts = append(opts, consumer.WithReceiveTimeout(time.Duration(t.ReceiveTimeoutMs)*time.Millisecond))
	}
	if t.AckIdlePeriodMs > 0 {
		opts = append(opts, consumer.WithAckIdlePeriod(time.Duration(t.AckIdlePeriodMs)*time.Millisecond))
	}
	return opts
}

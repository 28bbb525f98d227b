package config

import "net"

// ProducerEndpoint is the "producer" section of a producer YAML config: it
// names where the consumer listens and optionally overrides the
// producer's tuning constants.
type ProducerEndpoint struct {
	ConsumerAddr string `yaml:"consumer_address"`
	Tuning       Tuning `yaml:"tuning"`
}

// ConsumerEndpoint is the "consumer" section of a consumer YAML config: it
// names the local address to listen on and optionally overrides the
// consumer's tuning constants.
type ConsumerEndpoint struct {
	ListenAddr string `yaml:"listen_address"`
	Tuning     Tuning `yaml:"tuning"`
}

// Tuning holds the millisecond overrides a config file may supply for the
// protocol's timing constants. A zero value means "use the package
// default"; durations are expressed in whole milliseconds since that's
// cheap to eyeball in an ops config.
type Tuning struct {
	MaxPendingFrames int `yaml:"max_pending_frames"`
	ResendPeriodMs   int `yaml:"resend_period_ms"`
	SkipTimeoutMs    int `yaml:"skip_timeout_ms"`
	ReceiveTimeoutMs int `yaml:"receive_timeout_ms"`
	AckIdlePeriodMs  int `yaml:"ack_idle_period_ms"`
}

// RawProducerConfig structurally mirrors a producer YAML file.
type RawProducerConfig struct {
	Producer ProducerEndpoint `yaml:"producer"`
}

// RawConsumerConfig structurally mirrors a consumer YAML file.
type RawConsumerConfig struct {
	Consumer ConsumerEndpoint `yaml:"consumer"`
}

// ReadyProducerConfig is a producer config with its address resolved.
type ReadyProducerConfig struct {
	ConsumerAddr *net.UDPAddr
	Tuning       Tuning
}

// ReadyConsumerConfig is a consumer config with its address resolved.
type ReadyConsumerConfig struct {
	ListenAddr *net.UDPAddr
	Tuning     Tuning
}

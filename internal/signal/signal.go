// Package signal generates the sine-wave test payload used by the
// example producer and consumer programs.
package signal

import (
	"math"
	"time"
)

// Sample is one reading: a signal value and the time since the producer
// started, in seconds. It is a fixed-width record suitable for
// frame.FixedCodec.
type Sample struct {
	Value         float64
	TimeStampSecs float64
}

// Generate returns sin(2*pi*f) where f is the fractional part of a
// one-second period elapsed since start.
func Generate(start time.Time, now time.Time) Sample {
	elapsed := now.Sub(start)
	secsSinceStart := elapsed.Seconds()

	fractional := math.Mod(elapsed.Seconds(), 1.0)
	value := math.Sin(fractional * 2.0 * math.Pi)

	return Sample{Value: value, TimeStampSecs: secsSinceStart}
}

package transport

import (
	"testing"
	"time"
)

func TestMemTransportRoundTrip(t *testing.T) {
	tr := NewMemTransport()

	tr.ProducerSend([]byte("data"))
	got, ok := tr.ConsumerRecv(time.Second)
	if !ok || string(got) != "data" {
		t.Fatalf("ConsumerRecv() = (%q, %v), want (\"data\", true)", got, ok)
	}

	tr.ConsumerSend([]byte("ack"))
	got, ok = tr.ProducerRecv(time.Second)
	if !ok || string(got) != "ack" {
		t.Fatalf("ProducerRecv() = (%q, %v), want (\"ack\", true)", got, ok)
	}
}

func TestMemTransportRecvTimesOutWhenEmpty(t *testing.T) {
	tr := NewMemTransport()

	start := time.Now()
	_, ok := tr.ConsumerRecv(30 * time.Millisecond)
	if ok {
		t.Fatal("ConsumerRecv() succeeded on an empty transport")
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("ConsumerRecv() returned before its timeout elapsed")
	}
}

func TestMemTransportBacklogSizes(t *testing.T) {
	tr := NewMemTransport()
	tr.ProducerSend([]byte("a"))
	tr.ProducerSend([]byte("b"))

	if got := tr.ProducerToConsumerSize(); got != 2 {
		t.Fatalf("ProducerToConsumerSize() = %d, want 2", got)
	}
	if got := tr.ConsumerToProducerSize(); got != 0 {
		t.Fatalf("ConsumerToProducerSize() = %d, want 0", got)
	}
}

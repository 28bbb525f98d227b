package transport

import (
	"testing"
	"time"
)

func TestUDPTransportRoundTrip(t *testing.T) {
	consumer, err := NewUDPConsumerTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewUDPConsumerTransport() error: %v", err)
	}
	defer consumer.Close()

	producer, err := NewUDPProducerTransport(consumer.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPProducerTransport() error: %v", err)
	}
	defer producer.Close()

	producer.ProducerSend([]byte("hello"))
	got, ok := consumer.ConsumerRecv(time.Second)
	if !ok || string(got) != "hello" {
		t.Fatalf("ConsumerRecv() = (%q, %v), want (\"hello\", true)", got, ok)
	}

	// After that first receipt the consumer has learned the producer's
	// return address, so an ack now reaches it.
	consumer.ConsumerSend([]byte("ack"))
	got, ok = producer.ProducerRecv(time.Second)
	if !ok || string(got) != "ack" {
		t.Fatalf("ProducerRecv() = (%q, %v), want (\"ack\", true)", got, ok)
	}
}

func TestUDPTransportConsumerDropsAckBeforeLearningPeer(t *testing.T) {
	consumer, err := NewUDPConsumerTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewUDPConsumerTransport() error: %v", err)
	}
	defer consumer.Close()

	producer, err := NewUDPProducerTransport(consumer.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPProducerTransport() error: %v", err)
	}
	defer producer.Close()

	// No data datagram has arrived yet, so the consumer hasn't learned
	// the producer's address: this send must be a silent no-op.
	consumer.ConsumerSend([]byte("ack"))

	if _, ok := producer.ProducerRecv(50 * time.Millisecond); ok {
		t.Fatal("ProducerRecv() should time out: ack was sent before peer was learned")
	}
}

func TestUDPTransportRecvTimesOut(t *testing.T) {
	consumer, err := NewUDPConsumerTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewUDPConsumerTransport() error: %v", err)
	}
	defer consumer.Close()

	start := time.Now()
	if _, ok := consumer.ConsumerRecv(30 * time.Millisecond); ok {
		t.Fatal("ConsumerRecv() succeeded with nothing sent")
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("ConsumerRecv() returned before its timeout elapsed")
	}
}

func TestNewUDPConsumerTransportBadAddressFails(t *testing.T) {
	if _, err := NewUDPConsumerTransport("not-an-address"); err == nil {
		t.Fatal("NewUDPConsumerTransport() with a bad address should return an error, not panic/exit")
	}
}

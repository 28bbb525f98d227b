package producer

import (
	"testing"
	"time"

	"qdp/pkg/frame"
	"qdp/pkg/transport"
)

func decodeU32(t *testing.T, data []byte) frame.Frame[uint32] {
	t.Helper()
	f, err := frame.Decode(data, frame.FixedCodec[uint32]())
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return f
}

func TestProducerAssignsSequentialSeqNos(t *testing.T) {
	tr := transport.NewMemTransport()
	p := New[uint32](tr, frame.FixedCodec[uint32]())
	defer p.Stop()

	for i := uint32(0); i < 3; i++ {
		p.Enqueue(i)
	}

	for want := uint16(1); want <= 3; want++ {
		data, ok := tr.ConsumerRecv(time.Second)
		if !ok {
			t.Fatalf("expected a frame for seqNo %d", want)
		}
		f := decodeU32(t, data)
		if f.Header.ID.SeqNo != want {
			t.Fatalf("SeqNo = %d, want %d", f.Header.ID.SeqNo, want)
		}
	}
}

func TestProducerWindowCap(t *testing.T) {
	tr := transport.NewMemTransport()
	p := New[uint32](tr, frame.FixedCodec[uint32](), WithResendPeriod(300*time.Millisecond))
	defer p.Stop()

	const extra = 5
	total := p.MaxPendingFrames() + extra
	for i := 0; i < total; i++ {
		p.Enqueue(uint32(i))
	}

	time.Sleep(150 * time.Millisecond)

	if got := tr.ProducerToConsumerSize(); got != p.MaxPendingFrames() {
		t.Fatalf("frames on wire = %d, want %d", got, p.MaxPendingFrames())
	}
	if got := p.Size(); got != extra {
		t.Fatalf("Producer.Size() = %d, want %d", got, extra)
	}

	// Drain the frames that made it onto the wire so the consumer side
	// of the in-memory transport doesn't grow unbounded, then ack them.
	for i := 0; i < p.MaxPendingFrames(); i++ {
		if _, ok := tr.ConsumerRecv(time.Second); !ok {
			t.Fatalf("expected frame %d on the wire", i)
		}
	}

	ack := frame.NewAck[uint32](uint16(p.MaxPendingFrames()))
	tr.ConsumerSend(frame.Encode(ack, frame.FixedCodec[uint32]()))

	deadline := time.Now().Add(time.Second)
	for p.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := p.Size(); got != 0 {
		t.Fatalf("Producer.Size() after ack = %d, want 0", got)
	}

	deadline = time.Now().Add(time.Second)
	for tr.ProducerToConsumerSize() != extra && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := tr.ProducerToConsumerSize(); got != extra {
		t.Fatalf("frames on wire after ack = %d, want %d", got, extra)
	}
}

func TestProducerRetransmitsUnackedHead(t *testing.T) {
	tr := transport.NewMemTransport()
	p := New[uint32](tr, frame.FixedCodec[uint32](), WithResendPeriod(30*time.Millisecond))
	defer p.Stop()

	p.Enqueue(42)

	first, ok := tr.ConsumerRecv(time.Second)
	if !ok {
		t.Fatal("expected the initial send")
	}

	second, ok := tr.ConsumerRecv(time.Second)
	if !ok {
		t.Fatal("expected a retransmission of the unacknowledged head")
	}
	if string(first) != string(second) {
		t.Fatalf("retransmission bytes differ from the original send")
	}
}

func TestProducerIgnoresStaleAck(t *testing.T) {
	tr := transport.NewMemTransport()
	p := New[uint32](tr, frame.FixedCodec[uint32]())
	defer p.Stop()

	p.Enqueue(1)
	if _, ok := tr.ConsumerRecv(time.Second); !ok {
		t.Fatal("expected the frame to be sent")
	}

	// Ack a sequence number that was never sent: must be ignored, not
	// cause a panic or corrupt state.
	ack := frame.NewAck[uint32](999)
	tr.ConsumerSend(frame.Encode(ack, frame.FixedCodec[uint32]()))

	time.Sleep(50 * time.Millisecond)

	retransmit, ok := tr.ConsumerRecv(200 * time.Millisecond)
	if !ok {
		t.Fatal("expected the pending frame to still be retransmitted")
	}
	f := decodeU32(t, retransmit)
	if f.Header.ID.SeqNo != 1 {
		t.Fatalf("SeqNo = %d, want 1 (stale ack must not clear pending state)", f.Header.ID.SeqNo)
	}
}

func TestProducerStopDiscardsPending(t *testing.T) {
	tr := transport.NewMemTransport()
	p := New[uint32](tr, frame.FixedCodec[uint32]())

	p.Enqueue(1)
	if _, ok := tr.ConsumerRecv(time.Second); !ok {
		t.Fatal("expected the frame to be sent")
	}

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not return")
	}
}

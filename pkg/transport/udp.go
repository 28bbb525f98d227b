package transport

import (
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"qdp/pkg/netio"
)

// MaxDatagramBytes is the maximum datagram size (header + body) the UDP
// transport honors, matching the original source's fixed 512-byte UDP
// read buffer.
const MaxDatagramBytes = 512

// DefaultPort is the loopback port the original source's UdpNetwork binds
// to by default.
const DefaultPort = 31415

// UDPTransport binds exactly one UDP socket and plays either the producer
// or the consumer role over it. Construction failures (address
// resolution, socket bind) are returned as an error rather than
// terminating the process, resolving spec.md's Open Question 4 against
// the original source's UdpNetwork, which calls exit() on the same
// failures.
type UDPTransport struct {
	conn *net.UDPConn

	// isProducer is set for a producer-role transport: sends go to
	// target, recv reads the ack path. A consumer-role transport learns
	// its peer on first receipt instead of being constructed with one.
	isProducer bool
	target     *net.UDPAddr

	peer atomic.Pointer[net.UDPAddr]
}

// NewUDPProducerTransport binds an ephemeral local UDP socket and sends
// data datagrams to consumerAddr.
func NewUDPProducerTransport(consumerAddr string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", consumerAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve consumer address %q: %w", consumerAddr, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("transport: bind producer socket: %w", err)
	}

	return &UDPTransport{conn: conn, isProducer: true, target: raddr}, nil
}

// NewUDPConsumerTransport binds a UDP socket on listenAddr and waits to
// learn the producer's return address from the first datagram it
// receives.
func NewUDPConsumerTransport(listenAddr string) (*UDPTransport, error) {
	laddr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve listen address %q: %w", listenAddr, err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("transport: bind consumer socket on %s: %w", listenAddr, err)
	}

	return &UDPTransport{conn: conn, isProducer: false}, nil
}

// Close releases the underlying socket.
func (u *UDPTransport) Close() error {
	return u.conn.Close()
}

func (u *UDPTransport) ProducerSend(data []byte) {
	if !u.isProducer {
		return
	}
	if err := netio.WriteUDPAddr(u.conn, u.target, data); err != nil {
		log.Printf("transport: producer send to %s failed: %v", u.target, err)
	}
}

func (u *UDPTransport) ProducerRecv(timeout time.Duration) ([]byte, bool) {
	if !u.isProducer {
		return nil, false
	}
	return u.receive(timeout, nil)
}

func (u *UDPTransport) ConsumerSend(data []byte) {
	if u.isProducer {
		return
	}
	peer := u.peer.Load()
	if peer == nil {
		// Acks are dropped until the consumer has learned the
		// producer's return address, per spec.md §6.
		return
	}
	if err := netio.WriteUDPAddr(u.conn, peer, data); err != nil {
		log.Printf("transport: consumer send to %s failed: %v", peer, err)
	}
}

func (u *UDPTransport) ConsumerRecv(timeout time.Duration) ([]byte, bool) {
	if u.isProducer {
		return nil, false
	}
	return u.receive(timeout, &u.peer)
}

// receive blocks up to timeout for one datagram. If learnPeer is
// non-nil, the sender's address is recorded there on success.
func (u *UDPTransport) receive(timeout time.Duration, learnPeer *atomic.Pointer[net.UDPAddr]) ([]byte, bool) {
	if err := u.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		log.Printf("transport: set read deadline: %v", err)
		return nil, false
	}

	buf := make([]byte, MaxDatagramBytes)
	n, raddr, err := u.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
			log.Printf("transport: read failed: %v", err)
		}
		return nil, false
	}

	if learnPeer != nil {
		learnPeer.Store(raddr)
	}
	return buf[:n], true
}

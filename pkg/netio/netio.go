// Package netio provides small write-all helpers over UDP sockets, shared
// by pkg/transport's UDP implementation. A single UDP datagram write
// rarely needs looping in practice, but net.PacketConn doesn't guarantee
// it never will, so the loop is kept explicit rather than assumed away.
package netio

import "net"

func writeAll(writeFunc func([]byte) (int, error), data []byte) error {
	written := 0
	stop := len(data)

	for written < stop {
		n, err := writeFunc(data[written:])
		if err != nil {
			return err
		}
		written += n
	}

	return nil
}

// WriteUDP writes all of data to conn's connected peer.
func WriteUDP(conn *net.UDPConn, data []byte) error {
	return writeAll(conn.Write, data)
}

// WriteUDPAddr writes all of data to the given UDP address.
func WriteUDPAddr(conn *net.UDPConn, addr *net.UDPAddr, data []byte) error {
	writeFunc := func(b []byte) (int, error) {
		return conn.WriteToUDP(b, addr)
	}
	return writeAll(writeFunc, data)
}

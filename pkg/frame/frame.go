// Package frame implements the QDP wire frame: a fixed header plus an
// optional body, serialized to a contiguous byte buffer with no padding.
package frame

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the number of bytes a serialized Header occupies:
// seqNo(2) + txEpoch(2) + dataSize(2).
const HeaderSize = 6

// ID identifies a frame by its producer-assigned sequence number and the
// coarse producer-local time tag used to disambiguate old retransmissions
// across a wrapped sequence number.
type ID struct {
	SeqNo   uint16
	TxEpoch uint16
}

// Header precedes every frame on the wire. DataSize == 0 marks a bodyless
// (acknowledgement) frame.
type Header struct {
	ID       ID
	DataSize uint16
}

// Frame is a Header plus, if DataSize > 0, a decoded body of type T.
type Frame[T any] struct {
	Header  Header
	Body    T
	HasBody bool
}

// Codec knows how to turn a body of type T into wire bytes and back. It is
// pure: no I/O, no allocation beyond the returned buffer.
type Codec[T any] struct {
	Marshal   func(T) []byte
	Unmarshal func([]byte) (T, error)
}

// NewAck builds a bodyless acknowledgement frame carrying seqNo.
func NewAck[T any](seqNo uint16) Frame[T] {
	return Frame[T]{Header: Header{ID: ID{SeqNo: seqNo}}}
}

// NewData builds a data frame with the given id and body.
func NewData[T any](id ID, body T) Frame[T] {
	return Frame[T]{Header: Header{ID: id}, Body: body, HasBody: true}
}

// Encode serializes f to a contiguous byte buffer: header fields in
// declared order, big-endian, followed by the body verbatim.
func Encode[T any](f Frame[T], codec Codec[T]) []byte {
	var body []byte
	dataSize := uint16(0)
	if f.HasBody {
		body = codec.Marshal(f.Body)
		dataSize = uint16(len(body))
	}

	buf := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint16(buf[0:2], f.Header.ID.SeqNo)
	binary.BigEndian.PutUint16(buf[2:4], f.Header.ID.TxEpoch)
	binary.BigEndian.PutUint16(buf[4:6], dataSize)
	copy(buf[HeaderSize:], body)
	return buf
}

// Decode parses buf into a Frame. A buffer shorter than HeaderSize, or one
// whose declared DataSize exceeds the remaining bytes, is a protocol error.
func Decode[T any](buf []byte, codec Codec[T]) (Frame[T], error) {
	if len(buf) < HeaderSize {
		return Frame[T]{}, fmt.Errorf("frame: buffer too short for header: got %d bytes, need %d", len(buf), HeaderSize)
	}

	h := Header{
		ID: ID{
			SeqNo:   binary.BigEndian.Uint16(buf[0:2]),
			TxEpoch: binary.BigEndian.Uint16(buf[2:4]),
		},
		DataSize: binary.BigEndian.Uint16(buf[4:6]),
	}

	if h.DataSize == 0 {
		return Frame[T]{Header: h}, nil
	}

	body := buf[HeaderSize:]
	if uint16(len(body)) < h.DataSize {
		return Frame[T]{}, fmt.Errorf("frame: buffer too short for body: got %d bytes, need %d", len(body), h.DataSize)
	}

	decoded, err := codec.Unmarshal(body[:h.DataSize])
	if err != nil {
		return Frame[T]{}, fmt.Errorf("frame: unmarshal body: %w", err)
	}

	return Frame[T]{Header: h, Body: decoded, HasBody: true}, nil
}

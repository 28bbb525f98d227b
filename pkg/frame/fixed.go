package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FixedCodec builds a Codec for a fixed-width record type T using
// encoding/binary, matching the original C++ source's assumption of a
// same-endian, unpadded struct copy for a given endpoint pair. T must be a
// fixed-size type accepted by binary.Write/Read (numeric types, arrays,
// or structs built from them).
func FixedCodec[T any]() Codec[T] {
	return Codec[T]{
		Marshal: func(v T) []byte {
			var buf bytes.Buffer
			// A fixed-size T can't fail to encode; a panic here means the
			// endpoint pair picked a record type this codec doesn't support.
			if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
				panic(fmt.Sprintf("frame: FixedCodec marshal: %v", err))
			}
			return buf.Bytes()
		},
		Unmarshal: func(data []byte) (T, error) {
			var v T
			r := bytes.NewReader(data)
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return v, fmt.Errorf("frame: FixedCodec unmarshal: %w", err)
			}
			return v, nil
		},
	}
}

package base

import "fmt"

const frameHeaderSize = 5

// Marshal encodes the vector as dtype(u8) count(u32) payload.
func (b *Vector) Marshal() []byte {
	buf := make([]byte, frameHeaderSize+len(b.Data))
	buf[0] = byte(b.Type)
	endian.PutUint32(buf[1:], uint32(b.Count))
	copy(buf[frameHeaderSize:], b.Data)
	return buf
}

// Unmarshal decodes a frame produced by Marshal. The returned Vector shares
// memory with buf.
func Unmarshal(buf []byte) (*Vector, error) {
	if len(buf) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(buf))
	}
	b := &Vector{
		Type:  DataType(buf[0]),
		Count: int(endian.Uint32(buf[1:])),
		Data:  buf[frameHeaderSize:],
	}
	if !b.Type.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, b.Type)
	}
	if size := b.Type.Size(); size > 0 && len(b.Data) != size*b.Count {
		return nil, fmt.Errorf("%w: %d bytes for %d %s", ErrMalformed, len(b.Data), b.Count, b.Type)
	}
	return b, nil
}

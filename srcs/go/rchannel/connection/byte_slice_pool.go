package connection

import (
	"math/bits"
	"sync"
)

// byteSlicePool reuses message buffers. Buffers are kept in power of two
// size classes, so frames of similar length share a class.
type byteSlicePool struct {
	classes [33]sync.Pool
}

// Buffers below minBufSize are not worth pooling.
const minBufSize uint32 = 512

var (
	defaultPool = &byteSlicePool{}
	GetBuf      = defaultPool.GetBuf
	PutBuf      = defaultPool.PutBuf
)

func sizeClass(size uint32) int {
	return bits.Len32(size - 1)
}

// GetBuf returns a buffer of length size, taken from the pool if possible.
func (p *byteSlicePool) GetBuf(size uint32) []byte {
	if size < minBufSize {
		return make([]byte, size)
	}
	c := sizeClass(size)
	if v := p.classes[c].Get(); v != nil {
		return v.([]byte)[:size]
	}
	return make([]byte, size, 1<<c)
}

// PutBuf returns a buffer obtained from GetBuf. Other buffers are dropped.
func (p *byteSlicePool) PutBuf(buf []byte) {
	size := uint32(cap(buf))
	if size < minBufSize || size&(size-1) != 0 {
		return
	}
	p.classes[sizeClass(size)].Put(buf[:0])
}

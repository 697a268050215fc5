package base

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

var endian = binary.LittleEndian

var (
	ErrTypeMismatch  = errors.New("vector: type mismatch")
	ErrCountMismatch = errors.New("vector: count mismatch")
	ErrMalformed     = errors.New("vector: malformed frame")
)

// Vector is a typed buffer in its wire representation. Fixed width elements
// are stored little endian, strings as a sequence of length-delimited fields.
type Vector struct {
	Data  []byte
	Count int
	Type  DataType
}

func NewVector(count int, dtype DataType) *Vector {
	return &Vector{
		Data:  make([]byte, count*dtype.Size()),
		Count: count,
		Type:  dtype,
	}
}

// Slice returns a new Vector that points to a subset of the original Vector.
// Only defined for fixed width types.
// 0 <= begin <= end <= count
func (b *Vector) Slice(begin, end int) *Vector {
	return &Vector{
		Data:  b.Data[begin*b.Type.Size() : end*b.Type.Size()],
		Count: end - begin,
		Type:  b.Type,
	}
}

func (b *Vector) CopyFrom(c *Vector) error {
	if err := b.expect(c.Type, c.Count); err != nil {
		return err
	}
	if len(b.Data) != len(c.Data) {
		b.Data = make([]byte, len(c.Data))
	}
	copy(b.Data, c.Data)
	return nil
}

func (b *Vector) expect(dtype DataType, count int) error {
	if b.Type != dtype {
		return fmt.Errorf("%w: %s vs %s", ErrTypeMismatch, b.Type, dtype)
	}
	if b.Count != count {
		return fmt.Errorf("%w: %d vs %d", ErrCountMismatch, b.Count, count)
	}
	return nil
}

func FromF32(xs []float32) *Vector {
	b := NewVector(len(xs), F32)
	for i, x := range xs {
		endian.PutUint32(b.Data[i*4:], math.Float32bits(x))
	}
	return b
}

func FromF64(xs []float64) *Vector {
	b := NewVector(len(xs), F64)
	for i, x := range xs {
		endian.PutUint64(b.Data[i*8:], math.Float64bits(x))
	}
	return b
}

func FromI32(xs []int32) *Vector {
	b := NewVector(len(xs), I32)
	for i, x := range xs {
		endian.PutUint32(b.Data[i*4:], uint32(x))
	}
	return b
}

func FromI64(xs []int64) *Vector {
	b := NewVector(len(xs), I64)
	for i, x := range xs {
		endian.PutUint64(b.Data[i*8:], uint64(x))
	}
	return b
}

func FromStrings(ss []string) *Vector {
	var data []byte
	for _, s := range ss {
		data = protowire.AppendString(data, s)
	}
	return &Vector{Data: data, Count: len(ss), Type: Str}
}

// ReadF32 decodes b into xs, which must have exactly b.Count elements.
func (b *Vector) ReadF32(xs []float32) error {
	if err := b.expect(F32, len(xs)); err != nil {
		return err
	}
	for i := range xs {
		xs[i] = math.Float32frombits(endian.Uint32(b.Data[i*4:]))
	}
	return nil
}

func (b *Vector) ReadF64(xs []float64) error {
	if err := b.expect(F64, len(xs)); err != nil {
		return err
	}
	for i := range xs {
		xs[i] = math.Float64frombits(endian.Uint64(b.Data[i*8:]))
	}
	return nil
}

func (b *Vector) ReadI32(xs []int32) error {
	if err := b.expect(I32, len(xs)); err != nil {
		return err
	}
	for i := range xs {
		xs[i] = int32(endian.Uint32(b.Data[i*4:]))
	}
	return nil
}

func (b *Vector) ReadI64(xs []int64) error {
	if err := b.expect(I64, len(xs)); err != nil {
		return err
	}
	for i := range xs {
		xs[i] = int64(endian.Uint64(b.Data[i*8:]))
	}
	return nil
}

func (b *Vector) ReadStrings(ss []string) error {
	if err := b.expect(Str, len(ss)); err != nil {
		return err
	}
	data := b.Data
	for i := range ss {
		s, n := protowire.ConsumeString(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		ss[i] = s
		data = data[n:]
	}
	if len(data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(data))
	}
	return nil
}

package base

import (
	"errors"
	"math"
	"testing"
)

func Test_Frame(t *testing.T) {
	xs := []float64{1.5, -2.25, math.Inf(1), 0}
	b, err := Unmarshal(FromF64(xs).Marshal())
	if err != nil {
		t.Fatal(err)
	}
	ys := make([]float64, len(xs))
	if err := b.ReadF64(ys); err != nil {
		t.Fatal(err)
	}
	for i := range xs {
		if xs[i] != ys[i] {
			t.Errorf("[%d] %f != %f", i, xs[i], ys[i])
		}
	}
}

func Test_Strings(t *testing.T) {
	ss := []string{"u", "", "potential temperature"}
	b, err := Unmarshal(FromStrings(ss).Marshal())
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, 3)
	if err := b.ReadStrings(out); err != nil {
		t.Fatal(err)
	}
	for i := range ss {
		if ss[i] != out[i] {
			t.Errorf("[%d] %q != %q", i, ss[i], out[i])
		}
	}
}

func Test_Mismatch(t *testing.T) {
	b := FromI32([]int32{1, 2, 3})
	if err := b.ReadI32(make([]int32, 2)); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("expected count mismatch, got %v", err)
	}
	if err := b.ReadF32(make([]float32, 3)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected type mismatch, got %v", err)
	}
	frame := b.Marshal()
	if _, err := Unmarshal(frame[:len(frame)-1]); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected malformed frame, got %v", err)
	}
	if _, err := Unmarshal([]byte{0, 0, 0, 0, 0}); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected malformed dtype, got %v", err)
	}
}

func Test_Slice(t *testing.T) {
	b := FromI64([]int64{10, 20, 30, 40})
	s := b.Slice(1, 3)
	out := make([]int64, 2)
	if err := s.ReadI64(out); err != nil {
		t.Fatal(err)
	}
	if out[0] != 20 || out[1] != 30 {
		t.Errorf("unexpected slice %v", out)
	}
	c := NewVector(2, I64)
	if err := c.CopyFrom(s); err != nil {
		t.Fatal(err)
	}
	if err := c.CopyFrom(b); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("expected count mismatch, got %v", err)
	}
}

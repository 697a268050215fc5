package procgroup

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func Test_contiguous(t *testing.T) {
	tests := []struct {
		parent, size, offset int
		flags                Flags
		want                 []int
		err                  error
	}{
		{6, 3, 0, 0, []int{0, 1, 2}, nil},
		{6, 3, 3, 0, []int{3, 4, 5}, nil},
		{6, 4, 3, 0, []int{3, 4, 5}, nil},
		{6, 4, 3, Strict, nil, ErrBadGroupSize},
		{6, 2, 3, KeepRoot, []int{0, 3, 4}, nil},
		{6, 0, 0, 0, nil, ErrBadGroupSize},
		{6, 1, 6, 0, nil, ErrBadGroupSize},
	}
	for _, tt := range tests {
		got, err := contiguous(tt.parent, tt.size, tt.flags, tt.offset)
		if !errors.Is(err, tt.err) {
			t.Errorf("contiguous(%d, %d, %d) error %v, want %v", tt.parent, tt.size, tt.offset, err, tt.err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("contiguous(%d, %d, %d) = %v, want %v", tt.parent, tt.size, tt.offset, got, tt.want)
		}
	}
}

func Test_explicit(t *testing.T) {
	if got, _ := explicit(4, []int{3, 1}, 0); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Errorf("unexpected %v", got)
	}
	if got, _ := explicit(4, []int{3, 0, 1}, KeepRoot); !reflect.DeepEqual(got, []int{0, 3, 1}) {
		t.Errorf("unexpected %v", got)
	}
	if _, err := explicit(4, []int{4}, 0); !errors.Is(err, ErrBadProcessor) {
		t.Errorf("want ErrBadProcessor, got %v", err)
	}
	if _, err := explicit(4, []int{1, 1}, 0); !errors.Is(err, ErrBadGroupSize) {
		t.Errorf("want ErrBadGroupSize, got %v", err)
	}
}

func Test_split(t *testing.T) {
	a, b, err := split(5, 2, 0)
	if err != nil || !reflect.DeepEqual(a, []int{0, 1}) || !reflect.DeepEqual(b, []int{2, 3, 4}) {
		t.Errorf("split(5, 2) = %v %v %v", a, b, err)
	}
	a, b, _ = split(5, 2, KeepRoot)
	if !reflect.DeepEqual(a, []int{0, 1}) || !reflect.DeepEqual(b, []int{0, 2, 3, 4}) {
		t.Errorf("split(5, 2, KeepRoot) = %v %v", a, b)
	}
	a, b, _ = split(5, 9, 0)
	if len(a) != 4 || !reflect.DeepEqual(b, []int{4}) {
		t.Errorf("split(5, 9) = %v %v", a, b)
	}
	if _, _, err := split(5, 9, Strict); !errors.Is(err, ErrBadGroupSize) {
		t.Errorf("want ErrBadGroupSize, got %v", err)
	}
	if _, _, err := split(1, 1, 0); !errors.Is(err, ErrBadGroupSize) {
		t.Errorf("want ErrBadGroupSize, got %v", err)
	}
}

func Test_members(t *testing.T) {
	m := newMembers(3)
	if err := m.SetRole(AllRanks, Tracer); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRole(2, DataReader); err != nil {
		t.Fatal(err)
	}
	if m.Role(0) != Tracer || m.Role(2) != DataReader || m.Role(7) != Unknown {
		t.Errorf("unexpected roles %v", m.roles)
	}
	if err := m.SetRole(3, Tracer); !errors.Is(err, ErrBadProcessor) {
		t.Errorf("want ErrBadProcessor, got %v", err)
	}
}

func Test_childID(t *testing.T) {
	a := childID(1, 1, []int{0, 1})
	if a != childID(1, 1, []int{0, 1}) {
		t.Errorf("childID is not deterministic")
	}
	if a == childID(1, 2, []int{0, 1}) || a == childID(1, 1, []int{0, 2}) || a == childID(2, 1, []int{0, 1}) {
		t.Errorf("childID collides")
	}
}

func Test_desync(t *testing.T) {
	t0 := time.Now()
	desync(0)
	desync(-time.Second)
	desync(5 * time.Millisecond)
	if d := time.Since(t0); d > time.Second {
		t.Errorf("desync took %s", d)
	}
}

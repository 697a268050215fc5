package parcel

import (
	"testing"

	fuzz "github.com/google/gofuzz"
)

func Test_Wire(t *testing.T) {
	f := fuzz.New().NilChance(0)
	buf := make([]float64, WireSize)
	for i := 0; i < 100; i++ {
		var p Parcel
		f.Fuzz(&p)
		p.Put(buf)
		if q := Load(buf); q != p {
			t.Errorf("%v != %v", q, p)
		}
	}
}

func Test_Flags(t *testing.T) {
	var p Parcel
	if p.Skip() {
		t.Errorf("a fresh parcel should be traced")
	}
	p.Flags |= HitTop | BadValue
	if !p.Skip() {
		t.Errorf("%s should be skipped", p.Flags)
	}
	if s := p.Flags.String(); s != "HitTop|BadValue" {
		t.Errorf("unexpected flag names %q", s)
	}
}

func Test_Batch(t *testing.T) {
	b := NewBatch(4)
	b.Flags[1] = NoTrace
	s := b.Slice(1, 3)
	s.Lon[1] = 12
	if b.Lon[2] != 12 {
		t.Errorf("slice should share storage")
	}
	if n := b.Active(); n != 3 {
		t.Errorf("want 3 active, got %d", n)
	}
}

func Test_Quantities(t *testing.T) {
	for _, q := range Quantities() {
		if got, ok := Lookup(q.Name); !ok || got != q {
			t.Errorf("Lookup(%q) = %v, %v", q.Name, got, ok)
		}
	}
	if _, ok := Lookup("ozone"); ok {
		t.Errorf("unexpected quantity")
	}
}

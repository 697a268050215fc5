package procgroup

import (
	"errors"
	"testing"
)

func Test_serialGroup(t *testing.T) {
	g := NewSerial()
	defer g.Shutdown()
	if g.Size() != 1 || g.ID() != 0 || g.RootID() != 0 || !g.Belongs() {
		t.Fatalf("unexpected serial group %d %d %d", g.Size(), g.ID(), g.RootID())
	}
	if err := g.Sync(); err != nil {
		t.Error(err)
	}
	if err := g.SendDoubles(0, []float64{1}, 3); err != nil {
		t.Errorf("send to self should succeed: %v", err)
	}
	xs := []float64{7}
	if src, err := g.RecvDoubles(AnySource, xs, 3); err != nil || src != 0 {
		t.Errorf("receive from any should succeed: %d %v", src, err)
	}
	if xs[0] != 7 {
		t.Errorf("receive on serial group should not touch the buffer")
	}
	if err := g.SendInts(1, nil, 0); !errors.Is(err, ErrBadProcessor) {
		t.Errorf("want ErrBadProcessor, got %v", err)
	}
	if _, err := g.RecvStrings(-2, nil, 0); !errors.Is(err, ErrBadProcessor) {
		t.Errorf("want ErrBadProcessor, got %v", err)
	}
}

func Test_serialSubgroup(t *testing.T) {
	g := NewSerial()
	defer g.Close()
	c, err := g.Subgroup(4, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size() != 1 || !c.Belongs() {
		t.Errorf("clamped subgroup should hold the only rank")
	}
	if _, err := g.Subgroup(4, Strict, 0); !errors.Is(err, ErrBadGroupSize) {
		t.Errorf("want ErrBadGroupSize, got %v", err)
	}
	a, b, err := g.Split(1, KeepRoot)
	if err != nil || !a.Belongs() || !b.Belongs() {
		t.Errorf("split with KeepRoot: %v", err)
	}
	if _, _, err := g.Split(1, 0); !errors.Is(err, ErrBadGroupSize) {
		t.Errorf("want ErrBadGroupSize, got %v", err)
	}
}

func Test_serialRandom(t *testing.T) {
	g1, g2 := NewSerial(), NewSerial()
	for i := 0; i < 10; i++ {
		x, y := g1.Random(), g2.Random()
		if x != y {
			t.Errorf("same group id should draw the same values: %f != %f", x, y)
		}
		if x < 0 || x >= 1 {
			t.Errorf("%f not in [0, 1)", x)
		}
	}
	c, _ := g1.Subgroup(1, 0, 0)
	if c.Random() == g2.Random() {
		t.Errorf("child should draw from its own sequence")
	}
}

func Test_serialCollective(t *testing.T) {
	g := NewSerial()
	xs := []int32{1, 2}
	if err := BroadcastInts(g, xs, 0); err != nil {
		t.Error(err)
	}
	all, err := GatherDoubles(g, []float64{3, 4}, 0)
	if err != nil || len(all) != 2 || all[1] != 4 {
		t.Errorf("GatherDoubles = %v %v", all, err)
	}
}

func Test_serialCloseChild(t *testing.T) {
	g := newSerialGroup(1)
	a, _ := g.Subgroup(1, 0, 0)
	b, _ := g.Subgroup(1, 0, 0)
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if len(g.children) != 1 || g.children[0] != b {
		t.Errorf("closed child should leave its parent, %d left", len(g.children))
	}
	if err := a.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := g.Close(); err != nil || len(g.children) != 0 {
		t.Errorf("close parent: %v, %d children left", err, len(g.children))
	}
}

package procgroup

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// serialGroup is the group of a single process. Messages to and from
// itself succeed without effect.
type serialGroup struct {
	*members

	id       uint32
	parent   *serialGroup
	mu       sync.Mutex
	rng      *rand.Rand
	ordinal  uint32
	children []Group
	closed   bool
}

// NewSerial returns the group of a single process.
func NewSerial() Group {
	return newSerialGroup(murmur3.Sum32([]byte("serial")))
}

func newSerialGroup(id uint32) *serialGroup {
	return &serialGroup{
		members: newMembers(1),
		id:      id,
		rng:     rand.New(rand.NewSource(int64(id))),
	}
}

func (g *serialGroup) Size() int { return 1 }

func (g *serialGroup) ID() int { return 0 }

func (g *serialGroup) RootID() int { return 0 }

func (g *serialGroup) Belongs() bool { return true }

func (g *serialGroup) Sync() error { return nil }

func (g *serialGroup) SyncWith(rank int) error { return checkRank(rank, 1) }

func (g *serialGroup) SyncLabel(label string) error { return nil }

func (g *serialGroup) Desync(max time.Duration) { desync(max) }

func (g *serialGroup) SendReals(rank int, xs []float32, tag int) error {
	return checkRank(rank, 1)
}

func (g *serialGroup) SendDoubles(rank int, xs []float64, tag int) error {
	return checkRank(rank, 1)
}

func (g *serialGroup) SendInts(rank int, xs []int32, tag int) error {
	return checkRank(rank, 1)
}

func (g *serialGroup) SendStrings(rank int, ss []string, tag int) error {
	return checkRank(rank, 1)
}

func (g *serialGroup) RecvReals(rank int, xs []float32, tag int) (int, error) {
	return 0, checkSource(rank, 1)
}

func (g *serialGroup) RecvDoubles(rank int, xs []float64, tag int) (int, error) {
	return 0, checkSource(rank, 1)
}

func (g *serialGroup) RecvInts(rank int, xs []int32, tag int) (int, error) {
	return 0, checkSource(rank, 1)
}

func (g *serialGroup) RecvStrings(rank int, ss []string, tag int) (int, error) {
	return 0, checkSource(rank, 1)
}

func (g *serialGroup) Subgroup(size int, flags Flags, offset int) (Group, error) {
	if _, err := contiguous(1, size, flags, offset); err != nil {
		return nil, err
	}
	return g.child(), nil
}

func (g *serialGroup) SubgroupOf(ranks []int, flags Flags) (Group, error) {
	if _, err := explicit(1, ranks, flags); err != nil {
		return nil, err
	}
	return g.child(), nil
}

func (g *serialGroup) Split(sizeA int, flags Flags) (Group, Group, error) {
	if _, _, err := split(1, sizeA, flags); err != nil {
		return nil, nil, err
	}
	return g.child(), g.child(), nil
}

func (g *serialGroup) child() Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ordinal++
	c := newSerialGroup(childID(g.id, g.ordinal, []int{0}))
	c.parent = g
	g.children = append(g.children, c)
	return c
}

func (g *serialGroup) Random() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *serialGroup) forget(c Group) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children = dropChild(g.children, c)
}

func (g *serialGroup) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	children := g.children
	g.children = nil
	g.mu.Unlock()
	if g.parent != nil {
		g.parent.forget(g)
	}
	return closeAll(children)
}

func (g *serialGroup) Shutdown() error { return g.Close() }

func (g *serialGroup) String() string {
	return fmt.Sprintf("serial#%08x", g.id)
}

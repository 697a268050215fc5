package procgroup

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/base"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
)

// Message kinds; together with the group id and the tag they name a message,
// so traffic of different groups and tags never mixes.
const (
	kindP2P     = "p2p"
	kindArrive  = "arrive"
	kindRelease = "release"
	kindPair    = "pair"
)

// netGroup is a group of ranks of the world connected by the rchannel transport.
type netGroup struct {
	*members

	w     *world
	id    uint32
	ranks []int // world rank of each member
	rank  int
	owner bool

	parent   *netGroup
	mu       sync.Mutex
	rng      *rand.Rand
	ordinal  uint32
	children []Group
	closed   bool
}

func newNetGroup(w *world, id uint32, ranks []int, rank int) *netGroup {
	return &netGroup{
		members: newMembers(len(ranks)),
		w:       w,
		id:      id,
		ranks:   ranks,
		rank:    rank,
		rng:     rand.New(rand.NewSource(int64(id))),
	}
}

func (g *netGroup) Size() int { return len(g.ranks) }

func (g *netGroup) ID() int { return g.rank }

func (g *netGroup) RootID() int { return 0 }

func (g *netGroup) Belongs() bool { return g.rank >= 0 }

func (g *netGroup) String() string {
	return fmt.Sprintf("group#%08x[%d/%d]", g.id, g.rank, len(g.ranks))
}

func (g *netGroup) name(kind string, tag int) string {
	return fmt.Sprintf("%08x/%s/%d", g.id, kind, tag)
}

func (g *netGroup) peer(rank int) plan.PeerID {
	return g.w.peers[g.ranks[rank]]
}

// rankOf maps a peer back to its rank in the group.
func (g *netGroup) rankOf(p plan.PeerID) (int, error) {
	if r, ok := g.w.peers.Rank(p); ok {
		if i := indexOf(g.ranks, r); i >= 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: message from %s, not a member of %s", ErrBadProcessor, p, g)
}

var errNotMember = errors.New("not a member")

func (g *netGroup) checkMember() error {
	if !g.Belongs() {
		return fmt.Errorf("%w: %v of %s", ErrBadProcessor, errNotMember, g)
	}
	return nil
}

func (g *netGroup) send(rank int, v *base.Vector, kind string, tag int) error {
	if err := g.checkMember(); err != nil {
		return err
	}
	if err := checkRank(rank, g.Size()); err != nil {
		return err
	}
	if err := g.w.router.P2P.Send(g.peer(rank).WithName(g.name(kind, tag)), v.Marshal()); err != nil {
		return fmt.Errorf("%w: send to %d: %v", ErrBadParallelism, rank, err)
	}
	return nil
}

// recv waits for a message and passes its payload to read, which must
// copy out what it needs.
func (g *netGroup) recv(rank int, kind string, tag int, read func(*base.Vector) error) (int, error) {
	if err := g.checkMember(); err != nil {
		return -1, err
	}
	if err := checkSource(rank, g.Size()); err != nil {
		return -1, err
	}
	name := g.name(kind, tag)
	var msg *connection.Message
	src := rank
	if rank == AnySource {
		p, m, err := g.w.router.P2P.RecvAny(name)
		if err != nil {
			return -1, fmt.Errorf("%w: receive from any: %v", ErrBadParallelism, err)
		}
		if src, err = g.rankOf(p); err != nil {
			return -1, err
		}
		msg = m
	} else {
		m, err := g.w.router.P2P.Recv(g.peer(rank), name)
		if err != nil {
			return -1, fmt.Errorf("%w: receive from %d: %v", ErrBadParallelism, rank, err)
		}
		msg = m
	}
	defer connection.PutBuf(msg.Data)
	v, err := base.Unmarshal(msg.Data)
	if err != nil {
		return src, fmt.Errorf("%w: from %d: %v", ErrBadTransfer, src, err)
	}
	if err := read(v); err != nil {
		return src, fmt.Errorf("%w: from %d: %v", ErrBadTransfer, src, err)
	}
	return src, nil
}

func (g *netGroup) SendReals(rank int, xs []float32, tag int) error {
	return g.send(rank, base.FromF32(xs), kindP2P, tag)
}

func (g *netGroup) SendDoubles(rank int, xs []float64, tag int) error {
	return g.send(rank, base.FromF64(xs), kindP2P, tag)
}

func (g *netGroup) SendInts(rank int, xs []int32, tag int) error {
	return g.send(rank, base.FromI32(xs), kindP2P, tag)
}

func (g *netGroup) SendStrings(rank int, ss []string, tag int) error {
	return g.send(rank, base.FromStrings(ss), kindP2P, tag)
}

func (g *netGroup) RecvReals(rank int, xs []float32, tag int) (int, error) {
	return g.recv(rank, kindP2P, tag, func(v *base.Vector) error { return v.ReadF32(xs) })
}

func (g *netGroup) RecvDoubles(rank int, xs []float64, tag int) (int, error) {
	return g.recv(rank, kindP2P, tag, func(v *base.Vector) error { return v.ReadF64(xs) })
}

func (g *netGroup) RecvInts(rank int, xs []int32, tag int) (int, error) {
	return g.recv(rank, kindP2P, tag, func(v *base.Vector) error { return v.ReadI32(xs) })
}

func (g *netGroup) RecvStrings(rank int, ss []string, tag int) (int, error) {
	return g.recv(rank, kindP2P, tag, func(v *base.Vector) error { return v.ReadStrings(ss) })
}

var emptyToken = base.NewVector(0, base.U8)

func readToken(v *base.Vector) error {
	if v.Type != base.U8 || v.Count != 0 {
		return base.ErrTypeMismatch
	}
	return nil
}

// Sync gathers an arrival from every member on the root, then releases them.
func (g *netGroup) Sync() error {
	if !g.Belongs() || g.Size() == 1 {
		return nil
	}
	const root = 0
	if g.rank != root {
		if err := g.send(root, emptyToken, kindArrive, 0); err != nil {
			return err
		}
		_, err := g.recv(root, kindRelease, 0, readToken)
		return err
	}
	for r := 1; r < g.Size(); r++ {
		if _, err := g.recv(r, kindArrive, 0, readToken); err != nil {
			return err
		}
	}
	for r := 1; r < g.Size(); r++ {
		if err := g.send(r, emptyToken, kindRelease, 0); err != nil {
			return err
		}
	}
	return nil
}

func (g *netGroup) SyncWith(rank int) error {
	if err := g.checkMember(); err != nil {
		return err
	}
	if err := checkRank(rank, g.Size()); err != nil {
		return err
	}
	if rank == g.rank {
		return nil
	}
	if err := g.send(rank, emptyToken, kindPair, 0); err != nil {
		return err
	}
	_, err := g.recv(rank, kindPair, 0, readToken)
	return err
}

func (g *netGroup) SyncLabel(label string) error {
	log.Debugf("sync %s on %s", label, g)
	defer utils.InstallStallDetector("sync " + label).Stop()
	return g.Sync()
}

func (g *netGroup) Desync(max time.Duration) { desync(max) }

func (g *netGroup) Subgroup(size int, flags Flags, offset int) (Group, error) {
	ranks, err := contiguous(g.Size(), size, flags, offset)
	if err != nil {
		return nil, err
	}
	return g.child(ranks), nil
}

func (g *netGroup) SubgroupOf(ranks []int, flags Flags) (Group, error) {
	ranks, err := explicit(g.Size(), ranks, flags)
	if err != nil {
		return nil, err
	}
	return g.child(ranks), nil
}

func (g *netGroup) Split(sizeA int, flags Flags) (Group, Group, error) {
	a, b, err := split(g.Size(), sizeA, flags)
	if err != nil {
		return nil, nil, err
	}
	return g.child(a), g.child(b), nil
}

// child creates the group of the given parent ranks. Every member of the
// parent advances the same ordinal, so the child id agrees everywhere.
func (g *netGroup) child(ranks []int) Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ordinal++
	worldRanks := make([]int, len(ranks))
	for i, r := range ranks {
		worldRanks[i] = g.ranks[r]
	}
	rank := -1
	if g.Belongs() {
		rank = indexOf(ranks, g.rank)
	}
	c := newNetGroup(g.w, childID(g.id, g.ordinal, ranks), worldRanks, rank)
	c.parent = g
	log.Debugf("carved %s from %s with members %v", c, g, ranks)
	g.children = append(g.children, c)
	return c
}

func (g *netGroup) Random() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *netGroup) forget(c Group) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children = dropChild(g.children, c)
}

// Close closes the children of g and removes g from its parent. The world
// group also closes the transport after a final barrier.
func (g *netGroup) Close() error {
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
	errs := []error{closeAll(children)}
	if g.owner {
		errs = append(errs, g.SyncLabel("close"), g.w.close())
	}
	return mergeErrors(errs)
}

func (g *netGroup) Shutdown() error {
	return g.w.close()
}

package procgroup

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// members holds the bookkeeping shared by both backends.
type members struct {
	sync.Mutex
	roles []Role
	tag   string
}

func newMembers(size int) *members {
	roles := make([]Role, size)
	for i := range roles {
		roles[i] = All
	}
	return &members{roles: roles}
}

func (m *members) Role(rank int) Role {
	m.Lock()
	defer m.Unlock()
	if rank < 0 || rank >= len(m.roles) {
		return Unknown
	}
	return m.roles[rank]
}

func (m *members) SetRole(rank int, role Role) error {
	m.Lock()
	defer m.Unlock()
	if rank == AllRanks {
		for i := range m.roles {
			m.roles[i] = role
		}
		return nil
	}
	if err := checkRank(rank, len(m.roles)); err != nil {
		return err
	}
	m.roles[rank] = role
	return nil
}

func (m *members) Tag() string {
	m.Lock()
	defer m.Unlock()
	return m.tag
}

func (m *members) SetTag(tag string) {
	m.Lock()
	defer m.Unlock()
	m.tag = tag
}

func desync(max time.Duration) {
	if max <= 0 {
		return
	}
	time.Sleep(time.Duration(rand.Int63n(int64(max) + 1)))
}

// contiguous returns the parent ranks of a child of size members starting
// at offset.
func contiguous(parentSize, size int, flags Flags, offset int) ([]int, error) {
	if size <= 0 || offset < 0 || offset >= parentSize {
		return nil, fmt.Errorf("%w: %d members from %d of %d", ErrBadGroupSize, size, offset, parentSize)
	}
	if offset+size > parentSize {
		if flags.Has(Strict) {
			return nil, fmt.Errorf("%w: %d members from %d of %d", ErrBadGroupSize, size, offset, parentSize)
		}
		size = parentSize - offset
	}
	ranks := make([]int, size)
	for i := range ranks {
		ranks[i] = offset + i
	}
	return keepRoot(ranks, flags), nil
}

func explicit(parentSize int, ranks []int, flags Flags) ([]int, error) {
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%w: empty member list", ErrBadGroupSize)
	}
	seen := make(map[int]bool)
	for _, r := range ranks {
		if err := checkRank(r, parentSize); err != nil {
			return nil, err
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: rank %d listed twice", ErrBadGroupSize, r)
		}
		seen[r] = true
	}
	return keepRoot(append([]int(nil), ranks...), flags), nil
}

func split(parentSize, sizeA int, flags Flags) ([]int, []int, error) {
	if parentSize < 2 && !flags.Has(KeepRoot) {
		return nil, nil, fmt.Errorf("%w: can't split a group of %d", ErrBadGroupSize, parentSize)
	}
	lo, hi := 1, parentSize-1
	if flags.Has(KeepRoot) {
		hi = parentSize
	}
	if sizeA < lo || sizeA > hi {
		if flags.Has(Strict) {
			return nil, nil, fmt.Errorf("%w: can't split %d from a group of %d", ErrBadGroupSize, sizeA, parentSize)
		}
		sizeA = min(max(sizeA, lo), hi)
	}
	a := make([]int, 0, sizeA)
	for i := 0; i < sizeA; i++ {
		a = append(a, i)
	}
	var b []int
	for i := sizeA; i < parentSize; i++ {
		b = append(b, i)
	}
	return keepRoot(a, flags), keepRoot(b, flags), nil
}

// keepRoot moves or inserts the parent root (rank 0) to the front.
func keepRoot(ranks []int, flags Flags) []int {
	if !flags.Has(KeepRoot) {
		return ranks
	}
	out := []int{0}
	for _, r := range ranks {
		if r != 0 {
			out = append(out, r)
		}
	}
	return out
}

func indexOf(ranks []int, x int) int {
	for i, r := range ranks {
		if r == x {
			return i
		}
	}
	return -1
}

package distrib

import (
	"fmt"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
)

// Layout places parcels and data servers on the ranks of a group. Every
// rank computes the same Layout from the same inputs.
type Layout struct {
	// Total is the number of parcels in the group.
	Total int
	// Ranges holds the global indices owned by each rank. Ranges of tracers
	// are contiguous in rank order; servers own nothing.
	Ranges []plan.Interval
	// Server tells which ranks are data servers.
	Server []bool
	// Subgroups lists the ranks of each sub-group, in rank order.
	Subgroups [][]int
	// ServerRank is the rank of the server within each sub-group, or -1.
	ServerRank []int
}

// NewLayout spreads n parcels over a group of size ranks. With ratio r > 0
// and more than one rank, one rank in every r+1 becomes a data server and
// each server gets a sub-group of its own.
func NewLayout(size, n, ratio int) (*Layout, error) {
	if size < 1 {
		return nil, fmt.Errorf("layout of %d ranks", size)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadParcelCount, n)
	}
	var numServers int
	if ratio > 0 && size > 1 {
		numServers = size / (ratio + 1)
	}
	l := &Layout{
		Total:  n,
		Ranges: make([]plan.Interval, size),
		Server: make([]bool, size),
	}
	if numServers == 0 {
		all := make([]int, size)
		for i := range all {
			all[i] = i
		}
		l.Subgroups = [][]int{all}
		l.ServerRank = []int{-1}
	} else {
		offset := 0
		for _, tracers := range plan.EvenSizes(size-numServers, numServers) {
			members := make([]int, tracers+1)
			for i := range members {
				members[i] = offset + i
			}
			// The server takes local rank 1 so that rank 0 of the first
			// sub-group, the root of the group, stays a tracer.
			l.Server[offset+1] = true
			l.Subgroups = append(l.Subgroups, members)
			l.ServerRank = append(l.ServerRank, 1)
			offset += tracers + 1
		}
	}
	tracers := l.Tracers()
	parts := plan.EvenPartition(plan.Interval{Begin: 0, End: n}, len(tracers))
	for i, r := range tracers {
		l.Ranges[r] = parts[i]
	}
	// Servers own an empty range at the position of the next tracer.
	next := n
	for r := size - 1; r >= 0; r-- {
		if l.Server[r] {
			l.Ranges[r] = plan.Interval{Begin: next, End: next}
		} else {
			next = l.Ranges[r].Begin
		}
	}
	return l, nil
}

// Tracers returns the ranks that hold parcels, in rank order.
func (l *Layout) Tracers() []int {
	var rs []int
	for r, s := range l.Server {
		if !s {
			rs = append(rs, r)
		}
	}
	return rs
}

// Belongs returns the rank owning the parcel with global index i.
func (l *Layout) Belongs(i int) (int, error) {
	if i < 0 || i >= l.Total {
		return -1, fmt.Errorf("%w: %d not in [0, %d)", ErrBadParcelIndex, i, l.Total)
	}
	for r, x := range l.Ranges {
		if !l.Server[r] && x.Contains(i) {
			return r, nil
		}
	}
	return -1, fmt.Errorf("%w: %d not owned", ErrBadParcelIndex, i)
}

// FirstLast returns the inclusive range of rank r, or (-1, -1) if it owns
// no parcel.
func (l *Layout) FirstLast(r int) (int, int) {
	x := l.Ranges[r]
	if x.Len() == 0 {
		return -1, -1
	}
	return x.Begin, x.End - 1
}

// SubgroupOf returns the sub-group containing rank r.
func (l *Layout) SubgroupOf(r int) int {
	for k, members := range l.Subgroups {
		if r >= members[0] && r <= members[len(members)-1] {
			return k
		}
	}
	return -1
}

// Place returns the rank that Add would give a new parcel, the tracer with
// the fewest parcels and the lowest rank first, and the parcel's global
// index. The layout is unchanged.
func (l *Layout) Place() (int, int) {
	owner := -1
	for r, x := range l.Ranges {
		if l.Server[r] {
			continue
		}
		if owner < 0 || x.Len() < l.Ranges[owner].Len() {
			owner = r
		}
	}
	return owner, l.Ranges[owner].End
}

// Add assigns a new parcel to the rank chosen by Place and returns that rank
// and the global index of the parcel. Parcels of later ranks move up by one.
func (l *Layout) Add() (int, int) {
	owner, idx := l.Place()
	l.Ranges[owner].End++
	for r := owner + 1; r < len(l.Ranges); r++ {
		l.Ranges[r].Begin++
		l.Ranges[r].End++
	}
	l.Total++
	return owner, idx
}

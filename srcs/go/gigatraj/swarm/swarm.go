// Package swarm is the container that keeps the local parcels as parallel
// arrays, so integrators work on them without copying.
package swarm

import (
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/distrib"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
)

type Swarm struct {
	*distrib.Core
	arena *arena
}

// New lays out n parcels over g. It is collective over g.
func New(g procgroup.Group, n int, opts distrib.Options) (*Swarm, error) {
	a := &arena{}
	core, err := distrib.New(g, n, a, opts)
	if err != nil {
		return nil, err
	}
	return &Swarm{Core: core, arena: a}, nil
}

// Arrays returns the local parcels as arrays. They are valid until the next Add.
func (s *Swarm) Arrays() parcel.Batch {
	b, _ := s.arena.Batch(0, s.arena.Len())
	return b
}

// Tags returns the tags of the local parcels.
func (s *Swarm) Tags() []float64 {
	return s.arena.tag[:s.arena.Len()]
}

// Capacity is the number of parcels the arrays hold before growing.
func (s *Swarm) Capacity() int { return s.arena.Cap() }

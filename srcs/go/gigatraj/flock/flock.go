// Package flock is the container that keeps each local parcel as a value
// of its own.
package flock

import (
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/distrib"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
)

// Flock spreads parcels over a group, each rank holding its parcels as a
// slice of values.
type Flock struct {
	*distrib.Core
	items *items
}

// New lays out n parcels over g. It is collective over g.
func New(g procgroup.Group, n int, opts distrib.Options) (*Flock, error) {
	items := &items{}
	core, err := distrib.New(g, n, items, opts)
	if err != nil {
		return nil, err
	}
	return &Flock{Core: core, items: items}, nil
}

// Parcels returns the local parcels. The slice is valid until the next Add.
func (f *Flock) Parcels() []parcel.Parcel {
	return f.items.ps
}

type items struct {
	ps []parcel.Parcel
}

func (s *items) Len() int { return len(s.ps) }

func (s *items) Resize(n int) {
	ps := make([]parcel.Parcel, n)
	copy(ps, s.ps)
	s.ps = ps
}

func (s *items) Load(i int) parcel.Parcel { return s.ps[i] }

func (s *items) Save(i int, p parcel.Parcel) { s.ps[i] = p }

func (s *items) Append(p parcel.Parcel) { s.ps = append(s.ps, p) }

func (s *items) View(i int) (*parcel.Parcel, func()) { return &s.ps[i], nil }

// Batch gathers the parcels into arrays and scatters them back on commit.
func (s *items) Batch(i, j int) (parcel.Batch, func()) {
	b := parcel.NewBatch(j - i)
	for k := range b.Lon {
		p := &s.ps[i+k]
		b.Lon[k], b.Lat[k], b.Z[k], b.Flags[k] = p.Lon, p.Lat, p.Z, p.Flags
	}
	return b, func() {
		for k := range b.Lon {
			p := &s.ps[i+k]
			p.Lon, p.Lat, p.Z, p.Flags = b.Lon[k], b.Lat[k], b.Z[k], b.Flags[k]
		}
	}
}

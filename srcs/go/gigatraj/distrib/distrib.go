// Package distrib spreads parcels over the ranks of a process group. It holds
// the part shared by the two containers, flock and swarm, which differ only
// in how a rank stores its own parcels.
package distrib

import (
	"errors"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/field"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/integ"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
)

var (
	ErrBadParcelCount = errors.New("bad parcel count")
	ErrBadParcelIndex = errors.New("bad parcel index")
	ErrMetIsNotTracer = errors.New("data server is not a tracer")
)

// Mode selects how indexed access moves a parcel.
type Mode int

const (
	// ViaRoot uses the copy of the root; Get also hands the value to every tracer.
	ViaRoot Mode = iota
	// Direct uses the copy of the calling rank; Get returns a value on the
	// root and on the owner only.
	Direct
)

// Tags of the messages exchanged on the container's group.
const (
	tagSet = 101 + iota
	tagGet
	tagGetAll
	tagAdd
	tagGather
)

// Store holds the parcels of one rank, by local index.
type Store interface {
	Len() int
	// Resize sets the number of parcels, zeroing new ones.
	Resize(n int)
	Load(i int) parcel.Parcel
	Save(i int, p parcel.Parcel)
	Append(p parcel.Parcel)
	// View returns parcel i for reading and writing in place. commit, if not
	// nil, must be called to make writes visible.
	View(i int) (p *parcel.Parcel, commit func())
	// Batch returns parcels [i, j) as arrays. commit, if not nil, must be
	// called after the batch was changed.
	Batch(i, j int) (b parcel.Batch, commit func())
}

// Options configure a container.
type Options struct {
	// Ratio of tracers to data servers; 0 means no servers.
	Ratio int
	// Flags used to carve the sub-groups.
	Flags procgroup.Flags
	// BlockSize bounds the parcels given to the integrator at once.
	BlockSize  int
	Integrator parcel.Integrator
	Navigator  parcel.Navigator
	Source     field.Source
	// Time is the model time of the parcels, in seconds.
	Time float64
	Seed int64
}

const DefaultBlockSize = 1024

func (o Options) withDefaults() Options {
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.Integrator == nil {
		o.Integrator = integ.Midpoint{}
	}
	if o.Navigator == nil {
		o.Navigator = integ.Earth
	}
	if o.Source == nil {
		o.Source = field.Uniform{}
	}
	return o
}

// Container is what flock and swarm have in common.
type Container interface {
	Size() int
	Belongs(i int) (int, error)
	Set(i int, p parcel.Parcel, mode Mode) error
	Get(i int, mode Mode) (*parcel.Parcel, error)
	Add(p parcel.Parcel, mode Mode) (int, error)
	Advance(dt float64) error
	Iter() *Iterator
	Each(f func(i int, p *parcel.Parcel) error) error
	Gather() ([]parcel.Parcel, error)
	Close() error
}

var _ Container = (*Core)(nil)

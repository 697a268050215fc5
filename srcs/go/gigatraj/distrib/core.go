package distrib

import (
	"fmt"
	"math"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/field"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
)

// Core implements a container over a Store.
type Core struct {
	g      procgroup.Group
	layout *Layout
	store  Store
	opts   Options

	subgroups []procgroup.Group
	sub       procgroup.Group
	shared    *field.Shared
	t         float64
}

// New lays n parcels of the root out on g. It is collective over g; only
// the count given on the root matters.
func New(g procgroup.Group, n int, store Store, opts Options) (*Core, error) {
	opts = opts.withDefaults()
	count := []int32{int32(n)}
	if n > math.MaxInt32 {
		// Broadcast a count every rank rejects.
		count[0] = -1
	}
	if err := procgroup.BroadcastInts(g, count, g.RootID()); err != nil {
		return nil, err
	}
	layout, err := NewLayout(g.Size(), int(count[0]), opts.Ratio)
	if err != nil {
		return nil, err
	}
	c := &Core{
		g:      g,
		layout: layout,
		store:  store,
		opts:   opts,
		t:      opts.Time,
	}
	if err := c.carve(); err != nil {
		c.Close()
		return nil, err
	}
	store.Resize(c.LocalCount())
	if err := g.SyncLabel("layout"); err != nil {
		c.Close()
		return nil, err
	}
	first, last := c.layout.FirstLast(g.ID())
	log.Debugf("%s of %d parcels, own [%d, %d], server: %t",
		utils.Pluralize(len(layout.Subgroups), "sub-group", "sub-groups"), layout.Total, first, last, c.IsServer())
	return c, nil
}

// carve creates the sub-groups and tells the field who serves each of them.
func (c *Core) carve() error {
	flags := c.opts.Flags &^ procgroup.KeepRoot
	for k, members := range c.layout.Subgroups {
		sg, err := c.g.Subgroup(len(members), flags, members[0])
		if err != nil {
			return err
		}
		c.subgroups = append(c.subgroups, sg)
		if err := sg.SetRole(procgroup.AllRanks, procgroup.Tracer); err != nil {
			return err
		}
		server := c.layout.ServerRank[k]
		if server >= 0 {
			if err := sg.SetRole(server, procgroup.DataReader); err != nil {
				return err
			}
		}
		if sg.Belongs() {
			c.sub = sg
		}
	}
	for r, s := range c.layout.Server {
		role := procgroup.Tracer
		if s {
			role = procgroup.DataReader
		}
		if err := c.g.SetRole(r, role); err != nil {
			return err
		}
	}
	c.shared = field.NewShared(c.opts.Source, c.opts.Seed)
	if c.sub == nil {
		return nil
	}
	k := c.layout.SubgroupOf(c.g.ID())
	return c.shared.Configure(c.sub, c.layout.ServerRank[k])
}

// Size is the number of parcels in the whole group.
func (c *Core) Size() int { return c.layout.Total }

func (c *Core) Group() procgroup.Group { return c.g }

// Subgroup is the sub-group of this rank.
func (c *Core) Subgroup() procgroup.Group { return c.sub }

func (c *Core) Shared() *field.Shared { return c.shared }

func (c *Core) IsServer() bool { return c.layout.Server[c.g.ID()] }

func (c *Core) LocalCount() int { return c.layout.Ranges[c.g.ID()].Len() }

// FirstIndex is the global index of the first local parcel, or -1.
func (c *Core) FirstIndex() int {
	first, _ := c.layout.FirstLast(c.g.ID())
	return first
}

// Ranges returns the inclusive (first, last) global indices of every rank,
// (-1, -1) for ranks without parcels.
func (c *Core) Ranges() [][2]int {
	rs := make([][2]int, len(c.layout.Ranges))
	for r := range rs {
		rs[r][0], rs[r][1] = c.layout.FirstLast(r)
	}
	return rs
}

func (c *Core) Time() float64 { return c.t }

func (c *Core) SetTime(t float64) { c.t = t }

func (c *Core) Belongs(i int) (int, error) { return c.layout.Belongs(i) }

// Local returns the parcel with local index i.
func (c *Core) Local(i int) (parcel.Parcel, error) {
	if c.IsServer() {
		return parcel.Parcel{}, ErrMetIsNotTracer
	}
	if i < 0 || i >= c.store.Len() {
		return parcel.Parcel{}, fmt.Errorf("%w: local %d not in [0, %d)", ErrBadParcelIndex, i, c.store.Len())
	}
	return c.store.Load(i), nil
}

func (c *Core) local(i int) int {
	return i - c.layout.Ranges[c.g.ID()].Begin
}

// Set stores p as parcel i on its owner. With ViaRoot the value of the root
// is used, with Direct the value of the owner. Collective over the group.
func (c *Core) Set(i int, p parcel.Parcel, mode Mode) error {
	owner, err := c.layout.Belongs(i)
	if err != nil {
		return err
	}
	me, root := c.g.ID(), c.g.RootID()
	switch {
	case mode == Direct || owner == root:
		if me == owner {
			c.store.Save(c.local(i), p)
		}
	case me == root:
		return c.sendParcel(owner, p, tagSet)
	case me == owner:
		q, err := c.recvParcel(root, tagSet)
		if err != nil {
			return err
		}
		c.store.Save(c.local(i), q)
	}
	return nil
}

// Get returns parcel i. With Direct only the root and the owner get it; with
// ViaRoot every tracer does. Servers always get nil. Collective over the group.
func (c *Core) Get(i int, mode Mode) (*parcel.Parcel, error) {
	owner, err := c.layout.Belongs(i)
	if err != nil {
		return nil, err
	}
	me, root := c.g.ID(), c.g.RootID()
	var p *parcel.Parcel
	if me == owner {
		q := c.store.Load(c.local(i))
		p = &q
		if owner != root {
			if err := c.sendParcel(root, q, tagGet); err != nil {
				return nil, err
			}
		}
	} else if me == root {
		q, err := c.recvParcel(owner, tagGet)
		if err != nil {
			return nil, err
		}
		p = &q
	}
	if mode == ViaRoot {
		if me == root {
			for r, s := range c.layout.Server {
				if s || r == root || r == owner {
					continue
				}
				if err := c.sendParcel(r, *p, tagGetAll); err != nil {
					return nil, err
				}
			}
		} else if me != owner && !c.IsServer() {
			q, err := c.recvParcel(root, tagGetAll)
			if err != nil {
				return nil, err
			}
			p = &q
		}
	}
	if c.IsServer() {
		return nil, nil
	}
	return p, nil
}

// Add appends p to the tracer holding the fewest parcels and returns its
// global index. The value comes from the root with ViaRoot, from the new
// owner with Direct. The layout only grows once the value has reached its
// owner. Collective over the group.
func (c *Core) Add(p parcel.Parcel, mode Mode) (int, error) {
	owner, idx := c.layout.Place()
	me, root := c.g.ID(), c.g.RootID()
	switch {
	case mode == Direct || owner == root:
		if me == owner {
			c.store.Append(p)
		}
	case me == root:
		if err := c.sendParcel(owner, p, tagAdd); err != nil {
			return -1, err
		}
	case me == owner:
		q, err := c.recvParcel(root, tagAdd)
		if err != nil {
			return -1, err
		}
		c.store.Append(q)
	}
	c.layout.Add()
	return idx, nil
}

func (c *Core) sendParcel(rank int, p parcel.Parcel, tag int) error {
	buf := make([]float64, parcel.WireSize)
	p.Put(buf)
	return c.g.SendDoubles(rank, buf, tag)
}

func (c *Core) recvParcel(rank int, tag int) (parcel.Parcel, error) {
	buf := make([]float64, parcel.WireSize)
	if _, err := c.g.RecvDoubles(rank, buf, tag); err != nil {
		return parcel.Parcel{}, err
	}
	return parcel.Load(buf), nil
}

// Advance moves every local parcel by dt seconds, in blocks. A data server
// answers the requests of its sub-group instead. Collective over the group.
func (c *Core) Advance(dt float64) error {
	if c.IsServer() {
		return c.shared.Serve()
	}
	c.shared.StartSession()
	err := c.advance(dt)
	if e := c.shared.SignalDone(); err == nil {
		err = e
	}
	if err == nil {
		c.t += dt
	}
	return err
}

func (c *Core) advance(dt float64) error {
	n := c.store.Len()
	for i := 0; i < n; i += c.opts.BlockSize {
		j := min(i+c.opts.BlockSize, n)
		b, commit := c.store.Batch(i, j)
		err := c.opts.Integrator.Advance(b, c.t, c.shared, c.opts.Navigator, dt)
		if commit != nil {
			commit()
		}
		if err != nil {
			return fmt.Errorf("advance parcels [%d, %d): %w", i, j, err)
		}
	}
	return nil
}

// Gather collects every parcel on the root, in global order. Other ranks
// get nil. Collective over the group.
func (c *Core) Gather() ([]parcel.Parcel, error) {
	me, root := c.g.ID(), c.g.RootID()
	if me != root {
		if c.IsServer() || c.store.Len() == 0 {
			return nil, nil
		}
		buf := make([]float64, parcel.WireSize*c.store.Len())
		for i := 0; i < c.store.Len(); i++ {
			c.store.Load(i).Put(buf[i*parcel.WireSize:])
		}
		return nil, c.g.SendDoubles(root, buf, tagGather)
	}
	all := make([]parcel.Parcel, c.layout.Total)
	for r, x := range c.layout.Ranges {
		if c.layout.Server[r] || x.Len() == 0 {
			continue
		}
		if r == me {
			for i := 0; i < x.Len(); i++ {
				all[x.Begin+i] = c.store.Load(i)
			}
			continue
		}
		buf := make([]float64, parcel.WireSize*x.Len())
		if _, err := c.g.RecvDoubles(r, buf, tagGather); err != nil {
			return nil, err
		}
		for i := 0; i < x.Len(); i++ {
			all[x.Begin+i] = parcel.Load(buf[i*parcel.WireSize:])
		}
	}
	return all, nil
}

// Close closes the sub-groups of the container, which also drops them from
// the group. The group itself belongs to the caller: it usually outlives the
// container, e.g. to build the next one or to Sync before exit, and only the
// world group may shut the transport down.
func (c *Core) Close() error {
	var errs []error
	for i := len(c.subgroups) - 1; i >= 0; i-- {
		errs = append(errs, c.subgroups[i].Close())
	}
	c.subgroups = nil
	c.sub = nil
	return utils.MergeErrors(errs, "close container")
}

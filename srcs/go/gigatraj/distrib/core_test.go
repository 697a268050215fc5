package distrib

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/field"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup/grouptest"
	"github.com/stretchr/testify/require"
)

type sliceStore struct {
	ps []parcel.Parcel
}

func (s *sliceStore) Len() int                            { return len(s.ps) }
func (s *sliceStore) Resize(n int)                        { s.ps = make([]parcel.Parcel, n) }
func (s *sliceStore) Load(i int) parcel.Parcel            { return s.ps[i] }
func (s *sliceStore) Save(i int, p parcel.Parcel)         { s.ps[i] = p }
func (s *sliceStore) Append(p parcel.Parcel)              { s.ps = append(s.ps, p) }
func (s *sliceStore) View(i int) (*parcel.Parcel, func()) { return &s.ps[i], nil }

func (s *sliceStore) Batch(i, j int) (parcel.Batch, func()) {
	b := parcel.NewBatch(j - i)
	for k := range b.Lon {
		p := s.ps[i+k]
		b.Lon[k], b.Lat[k], b.Z[k], b.Flags[k] = p.Lon, p.Lat, p.Z, p.Flags
	}
	return b, func() {
		for k := range b.Lon {
			p := &s.ps[i+k]
			p.Lon, p.Lat, p.Z, p.Flags = b.Lon[k], b.Lat[k], b.Z[k], b.Flags[k]
		}
	}
}

func Test_Core_serial(t *testing.T) {
	c, err := New(procgroup.NewSerial(), 10, &sliceStore{}, Options{})
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, 10, c.LocalCount())
	require.Equal(t, 0, c.FirstIndex())
	require.False(t, c.IsServer())

	p := parcel.Parcel{Lon: 1, Lat: 2, Z: 3, Tag: 4}
	for _, mode := range []Mode{ViaRoot, Direct} {
		require.NoError(t, c.Set(7, p, mode))
		got, err := c.Get(7, mode)
		require.NoError(t, err)
		require.Equal(t, p, *got)
	}
	_, err = c.Get(10, ViaRoot)
	require.ErrorIs(t, err, ErrBadParcelIndex)
	_, err = c.Local(-1)
	require.ErrorIs(t, err, ErrBadParcelIndex)

	var seen []int
	require.NoError(t, c.Each(func(i int, p *parcel.Parcel) error {
		seen = append(seen, i)
		p.Tag = float64(i)
		return nil
	}))
	require.Len(t, seen, 10)
	for i, x := range seen {
		require.Equal(t, i, x)
		q, _ := c.Local(i)
		require.Equal(t, float64(i), q.Tag)
	}
}

func Test_Core_stopEarly(t *testing.T) {
	c, err := New(procgroup.NewSerial(), 3, &sliceStore{}, Options{})
	require.NoError(t, err)
	it := c.Iter()
	require.True(t, it.Next())
	require.NoError(t, it.Stop())
	require.False(t, it.Next())
	require.NoError(t, it.Stop())

	stop := fmt.Errorf("stop")
	err = c.Each(func(i int, p *parcel.Parcel) error { return stop })
	require.ErrorIs(t, err, stop)
}

func Test_Core_advance(t *testing.T) {
	opts := Options{Source: field.Uniform{W: 2}, BlockSize: 3}
	c, err := New(procgroup.NewSerial(), 7, &sliceStore{}, opts)
	require.NoError(t, err)
	require.NoError(t, c.Set(1, parcel.Parcel{Flags: parcel.NoTrace}, ViaRoot))
	require.NoError(t, c.Advance(10))
	require.Equal(t, 10.0, c.Time())
	for i := 0; i < 7; i++ {
		p, _ := c.Local(i)
		if i == 1 {
			require.Zero(t, p.Z)
		} else {
			require.Equal(t, 20.0, p.Z)
		}
	}
}

func Test_Core_servers(t *testing.T) {
	const n = 20
	grouptest.Run(t, 6, func(g procgroup.Group) error {
		c, err := New(g, n, &sliceStore{}, Options{Ratio: 2, Source: field.Uniform{W: 1}})
		if err != nil {
			return err
		}
		defer c.Close()
		server := g.ID() == 1 || g.ID() == 4
		if c.IsServer() != server {
			return fmt.Errorf("rank %d server %t", g.ID(), c.IsServer())
		}
		if _, err := c.Local(0); server && err != ErrMetIsNotTracer {
			return fmt.Errorf("server Local: %v", err)
		}
		for i := 0; i < n; i++ {
			r, err := c.Belongs(i)
			if err != nil {
				return err
			}
			if r == 1 || r == 4 {
				return fmt.Errorf("parcel %d on server %d", i, r)
			}
		}
		for step := 0; step < 3; step++ {
			if err := c.Advance(1); err != nil {
				return err
			}
		}
		visited := 0
		if err := c.Each(func(i int, p *parcel.Parcel) error {
			visited++
			if p.Z != 3 {
				return fmt.Errorf("parcel %d at z=%f", i, p.Z)
			}
			return nil
		}); err != nil {
			return err
		}
		if visited != c.LocalCount() {
			return fmt.Errorf("visited %d of %d", visited, c.LocalCount())
		}
		ps, err := c.Gather()
		if err != nil {
			return err
		}
		if g.ID() == 0 && len(ps) != n {
			return fmt.Errorf("gathered %d", len(ps))
		}
		return nil
	})
}

func Test_Core_tooManyParcels(t *testing.T) {
	n := math.MaxInt32
	n++
	_, err := New(procgroup.NewSerial(), n, &sliceStore{}, Options{})
	require.ErrorIs(t, err, ErrBadParcelCount)
}

// checkParcel compares the result of Get with the tag expected on this rank,
// where a negative tag means no parcel.
func checkParcel(g procgroup.Group, i int, got *parcel.Parcel, tag float64) error {
	switch {
	case tag < 0 && got != nil:
		return fmt.Errorf("rank %d got parcel %d: %v", g.ID(), i, *got)
	case tag >= 0 && got == nil:
		return fmt.Errorf("rank %d got no parcel %d", g.ID(), i)
	case tag >= 0 && got.Tag != tag:
		return fmt.Errorf("rank %d got parcel %d with tag %f, want %f", g.ID(), i, got.Tag, tag)
	}
	return nil
}

func Test_Core_serversIndexed(t *testing.T) {
	const n = 8
	grouptest.Run(t, 6, func(g procgroup.Group) error {
		c, err := New(g, n, &sliceStore{}, Options{Ratio: 2, Source: field.Uniform{W: 1}})
		if err != nil {
			return err
		}
		defer c.Close()
		me, root := g.ID(), g.RootID()
		server := me == 1 || me == 4

		// ViaRoot: the root's value is stored, every tracer gets it back.
		for i := 0; i < n; i++ {
			p := parcel.Parcel{Tag: -1}
			if me == root {
				p.Tag = float64(i)
			}
			if err := c.Set(i, p, ViaRoot); err != nil {
				return err
			}
			got, err := c.Get(i, ViaRoot)
			if err != nil {
				return err
			}
			want := float64(i)
			if server {
				want = -1
			}
			if err := checkParcel(g, i, got, want); err != nil {
				return err
			}
		}

		// Direct: the owner's value is stored, only the root and the owner get it.
		for i := 0; i < n; i++ {
			owner, err := c.Belongs(i)
			if err != nil {
				return err
			}
			p := parcel.Parcel{Tag: -1}
			if me == owner {
				p.Tag = float64(100 + i)
			}
			if err := c.Set(i, p, Direct); err != nil {
				return err
			}
			got, err := c.Get(i, Direct)
			if err != nil {
				return err
			}
			want := float64(100 + i)
			if server || (me != root && me != owner) {
				want = -1
			}
			if err := checkParcel(g, i, got, want); err != nil {
				return err
			}
		}

		owners := []int{0, 2, 3, 5, 0}
		for k, wantOwner := range owners {
			before := c.Ranges()
			p := parcel.Parcel{Tag: float64(200 + k), Z: float64(me)}
			idx, err := c.Add(p, Direct)
			if err != nil {
				return err
			}
			after := c.Ranges()
			owner, err := c.Belongs(idx)
			if err != nil {
				return err
			}
			if owner != wantOwner || idx != before[owner][1]+1 || after[owner][1] != idx {
				return fmt.Errorf("add %d landed at %d on rank %d, ranges %v", k, idx, owner, after)
			}
			for r := owner + 1; r < len(before); r++ {
				if before[r][0] >= 0 && after[r][0] != before[r][0]+1 {
					return fmt.Errorf("add %d: rank %d starts at %d, was %d", k, r, after[r][0], before[r][0])
				}
			}
			if c.Size() != n+k+1 {
				return fmt.Errorf("add %d: size %d", k, c.Size())
			}
			if me == owner {
				q, err := c.Local(idx - c.FirstIndex())
				if err != nil {
					return err
				}
				if q.Tag != float64(200+k) || q.Z != float64(owner) {
					return fmt.Errorf("add %d stored %v", k, q)
				}
			}
			got, err := c.Get(idx, ViaRoot)
			if err != nil {
				return err
			}
			want := float64(200 + k)
			if server {
				want = -1
			}
			if err := checkParcel(g, idx, got, want); err != nil {
				return err
			}
		}

		if err := c.Advance(1); err != nil {
			return err
		}
		ps, err := c.Gather()
		if err != nil || me != root {
			return err
		}
		if len(ps) != n+len(owners) {
			return fmt.Errorf("gathered %d", len(ps))
		}
		var added int
		for i, p := range ps {
			if p.Tag >= 200 {
				added++
			} else if p.Tag != float64(100+i-added) {
				return fmt.Errorf("parcel %d has tag %f", i, p.Tag)
			}
		}
		if added != len(owners) {
			return fmt.Errorf("gathered %d added parcels", added)
		}
		return nil
	})
}

var errLost = errors.New("lost")

// lossyGroup fails every double transfer while broken is set.
type lossyGroup struct {
	procgroup.Group
	broken bool
}

func (g *lossyGroup) SendDoubles(rank int, xs []float64, tag int) error {
	if g.broken {
		return errLost
	}
	return g.Group.SendDoubles(rank, xs, tag)
}

func (g *lossyGroup) RecvDoubles(rank int, xs []float64, tag int) (int, error) {
	if g.broken {
		return -1, errLost
	}
	return g.Group.RecvDoubles(rank, xs, tag)
}

func Test_Core_addFailure(t *testing.T) {
	grouptest.Run(t, 2, func(world procgroup.Group) error {
		g := &lossyGroup{Group: world}
		c, err := New(g, 3, &sliceStore{}, Options{})
		if err != nil {
			return err
		}
		defer c.Close()
		before, count := c.Ranges(), c.LocalCount()
		g.broken = true
		if _, err := c.Add(parcel.Parcel{Tag: 7}, ViaRoot); !errors.Is(err, errLost) {
			return fmt.Errorf("add over a broken link: %v", err)
		}
		if c.Size() != 3 || c.LocalCount() != count || fmt.Sprint(c.Ranges()) != fmt.Sprint(before) {
			return fmt.Errorf("failed add changed the layout to %v", c.Ranges())
		}
		g.broken = false
		idx, err := c.Add(parcel.Parcel{Tag: 7}, ViaRoot)
		if err != nil {
			return err
		}
		if idx != 3 || c.Size() != 4 {
			return fmt.Errorf("add landed at %d of %d", idx, c.Size())
		}
		got, err := c.Get(idx, ViaRoot)
		if err != nil {
			return err
		}
		return checkParcel(g, idx, got, 7)
	})
}

func Test_Core_emptyTracer(t *testing.T) {
	grouptest.Run(t, 3, func(g procgroup.Group) error {
		// Rank 1 serves, rank 2 traces nothing.
		c, err := New(g, 1, &sliceStore{}, Options{Ratio: 2, Source: field.Uniform{W: 1}})
		if err != nil {
			return err
		}
		defer c.Close()
		if g.ID() == 2 && c.LocalCount() != 0 {
			return fmt.Errorf("rank 2 holds %d parcels", c.LocalCount())
		}
		for round := 0; round < 2; round++ {
			var visited int
			if err := c.Each(func(i int, p *parcel.Parcel) error {
				visited++
				return nil
			}); err != nil {
				return err
			}
			if visited != c.LocalCount() {
				return fmt.Errorf("round %d visited %d of %d", round, visited, c.LocalCount())
			}
		}
		return nil
	})
}

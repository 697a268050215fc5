package integ

import (
	"math"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
)

// Bounds limits the vertical coordinate. A zero Bounds is unbounded.
type Bounds struct {
	Bottom float64
	Top    float64
}

func (b Bounds) apply(z float64, f parcel.Flag) (float64, parcel.Flag) {
	if b.Top <= b.Bottom {
		return z, f
	}
	if z < b.Bottom {
		return b.Bottom, f | parcel.HitBottom
	}
	if z > b.Top {
		return b.Top, f | parcel.HitTop
	}
	return z, f
}

// winds holds u, v, w at the active parcels of a batch.
type winds struct {
	u, v, w []float64
}

func newWinds(n int) winds {
	return winds{u: make([]float64, n), v: make([]float64, n), w: make([]float64, n)}
}

func (ws winds) fetch(src parcel.Source, t float64, lon, lat, z []float64) error {
	if err := src.Fetch(parcel.U, t, lon, lat, z, ws.u); err != nil {
		return err
	}
	if err := src.Fetch(parcel.V, t, lon, lat, z, ws.v); err != nil {
		return err
	}
	return src.Fetch(parcel.W, t, lon, lat, z, ws.w)
}

func (ws winds) bad(i int, fill float64) bool {
	for _, x := range []float64{ws.u[i], ws.v[i], ws.w[i]} {
		if x == fill || math.IsNaN(x) {
			return true
		}
	}
	return false
}

// active gathers the parcels of b that are not skipped.
func active(b parcel.Batch) ([]int, []float64, []float64, []float64) {
	var idx []int
	for i, f := range b.Flags {
		if !f.Skip() {
			idx = append(idx, i)
		}
	}
	lon := make([]float64, len(idx))
	lat := make([]float64, len(idx))
	z := make([]float64, len(idx))
	for k, i := range idx {
		lon[k], lat[k], z[k] = b.Lon[i], b.Lat[i], b.Z[i]
	}
	return idx, lon, lat, z
}

// Euler advances parcels with the forward Euler scheme.
type Euler struct {
	Bounds Bounds
}

func (e Euler) Advance(b parcel.Batch, t float64, src parcel.Source, nav parcel.Navigator, dt float64) error {
	idx, lon, lat, z := active(b)
	if len(idx) == 0 {
		return nil
	}
	ws := newWinds(len(idx))
	if err := ws.fetch(src, t, lon, lat, z); err != nil {
		return err
	}
	fill := src.FillValue()
	for k, i := range idx {
		if ws.bad(k, fill) {
			b.Flags[i] |= parcel.BadValue
			continue
		}
		x, y := nav.Step(lon[k], lat[k], ws.u[k], ws.v[k], dt)
		store(b, i, nav, x, y, z[k]+ws.w[k]*dt, e.Bounds)
	}
	return nil
}

// Midpoint advances parcels with the second order Runge-Kutta midpoint scheme.
type Midpoint struct {
	Bounds Bounds
}

func (m Midpoint) Advance(b parcel.Batch, t float64, src parcel.Source, nav parcel.Navigator, dt float64) error {
	idx, lon, lat, z := active(b)
	if len(idx) == 0 {
		return nil
	}
	fill := src.FillValue()
	w0 := newWinds(len(idx))
	if err := w0.fetch(src, t, lon, lat, z); err != nil {
		return err
	}
	mlon := make([]float64, len(idx))
	mlat := make([]float64, len(idx))
	mz := make([]float64, len(idx))
	for k := range idx {
		if w0.bad(k, fill) {
			mlon[k], mlat[k], mz[k] = lon[k], lat[k], z[k]
			continue
		}
		x, y := nav.Step(lon[k], lat[k], w0.u[k], w0.v[k], dt/2)
		x, y, _ = nav.Normalize(x, y)
		mlon[k], mlat[k], mz[k] = x, y, z[k]+w0.w[k]*dt/2
	}
	w1 := newWinds(len(idx))
	if err := w1.fetch(src, t+dt/2, mlon, mlat, mz); err != nil {
		return err
	}
	for k, i := range idx {
		if w0.bad(k, fill) || w1.bad(k, fill) {
			b.Flags[i] |= parcel.BadValue
			continue
		}
		x, y := nav.Step(lon[k], lat[k], w1.u[k], w1.v[k], dt)
		store(b, i, nav, x, y, z[k]+w1.w[k]*dt, m.Bounds)
	}
	return nil
}

func store(b parcel.Batch, i int, nav parcel.Navigator, lon, lat, z float64, bounds Bounds) {
	lon, lat, ok := nav.Normalize(lon, lat)
	if !ok {
		b.Flags[i] |= parcel.OutOfBounds
		return
	}
	b.Lon[i], b.Lat[i] = lon, lat
	b.Z[i], b.Flags[i] = bounds.apply(z, b.Flags[i])
}

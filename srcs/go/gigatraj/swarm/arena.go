package swarm

import "github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"

// arena keeps parcels as parallel arrays that grow by doubling.
type arena struct {
	lon, lat, z, tag []float64
	flags            []parcel.Flag
	n                int
}

func (a *arena) Len() int { return a.n }

func (a *arena) Cap() int { return len(a.lon) }

func (a *arena) grow(n int) {
	if n <= len(a.lon) {
		return
	}
	c := max(len(a.lon), 1)
	for c < n {
		c *= 2
	}
	a.lon = resize(a.lon, c)
	a.lat = resize(a.lat, c)
	a.z = resize(a.z, c)
	a.tag = resize(a.tag, c)
	flags := make([]parcel.Flag, c)
	copy(flags, a.flags)
	a.flags = flags
}

func resize(xs []float64, c int) []float64 {
	ys := make([]float64, c)
	copy(ys, xs)
	return ys
}

func (a *arena) Resize(n int) {
	a.grow(n)
	for i := a.n; i < n; i++ {
		a.Save(i, parcel.Parcel{})
	}
	a.n = n
}

func (a *arena) Load(i int) parcel.Parcel {
	return parcel.Parcel{Lon: a.lon[i], Lat: a.lat[i], Z: a.z[i], Tag: a.tag[i], Flags: a.flags[i]}
}

func (a *arena) Save(i int, p parcel.Parcel) {
	a.lon[i], a.lat[i], a.z[i], a.tag[i], a.flags[i] = p.Lon, p.Lat, p.Z, p.Tag, p.Flags
}

func (a *arena) Append(p parcel.Parcel) {
	a.grow(a.n + 1)
	a.Save(a.n, p)
	a.n++
}

// View returns a proxy of parcel i that commit writes back.
func (a *arena) View(i int) (*parcel.Parcel, func()) {
	p := a.Load(i)
	return &p, func() { a.Save(i, p) }
}

// Batch slices the arrays without copying.
func (a *arena) Batch(i, j int) (parcel.Batch, func()) {
	return parcel.Batch{
		Lon:   a.lon[i:j],
		Lat:   a.lat[i:j],
		Z:     a.z[i:j],
		Flags: a.flags[i:j],
	}, nil
}

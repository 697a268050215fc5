package parcel

// Source supplies values of a quantity at a time and a set of positions.
type Source interface {
	// Fetch fills out[i] with the value of quantity at (lon[i], lat[i], z[i]).
	Fetch(quantity string, t float64, lon, lat, z []float64, out []float64) error
	// FillValue marks values that are missing from the field.
	FillValue() float64
}

// Navigator knows the geometry of the horizontal coordinates.
type Navigator interface {
	// Normalize brings a position back into lon [0, 360), lat [-90, 90],
	// crossing a pole if needed. ok is false if the position is not finite.
	Normalize(lon, lat float64) (float64, float64, bool)
	// Step moves a position by the horizontal wind (u, v) in m/s for dt seconds.
	Step(lon, lat, u, v, dt float64) (float64, float64)
}

// Integrator advances a batch by one time step in place. Parcels whose
// flags say Skip are left alone; parcels that become invalid get a flag.
type Integrator interface {
	Advance(b Batch, t float64, src Source, nav Navigator, dt float64) error
}

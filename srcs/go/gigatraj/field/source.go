// Package field supplies wind values to the integrators, either from a local
// source or from the data server of a sub-group.
package field

import (
	"fmt"
	"math"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
)

// DefaultFillValue marks missing data.
const DefaultFillValue = -9999.0

// Source is a field that can be evaluated in this process.
type Source interface {
	parcel.Source
	// CalendarTime formats the model time t, in seconds.
	CalendarTime(t float64) string
}

// Calendar converts model time in seconds from Epoch.
type Calendar struct {
	Epoch time.Time
}

func (c Calendar) CalendarTime(t float64) string {
	return c.Epoch.Add(time.Duration(t * float64(time.Second))).UTC().Format(time.RFC3339)
}

// Uniform is a constant field.
type Uniform struct {
	Calendar
	U, V, W, T float64
}

func (f Uniform) FillValue() float64 { return DefaultFillValue }

func (f Uniform) Fetch(quantity string, t float64, lon, lat, z []float64, out []float64) error {
	var x float64
	switch quantity {
	case parcel.U:
		x = f.U
	case parcel.V:
		x = f.V
	case parcel.W:
		x = f.W
	case parcel.T:
		x = f.T
	default:
		return unknown(quantity)
	}
	for i := range out {
		out[i] = x
	}
	return nil
}

// SolidBody is a zonal flow rotating the atmosphere as a solid body with
// Speed m/s at the equator. Parcels above Top get the fill value.
type SolidBody struct {
	Calendar
	Speed float64
	Top   float64
}

func (f SolidBody) FillValue() float64 { return DefaultFillValue }

func (f SolidBody) Fetch(quantity string, t float64, lon, lat, z []float64, out []float64) error {
	if len(lon) != len(out) || len(lat) != len(out) || len(z) != len(out) {
		return fmt.Errorf("fetch %s: %d positions for %d values", quantity, len(lon), len(out))
	}
	for i := range out {
		if f.Top > 0 && z[i] > f.Top {
			out[i] = DefaultFillValue
			continue
		}
		switch quantity {
		case parcel.U:
			out[i] = f.Speed * math.Cos(lat[i]*math.Pi/180)
		case parcel.V, parcel.W:
			out[i] = 0
		case parcel.T:
			out[i] = 288 - 6.5e-3*z[i]
		default:
			return unknown(quantity)
		}
	}
	return nil
}

func unknown(quantity string) error {
	return fmt.Errorf("unknown quantity %q", quantity)
}

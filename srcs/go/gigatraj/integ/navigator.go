// Package integ holds reference integrators and the spherical navigator.
package integ

import "math"

// EarthRadius in meters.
const EarthRadius = 6371e3

const degrees = 180 / math.Pi

// Sphere navigates on a sphere of radius Radius meters.
type Sphere struct {
	Radius float64
}

// Earth is the navigator on the mean earth sphere.
var Earth = Sphere{Radius: EarthRadius}

// minCos keeps the zonal step finite at the poles.
const minCos = 1e-9

func (s Sphere) Step(lon, lat, u, v, dt float64) (float64, float64) {
	c := math.Cos(lat / degrees)
	if c < minCos {
		c = minCos
	}
	lat += v * dt / s.Radius * degrees
	lon += u * dt / (s.Radius * c) * degrees
	return lon, lat
}

func (s Sphere) Normalize(lon, lat float64) (float64, float64, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return lon, lat, false
	}
	// Fold the latitude across the poles, moving to the opposite meridian.
	lat = math.Mod(lat+90, 360)
	if lat < 0 {
		lat += 360
	}
	if lat > 180 {
		lat = 360 - lat
		lon += 180
	}
	lat -= 90
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon = 0
	}
	return lon, lat, true
}

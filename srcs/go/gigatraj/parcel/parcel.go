// Package parcel defines the unit of work of a trajectory run and the
// contracts of the strategies that move it.
package parcel

import (
	"fmt"
	"strings"
)

// Flag holds the status bits of a parcel.
type Flag uint32

const (
	// NoTrace excludes a parcel from advection without marking it bad.
	NoTrace Flag = 1 << iota
	OutOfBounds
	HitBottom
	HitTop
	SyncErr
	BadValue
)

// StopMask is the set of flags that exclude a parcel from the next step.
const StopMask = NoTrace | OutOfBounds | HitBottom | HitTop | SyncErr | BadValue

var flagNames = []struct {
	f    Flag
	name string
}{
	{NoTrace, "NoTrace"},
	{OutOfBounds, "OutOfBounds"},
	{HitBottom, "HitBottom"},
	{HitTop, "HitTop"},
	{SyncErr, "SyncErr"},
	{BadValue, "BadValue"},
}

func (f Flag) String() string {
	var parts []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "OK"
	}
	return strings.Join(parts, "|")
}

// Skip reports whether a parcel with these flags is left out of a step.
func (f Flag) Skip() bool { return f&StopMask != 0 }

// Parcel is a point advected by the wind field. Lon and Lat are in degrees,
// Z is the vertical coordinate in the units of the field source.
type Parcel struct {
	Lon   float64
	Lat   float64
	Z     float64
	Tag   float64
	Flags Flag
}

func (p Parcel) Skip() bool { return p.Flags.Skip() }

func (p Parcel) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f) tag=%g %s", p.Lon, p.Lat, p.Z, p.Tag, p.Flags)
}

// WireSize is the number of doubles of a parcel on the wire.
const WireSize = 5

// Put writes p into buf[:WireSize].
func (p Parcel) Put(buf []float64) {
	buf[0] = p.Lon
	buf[1] = p.Lat
	buf[2] = p.Z
	buf[3] = p.Tag
	buf[4] = float64(p.Flags)
}

// Load reads a parcel written by Put.
func Load(buf []float64) Parcel {
	return Parcel{
		Lon:   buf[0],
		Lat:   buf[1],
		Z:     buf[2],
		Tag:   buf[3],
		Flags: Flag(uint32(buf[4])),
	}
}

// Batch is a set of parcels as parallel arrays, advanced in place.
type Batch struct {
	Lon   []float64
	Lat   []float64
	Z     []float64
	Flags []Flag
}

func NewBatch(n int) Batch {
	return Batch{
		Lon:   make([]float64, n),
		Lat:   make([]float64, n),
		Z:     make([]float64, n),
		Flags: make([]Flag, n),
	}
}

func (b Batch) Len() int { return len(b.Lon) }

// Slice returns the parcels [i, j) of b, sharing storage.
func (b Batch) Slice(i, j int) Batch {
	return Batch{
		Lon:   b.Lon[i:j],
		Lat:   b.Lat[i:j],
		Z:     b.Z[i:j],
		Flags: b.Flags[i:j],
	}
}

// Active counts the parcels that are not skipped.
func (b Batch) Active() int {
	var n int
	for _, f := range b.Flags {
		if !f.Skip() {
			n++
		}
	}
	return n
}

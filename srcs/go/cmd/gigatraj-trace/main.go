// gigatraj-trace advects a lattice of parcels through an analytic wind field
// and prints the final positions from the root.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/config"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/distrib"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/field"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/flock"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/integ"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/swarm"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
)

var (
	n        = flag.Int("n", 100, "number of parcels")
	ratio    = flag.Int("ratio", 0, "tracers per data server, 0 for none")
	steps    = flag.Int("steps", 24, "number of time steps")
	dt       = flag.Float64("dt", 3600, "time step in seconds")
	useSwarm = flag.Bool("swarm", false, "keep parcels in parallel arrays")
	scheme   = flag.String("integ", "midpoint", "integrator: euler | midpoint")
	speed    = flag.Float64("speed", 20, "equatorial wind speed in m/s")
	top      = flag.Float64("top", 0, "height above which the field is missing, 0 for none")
	height   = flag.Float64("z", 1000, "initial height of the parcels")
)

func main() {
	flag.Parse()
	g, err := procgroup.New()
	if err != nil {
		utils.ExitErr(err)
	}
	if err := trace(g); err != nil {
		log.Errorf("%v", err)
		g.Shutdown()
		os.Exit(1)
	}
	if err := g.Close(); err != nil {
		utils.ExitErr(err)
	}
}

func newIntegrator(name string) (parcel.Integrator, error) {
	switch name {
	case "euler":
		return integ.Euler{}, nil
	case "midpoint":
		return integ.Midpoint{}, nil
	}
	return nil, fmt.Errorf("unknown integrator %q", name)
}

func newContainer(g procgroup.Group, opts distrib.Options) (distrib.Container, error) {
	if *useSwarm {
		return swarm.New(g, *n, opts)
	}
	return flock.New(g, *n, opts)
}

// options takes the block size from the configuration applied by
// procgroup.New.
func options(in parcel.Integrator, src field.Source) distrib.Options {
	return distrib.Options{
		Ratio:      *ratio,
		BlockSize:  config.Current().BlockSize,
		Integrator: in,
		Source:     src,
	}
}

func trace(g procgroup.Group) error {
	in, err := newIntegrator(*scheme)
	if err != nil {
		return err
	}
	src := field.SolidBody{
		Calendar: field.Calendar{Epoch: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		Speed:    *speed,
		Top:      *top,
	}
	c, err := newContainer(g, options(in, src))
	if err != nil {
		return err
	}
	defer c.Close()
	if err := seed(g, c); err != nil {
		return err
	}
	d, err := utils.Measure(func() error {
		for i := 0; i < *steps; i++ {
			if err := c.Advance(*dt); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("%s of %s took %s", utils.Pluralize(*steps, "step", "steps"), utils.Pluralize(*n, "parcel", "parcels"), d)
	ps, err := c.Gather()
	if err != nil {
		return err
	}
	if g.ID() == g.RootID() {
		when := src.CalendarTime(float64(*steps) * *dt)
		for i, p := range ps {
			fmt.Printf("%s %d %s\n", when, i, p)
		}
	}
	return nil
}

// seed places the parcels on a lattice of latitude circles, shifted by a
// longitude offset all members agree on.
func seed(g procgroup.Group, c distrib.Container) error {
	rows := max(int(math.Ceil(math.Sqrt(float64(*n)/2))), 1)
	cols := max((*n+rows-1)/rows, 1)
	offset := g.Random() * 360 / float64(cols)
	for i := 0; i < *n; i++ {
		row, col := i/cols, i%cols
		p := parcel.Parcel{
			Lon: offset + 360*float64(col)/float64(cols),
			Lat: -90 + 180*(float64(row)+0.5)/float64(rows),
			Z:   *height,
			Tag: float64(i),
		}
		if err := c.Set(i, p, distrib.ViaRoot); err != nil {
			return err
		}
	}
	return nil
}

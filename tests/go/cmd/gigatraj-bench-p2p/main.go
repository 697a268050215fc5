// gigatraj-bench-p2p measures the point to point bandwidth of the process
// group transport: every rank sends a buffer to its right neighbour and
// receives one from its left neighbour.
package main

import (
	"flag"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
	"github.com/GEOS-ESM/gigatraj-sub006/tests/go/testutils"
)

var (
	size         = flag.Int("size", 1<<20, "number of doubles per message")
	epochs       = flag.Int("epochs", 15, "")
	warmupEpochs = flag.Int("warmup", 2, "warmup epochs")
)

func main() {
	log.SetFlags(0)
	flag.Parse()
	g, err := procgroup.New()
	if err != nil {
		utils.ExitErr(err)
	}
	if err := bench(g); err != nil {
		g.Shutdown()
		utils.ExitErr(err)
	}
	if err := g.Close(); err != nil {
		utils.ExitErr(err)
	}
}

func bench(g procgroup.Group) error {
	np, rank := g.Size(), g.ID()
	if np < 2 {
		log.Warnf("a single rank only talks to itself")
	}
	right, left := (rank+1)%np, (rank+np-1)%np
	send := make([]float64, *size)
	recv := make([]float64, *size)
	epoch := func() error {
		if err := g.SendDoubles(right, send, 0); err != nil {
			return err
		}
		_, err := g.RecvDoubles(left, recv, 0)
		return err
	}
	for i := 0; i < *warmupEpochs; i++ {
		if err := epoch(); err != nil {
			return err
		}
	}
	if err := g.SyncLabel("bench"); err != nil {
		return err
	}
	w := testutils.NewStopWatch()
	for i := 0; i < *epochs; i++ {
		if err := epoch(); err != nil {
			return err
		}
	}
	if err := g.Sync(); err != nil {
		return err
	}
	w.Stop(func(d time.Duration) {
		workload := int64(*epochs) * int64(np) * int64(*size) * 8
		if rank == g.RootID() {
			log.Infof("%d ranks, %s, %s", np, utils.Pluralize(*epochs, "epoch", "epochs"), testutils.Rate(workload, d))
		}
	})
	return nil
}

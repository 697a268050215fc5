// gigatraj-run starts one process per rank of a tracing job.
package main

import (
	"context"
	"os"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/job"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/proc"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils/runner/local"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils/runner/remote"
	"golang.org/x/sync/errgroup"
)

func main() {
	var f FlagSet
	if err := f.Parse(os.Args); err != nil {
		utils.ExitErr(err)
	}
	t0 := time.Now()
	defer func(prog string) { log.Infof("%s took %s", prog, time.Since(t0)) }(utils.ProgName())
	selfIPv4, err := plan.ParseIPv4(f.Self)
	if err != nil {
		utils.ExitErr(err)
	}
	peers, err := f.HostList.GenPeerList(f.ClusterSize, f.PortRange)
	if err != nil {
		utils.ExitErr(err)
	}
	id, err := job.NewID()
	if err != nil {
		utils.ExitErr(err)
	}
	j := job.Job{
		ID:        id,
		HostList:  f.HostList,
		PortRange: f.PortRange,
		Prog:      f.Prog,
		Args:      f.Args,
		LogDir:    f.LogDir,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if f.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	utils.Trap(func(sig os.Signal) {
		log.Warnf("%s received, stopping the job", sig)
		cancel()
	})
	log.Infof("job %s: %s of %s with %q", id, utils.Pluralize(len(peers), "rank", "ranks"), j.Prog, j.Args)
	d, err := utils.Measure(func() error { return run(ctx, &f, j, selfIPv4, peers) })
	log.Infof("all %d ranks finished, took %s", len(peers), d)
	if err != nil {
		utils.ExitErr(err)
	}
}

// run starts the ranks of this host as child processes and the others over ssh.
func run(ctx context.Context, f *FlagSet, j job.Job, self uint32, peers plan.PeerList) error {
	var here, there []proc.Proc
	for _, p := range j.CreateAllProcs(peers) {
		if p.IPv4 == self {
			here = append(here, p)
		} else {
			there = append(there, p)
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	if len(here) > 0 {
		g.Go(func() error { return local.RunAll(ctx, here, f.VerboseLog) })
	}
	if len(there) > 0 {
		g.Go(func() error { return remote.RunAll(ctx, f.User, there, f.VerboseLog, f.LogDir) })
	}
	return g.Wait()
}

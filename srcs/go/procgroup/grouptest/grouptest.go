// Package grouptest runs the ranks of a job as goroutines of one test
// process, each with its own loopback transport.
package grouptest

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/config"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
	"golang.org/x/sync/errgroup"
)

// Timeout bounds a whole Run; a rank blocked past it fails the test.
var Timeout = time.Minute

// Peers returns n peers on free loopback ports.
func Peers(n int) (plan.PeerList, error) {
	var ls []net.Listener
	defer func() {
		for _, l := range ls {
			l.Close()
		}
	}()
	var peers plan.PeerList
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
		peers = append(peers, plan.PeerID{
			IPv4: plan.MustParseIPv4("127.0.0.1"),
			Port: uint16(l.Addr().(*net.TCPAddr).Port),
		})
	}
	return peers, nil
}

// Configs returns the configuration of every rank of a job over peers.
func Configs(peers plan.PeerList, jobID string) []*config.Config {
	cfgs := make([]*config.Config, len(peers))
	for i, p := range peers {
		cfg := config.Default()
		cfg.Single = false
		cfg.Self = p
		cfg.Peers = peers
		cfg.JobID = jobID
		cfg.ConnRetryCount = 50
		cfg.ConnRetryPeriod = 20 * time.Millisecond
		cfg.WaitPeerTimeout = 10 * time.Second
		cfgs[i] = cfg
	}
	return cfgs
}

// Run forms a world of n ranks and calls f on each of them concurrently.
// The world group is closed after f returns.
func Run(t testing.TB, n int, f func(g procgroup.Group) error) {
	t.Helper()
	peers, err := Peers(n)
	if err != nil {
		t.Fatal(err)
	}
	cfgs := Configs(peers, fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano()))
	var eg errgroup.Group
	for i := range cfgs {
		cfg := cfgs[i]
		eg.Go(func() error {
			g, err := procgroup.NewWorld(cfg)
			if err != nil {
				return err
			}
			if err := f(g); err != nil {
				g.Shutdown()
				return fmt.Errorf("rank %d: %w", g.ID(), err)
			}
			return g.Close()
		})
	}
	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(Timeout):
		t.Fatalf("%d ranks still running after %s", n, Timeout)
	}
}

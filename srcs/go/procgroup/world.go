package procgroup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/config"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/handler"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/server"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
	"golang.org/x/sync/errgroup"
)

// world is the transport shared by every group of a process.
type world struct {
	self   plan.PeerID
	peers  plan.PeerList
	router *handler.Router
	server server.Server

	closeOnce sync.Once
	closeErr  error
}

// New returns the world group described by the process environment: the
// serial group when the process was not started by gigatraj-run.
func New() (Group, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Apply()
	return NewWorld(cfg)
}

// NewWorld starts the transport of cfg.Self, waits until every peer is
// reachable and returns the group of all peers. It is collective over
// cfg.Peers.
func NewWorld(cfg *config.Config) (Group, error) {
	if cfg.Single {
		return NewSerial(), nil
	}
	rank, ok := cfg.Peers.Rank(cfg.Self)
	if !ok {
		return nil, fmt.Errorf("%w: %s not in %s", ErrBadProcessor, cfg.Self, cfg.Peers)
	}
	token := cfg.Token()
	opts := connection.Options{
		RetryCount:  cfg.ConnRetryCount,
		RetryPeriod: cfg.ConnRetryPeriod,
	}
	router := handler.NewRouter(cfg.Self, token, opts)
	srv := server.New(cfg.Self, router, token)
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadParallelism, err)
	}
	w := &world{
		self:   cfg.Self,
		peers:  cfg.Peers,
		router: router,
		server: srv,
	}
	if err := w.waitPeers(cfg.WaitPeerTimeout); err != nil {
		w.close()
		return nil, err
	}
	ranks := make([]int, len(cfg.Peers))
	for i := range ranks {
		ranks[i] = i
	}
	g := newNetGroup(w, worldID(token), ranks, rank)
	g.owner = true
	log.SetPrefix(fmt.Sprintf("[%d/%d]", rank, len(ranks)))
	if err := g.SyncLabel("world"); err != nil {
		w.close()
		return nil, err
	}
	log.Debugf("world of %s formed", utils.Pluralize(len(ranks), "rank", "ranks"))
	return g, nil
}

func (w *world) waitPeers(timeout time.Duration) error {
	d, err := utils.Measure(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		eg, ctx := errgroup.WithContext(ctx)
		for _, p := range w.peers {
			if p == w.self {
				continue
			}
			p := p
			eg.Go(func() error {
				n, err := w.router.Wait(ctx, p)
				if err != nil {
					return fmt.Errorf("%w: %s unreachable after %d pings: %v", ErrBadParallelism, p, n, err)
				}
				return nil
			})
		}
		return eg.Wait()
	})
	log.Debugf("waited %s for %s", utils.Pluralize(len(w.peers)-1, "peer", "peers"), d)
	return err
}

func (w *world) close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.router.Close()
		w.server.Close()
	})
	return w.closeErr
}

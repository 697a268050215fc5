// Package remote runs the ranks of a job on their hosts over SSH.
package remote

import (
	"context"
	"path"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/proc"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils/iostream"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils/ssh"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils/xterm"
	"golang.org/x/sync/errgroup"
)

func RunAll(ctx context.Context, user string, ps []proc.Proc, verboseLog bool, logDir string) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range ps {
		i, p := i, p
		g.Go(func() error {
			t0 := time.Now()
			config := ssh.Config{
				Host: p.PubAddr,
				User: user,
			}
			client, err := ssh.New(config)
			if err != nil {
				log.Errorf("#<%s> failed to new SSH Client with config: %v: %v", p.Name, config, err)
				return err
			}
			defer client.Close()
			var redirectors []*iostream.StdWriters
			if verboseLog {
				redirectors = append(redirectors, iostream.NewXTermRedirector(p.Name, xterm.BasicColors.Choose(i)))
			}
			redirectors = append(redirectors, iostream.NewFileRedirector(path.Join(logDir, p.Name)))
			if err := client.Watch(ctx, p.Script(), redirectors); err != nil {
				log.Errorf("#<%s> exited with error: %v, took %s", p.Name, err, time.Since(t0))
				return err
			}
			log.Debugf("#<%s> finished successfully, took %s", p.Name, time.Since(t0))
			return nil
		})
	}
	return g.Wait()
}

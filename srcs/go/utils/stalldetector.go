package utils

import (
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
)

// StallPeriod is how long a watched operation may block before it is reported.
var StallPeriod = 10 * time.Second

type StallDetector struct {
	name    string
	tk      *time.Ticker
	stopped chan struct{}
	done    chan struct{}
}

// InstallStallDetector logs a warning every StallPeriod until Stop is called.
func InstallStallDetector(name string) *StallDetector {
	s := &StallDetector{
		name:    name,
		tk:      time.NewTicker(StallPeriod),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.watch()
	return s
}

func (s *StallDetector) watch() {
	defer close(s.done)
	t0 := time.Now()
	var hasStalled bool
	for {
		select {
		case <-s.tk.C:
			hasStalled = true
			log.Warnf("%s stalled for %s", s.name, time.Since(t0))
		case <-s.stopped:
			if hasStalled {
				log.Warnf("%s recovered after %s", s.name, time.Since(t0))
			}
			return
		}
	}
}

func (s *StallDetector) Stop() {
	s.tk.Stop()
	close(s.stopped)
	<-s.done
}

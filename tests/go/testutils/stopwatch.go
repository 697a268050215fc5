package testutils

import (
	"strconv"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
)

type StopWatch struct {
	t0 time.Time
}

func NewStopWatch() *StopWatch {
	return &StopWatch{
		t0: time.Now(),
	}
}

// Stop passes the elapsed time to f, or logs it when f is nil.
func (w *StopWatch) Stop(f func(time.Duration)) {
	d := time.Since(w.t0)
	if f != nil {
		f(d)
		return
	}
	log.Infof("took %s", d)
}

// Rate formats n bytes moved in d.
func Rate(n int64, d time.Duration) string {
	const Gi = 1 << 30
	return strconv.FormatFloat(float64(n)/Gi/d.Seconds(), 'f', 3, 64) + " GiB/s"
}

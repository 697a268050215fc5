package field

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
)

var (
	ErrNotServer   = errors.New("not the data server of the group")
	ErrFetchFailed = errors.New("fetch failed on data server")
)

// Shared evaluates a Source either locally or through the data server of a
// sub-group. Every member of the sub-group configures it with the same
// server rank; the server runs Serve while the others call Fetch.
type Shared struct {
	src  Source
	seed int64

	mu     sync.Mutex
	g      procgroup.Group
	server int
	done   bool
	fill   *float64
	early  map[int]int
}

func NewShared(src Source, seed int64) *Shared {
	return &Shared{src: src, seed: seed, server: -1}
}

// Configure attaches s to the sub-group g with its data server at
// serverRank, or without a server if serverRank is -1.
func (s *Shared) Configure(g procgroup.Group, serverRank int) error {
	if serverRank != -1 && (serverRank < 0 || serverRank >= g.Size()) {
		return fmt.Errorf("%w: server rank %d not in [0, %d)", procgroup.ErrBadProcessor, serverRank, g.Size())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g = g
	s.server = serverRank
	s.done = false
	s.fill = nil
	s.early = nil
	return nil
}

// IsServerRankFor reports whether this process is the data server of g.
func (s *Shared) IsServerRankFor(g procgroup.Group) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g != nil && s.g == g && s.server >= 0 && g.ID() == s.server
}

func (s *Shared) Group() procgroup.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g
}

// remote returns the sub-group and server rank if requests go to a server.
func (s *Shared) remote() (procgroup.Group, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.g == nil || s.server < 0 || !s.g.Belongs() || s.g.ID() == s.server {
		return nil, -1, false
	}
	return s.g, s.server, true
}

// StartSession begins a pass of the tracers; each tracer signals done at
// most once per session.
func (s *Shared) StartSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = false
}

// SignalDone tells the server that this tracer has no more requests in the
// current session. It does nothing without a server or when already sent.
func (s *Shared) SignalDone() error {
	g, server, ok := s.remote()
	if !ok {
		return nil
	}
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.mu.Unlock()
	log.Debugf("signal done to data server %d", server)
	return g.SendInts(server, []int32{ReqDone, 0}, TagRequest)
}

func (s *Shared) Fetch(quantity string, t float64, lon, lat, z []float64, out []float64) error {
	g, server, ok := s.remote()
	if !ok {
		return s.src.Fetch(quantity, t, lon, lat, z, out)
	}
	n := len(out)
	if len(lon) != n || len(lat) != n || len(z) != n {
		return fmt.Errorf("fetch %s: %d positions for %d values", quantity, len(lon), n)
	}
	if err := g.SendInts(server, []int32{ReqFetch, int32(n)}, TagRequest); err != nil {
		return err
	}
	if err := g.SendStrings(server, []string{quantity}, TagQuantity); err != nil {
		return err
	}
	if err := g.SendDoubles(server, []float64{t}, TagTime); err != nil {
		return err
	}
	pos := make([]float64, 0, 3*n)
	pos = append(append(append(pos, lon...), lat...), z...)
	if err := g.SendDoubles(server, pos, TagPositions); err != nil {
		return err
	}
	status := make([]int32, 1)
	if _, err := g.RecvInts(server, status, TagStatus); err != nil {
		return err
	}
	if status[0] != StatusOK {
		return fmt.Errorf("%w: %s at %g, status %d", ErrFetchFailed, quantity, t, status[0])
	}
	_, err := g.RecvDoubles(server, out, TagValues)
	return err
}

// FillValue returns the fill value of the source. On a tracer with a data
// server it is asked once and cached; NaN if the request failed.
func (s *Shared) FillValue() float64 {
	g, server, ok := s.remote()
	if !ok {
		return s.src.FillValue()
	}
	s.mu.Lock()
	if s.fill != nil {
		defer s.mu.Unlock()
		return *s.fill
	}
	s.mu.Unlock()
	fill := []float64{math.NaN()}
	err := g.SendInts(server, []int32{ReqFillValue, 0}, TagRequest)
	if err == nil {
		_, err = g.RecvDoubles(server, fill, TagFillValue)
	}
	if err != nil {
		log.Warnf("fill value from data server %d: %v", server, err)
		return math.NaN()
	}
	s.mu.Lock()
	s.fill = &fill[0]
	s.mu.Unlock()
	return fill[0]
}

func (s *Shared) CalendarTime(t float64) (string, error) {
	g, server, ok := s.remote()
	if !ok {
		return s.src.CalendarTime(t), nil
	}
	if err := g.SendInts(server, []int32{ReqCalTime, 1}, TagRequest); err != nil {
		return "", err
	}
	if err := g.SendDoubles(server, []float64{t}, TagTime); err != nil {
		return "", err
	}
	cal := make([]string, 1)
	if _, err := g.RecvStrings(server, cal, TagCalTime); err != nil {
		return "", err
	}
	return cal[0], nil
}

// Seed returns the random seed of the server, or the local one.
func (s *Shared) Seed() (int64, error) {
	g, server, ok := s.remote()
	if !ok {
		return s.seed, nil
	}
	if err := g.SendInts(server, []int32{ReqSeed, 0}, TagRequest); err != nil {
		return 0, err
	}
	parts := make([]int32, 2)
	if _, err := g.RecvInts(server, parts, TagRandomSeed); err != nil {
		return 0, err
	}
	return int64(parts[0])<<32 | int64(uint32(parts[1])), nil
}

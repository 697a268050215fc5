package field

import (
	"fmt"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/procgroup"
)

// Serve answers the requests of the sub-group until every other member has
// signaled done. It must run on the server rank.
func (s *Shared) Serve() error {
	s.mu.Lock()
	g, server := s.g, s.server
	if s.early == nil {
		s.early = make(map[int]int)
	}
	s.mu.Unlock()
	if g == nil || server < 0 || g.ID() != server {
		return ErrNotServer
	}
	clients := g.Size() - 1
	done := make(map[int]bool)
	// A client that already finished the next session may have sent its
	// done before this loop started; it was counted as early.
	for src, n := range s.early {
		done[src] = true
		if n == 1 {
			delete(s.early, src)
		} else {
			s.early[src] = n - 1
		}
	}
	log.Debugf("data server answering %d clients", clients)
	hdr := make([]int32, 2)
	for len(done) < clients {
		src, err := g.RecvInts(procgroup.AnySource, hdr, TagRequest)
		if err != nil {
			return err
		}
		code, n := hdr[0], int(hdr[1])
		switch code {
		case ReqDone:
			if done[src] {
				s.early[src]++
			}
			done[src] = true
		case ReqFetch:
			err = s.answerFetch(g, src, n)
		case ReqFillValue:
			err = g.SendDoubles(src, []float64{s.src.FillValue()}, TagFillValue)
		case ReqCalTime:
			t := make([]float64, 1)
			if _, err = g.RecvDoubles(src, t, TagTime); err == nil {
				err = g.SendStrings(src, []string{s.src.CalendarTime(t[0])}, TagCalTime)
			}
		case ReqSeed:
			err = g.SendInts(src, []int32{int32(s.seed >> 32), int32(s.seed)}, TagRandomSeed)
		default:
			log.Warnf("unknown request %d from %d", code, src)
			err = g.SendInts(src, []int32{StatusUnknownRequest}, TagStatus)
		}
		if err != nil {
			return fmt.Errorf("answer %s request of %d: %w", requestName(code), src, err)
		}
	}
	log.Debugf("data server done")
	return nil
}

func (s *Shared) answerFetch(g procgroup.Group, src, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: fetch of %d values", procgroup.ErrBadTransfer, n)
	}
	q := make([]string, 1)
	if _, err := g.RecvStrings(src, q, TagQuantity); err != nil {
		return err
	}
	t := make([]float64, 1)
	if _, err := g.RecvDoubles(src, t, TagTime); err != nil {
		return err
	}
	pos := make([]float64, 3*n)
	if _, err := g.RecvDoubles(src, pos, TagPositions); err != nil {
		return err
	}
	out := make([]float64, n)
	if err := s.src.Fetch(q[0], t[0], pos[:n], pos[n:2*n], pos[2*n:], out); err != nil {
		log.Warnf("fetch %s for %d: %v", q[0], src, err)
		return g.SendInts(src, []int32{StatusFailed}, TagStatus)
	}
	if err := g.SendInts(src, []int32{StatusOK}, TagStatus); err != nil {
		return err
	}
	return g.SendDoubles(src, out, TagValues)
}

package distrib

import (
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/gigatraj/parcel"
)

type iterState int

const (
	notStarted iterState = iota
	iterating
	finished
)

// Iterator walks the local parcels of a rank in ascending order. Starting
// it opens a session with the data server; on a server, starting it runs the
// server loop to completion and the iteration is empty. A tracer without
// parcels signals done as soon as its session opens instead of driving the
// loop: it has no requests to make, and the server ends the session once
// every tracer is done. The session ends when Next returns false or Stop is
// called.
type Iterator struct {
	c      *Core
	state  iterState
	i      int
	cur    *parcel.Parcel
	commit func()
	err    error
}

// Iter returns an iterator over the local parcels.
func (c *Core) Iter() *Iterator {
	return &Iterator{c: c, i: -1}
}

// Next moves to the next parcel, writing back the current one.
func (it *Iterator) Next() bool {
	switch it.state {
	case finished:
		return false
	case notStarted:
		it.state = iterating
		if !it.debut() {
			return false
		}
	}
	it.release()
	it.i++
	if it.i >= it.c.store.Len() {
		it.fin()
		return false
	}
	it.cur, it.commit = it.c.store.View(it.i)
	return true
}

func (it *Iterator) debut() bool {
	c := it.c
	if c.IsServer() {
		it.state = finished
		it.err = c.shared.Serve()
		return false
	}
	c.shared.StartSession()
	if c.store.Len() == 0 {
		it.fin()
		return false
	}
	return true
}

func (it *Iterator) fin() {
	it.state = finished
	if err := it.c.shared.SignalDone(); err != nil && it.err == nil {
		it.err = err
	}
}

func (it *Iterator) release() {
	if it.commit != nil {
		it.commit()
	}
	it.cur, it.commit = nil, nil
}

// Parcel is the current parcel; changes to it are kept.
func (it *Iterator) Parcel() *parcel.Parcel { return it.cur }

// Index is the global index of the current parcel.
func (it *Iterator) Index() int {
	return it.c.layout.Ranges[it.c.g.ID()].Begin + it.i
}

// Stop ends the iteration early, writing back the current parcel and
// signaling done. It is safe to call more than once.
func (it *Iterator) Stop() error {
	it.release()
	switch it.state {
	case notStarted:
		it.state = iterating
		if it.debut() {
			it.fin()
		}
	case iterating:
		it.fin()
	}
	return it.err
}

func (it *Iterator) Err() error { return it.err }

// Each calls f on every local parcel and always ends the session, so the
// data server of the sub-group is released even if f fails.
func (c *Core) Each(f func(i int, p *parcel.Parcel) error) (err error) {
	it := c.Iter()
	defer func() {
		if e := it.Stop(); err == nil {
			err = e
		}
	}()
	for it.Next() {
		if err := f(it.Index(), it.Parcel()); err != nil {
			return err
		}
	}
	return it.Err()
}

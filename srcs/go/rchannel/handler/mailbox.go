package handler

import (
	"errors"
	"sync"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
)

var ErrMailboxClosed = errors.New("mailbox closed")

type envelope struct {
	src plan.PeerID
	msg *connection.Message
}

// Mailbox holds received messages by name until they are taken.
// Messages with the same name from the same source are taken in arrival order.
type Mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queues map[string][]envelope
	closed bool
}

func NewMailbox() *Mailbox {
	m := &Mailbox{
		queues: make(map[string][]envelope),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Put never blocks.
func (m *Mailbox) Put(src plan.PeerID, name string, msg *connection.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.queues[name] = append(m.queues[name], envelope{src: src, msg: msg})
	m.cond.Broadcast()
}

// Get blocks until a message with name from src arrives.
func (m *Mailbox) Get(src plan.PeerID, name string) (*connection.Message, error) {
	e, err := m.take(name, func(e envelope) bool { return e.src == src })
	if err != nil {
		return nil, err
	}
	return e.msg, nil
}

// GetAny blocks until a message with name arrives from any source.
func (m *Mailbox) GetAny(name string) (plan.PeerID, *connection.Message, error) {
	e, err := m.take(name, func(envelope) bool { return true })
	if err != nil {
		return plan.PeerID{}, nil, err
	}
	return e.src, e.msg, nil
}

func (m *Mailbox) take(name string, match func(envelope) bool) (envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		q := m.queues[name]
		for i, e := range q {
			if match(e) {
				if len(q) == 1 {
					delete(m.queues, name)
				} else {
					m.queues[name] = append(q[:i:i], q[i+1:]...)
				}
				return e, nil
			}
		}
		if m.closed {
			return envelope{}, ErrMailboxClosed
		}
		m.cond.Wait()
	}
}

// Pending returns the number of messages not yet taken.
func (m *Mailbox) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, q := range m.queues {
		n += len(q)
	}
	return n
}

// Close wakes all waiters; later Gets fail once no matching message is left.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
}

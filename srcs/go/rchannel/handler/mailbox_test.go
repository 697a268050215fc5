package handler

import (
	"errors"
	"testing"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
)

func msg(s string) *connection.Message {
	return &connection.Message{Length: uint32(len(s)), Data: []byte(s)}
}

func Test_Mailbox_order(t *testing.T) {
	a := plan.PeerID{IPv4: plan.MustParseIPv4("127.0.0.1"), Port: 10000}
	b := plan.PeerID{IPv4: plan.MustParseIPv4("127.0.0.1"), Port: 10001}
	m := NewMailbox()
	m.Put(a, "x", msg("a1"))
	m.Put(b, "x", msg("b1"))
	m.Put(a, "x", msg("a2"))
	m.Put(a, "y", msg("a3"))

	got, err := m.Get(a, "x")
	if err != nil || string(got.Data) != "a1" {
		t.Errorf("want a1, got %v %v", got, err)
	}
	got, _ = m.Get(a, "x")
	if string(got.Data) != "a2" {
		t.Errorf("want a2, got %s", got.Data)
	}
	src, got, _ := m.GetAny("x")
	if src != b || string(got.Data) != "b1" {
		t.Errorf("want b1 from %s, got %s from %s", b, got.Data, src)
	}
	if n := m.Pending(); n != 1 {
		t.Errorf("want 1 pending, got %d", n)
	}
}

func Test_Mailbox_blocking(t *testing.T) {
	a := plan.PeerID{IPv4: plan.MustParseIPv4("127.0.0.1"), Port: 10000}
	m := NewMailbox()
	done := make(chan string)
	go func() {
		got, err := m.Get(a, "x")
		if err != nil {
			done <- err.Error()
			return
		}
		done <- string(got.Data)
	}()
	time.Sleep(10 * time.Millisecond)
	m.Put(a, "x", msg("late"))
	if s := <-done; s != "late" {
		t.Errorf("want late, got %s", s)
	}
}

func Test_Mailbox_close(t *testing.T) {
	m := NewMailbox()
	errc := make(chan error)
	go func() {
		_, _, err := m.GetAny("x")
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	m.Close()
	if err := <-errc; !errors.Is(err, ErrMailboxClosed) {
		t.Errorf("want ErrMailboxClosed, got %v", err)
	}
}

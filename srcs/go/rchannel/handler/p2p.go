package handler

import (
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/monitor"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/client"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
)

// PeerToPeerEndpoint delivers named messages between peers. Sends never wait
// for the receiver; received messages queue in a Mailbox.
type PeerToPeerEndpoint struct {
	self    plan.PeerID
	mailbox *Mailbox
	client  *client.Client
	monitor monitor.Monitor
}

func NewPeerToPeerEndpoint(client *client.Client) *PeerToPeerEndpoint {
	return &PeerToPeerEndpoint{
		self:    client.Self(),
		mailbox: NewMailbox(),
		client:  client,
		monitor: monitor.GetMonitor(),
	}
}

// Handle implements connection.Handler
func (e *PeerToPeerEndpoint) Handle(conn connection.Connection) (int, error) {
	return connection.Stream(conn, connection.Accept, e.handle)
}

func (e *PeerToPeerEndpoint) handle(name string, msg *connection.Message, conn connection.Connection) {
	e.monitor.Ingress(int64(msg.Length), plan.NetAddr(conn.Src()))
	e.mailbox.Put(conn.Src(), name, msg)
}

// Send delivers buf to a.Name on a.Peer(). Sending to self bypasses the network.
func (e *PeerToPeerEndpoint) Send(a plan.Addr, buf []byte) error {
	if a.Peer() == e.self {
		data := make([]byte, len(buf))
		copy(data, buf)
		e.mailbox.Put(e.self, a.Name, &connection.Message{Length: uint32(len(data)), Data: data})
		return nil
	}
	return e.client.Send(a, buf, connection.ConnPeerToPeer, connection.NoFlag)
}

// Recv waits for the next message named name from src.
func (e *PeerToPeerEndpoint) Recv(src plan.PeerID, name string) (*connection.Message, error) {
	return e.mailbox.Get(src, name)
}

// RecvAny waits for the next message named name from any peer.
func (e *PeerToPeerEndpoint) RecvAny(name string) (plan.PeerID, *connection.Message, error) {
	return e.mailbox.GetAny(name)
}

func (e *PeerToPeerEndpoint) Pending() int {
	return e.mailbox.Pending()
}

func (e *PeerToPeerEndpoint) Close() {
	e.mailbox.Close()
}

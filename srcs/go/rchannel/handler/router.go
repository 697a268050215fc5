package handler

import (
	"context"
	"errors"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/client"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
)

// Router dispatches accepted connections by type.
type Router struct {
	self        plan.PeerID
	P2P         *PeerToPeerEndpoint
	pingHandler *PingHandler
	client      *client.Client
}

func NewRouter(self plan.PeerID, token uint32, opts connection.Options) *Router {
	client := client.New(self, token, opts)
	return &Router{
		self:        self,
		P2P:         NewPeerToPeerEndpoint(client),
		pingHandler: &PingHandler{},
		client:      client,
	}
}

func (r *Router) Self() plan.PeerID {
	return r.self
}

var ErrWaitPeerFailed = errors.New("wait peer failed")

func (r *Router) Wait(ctx context.Context, target plan.PeerID) (int, error) {
	n, ok := r.client.Wait(ctx, target)
	if !ok {
		return n, ErrWaitPeerFailed
	}
	return n, nil
}

// Handle implements Handle method of connection.Handler interface
func (r *Router) Handle(conn connection.Connection) (int, error) {
	switch t := conn.Type(); t {
	case connection.ConnPeerToPeer:
		return r.P2P.Handle(conn)
	case connection.ConnPing:
		return r.pingHandler.Handle(conn)
	default:
		return 0, connection.ErrInvalidConnectionType
	}
}

// Close stops delivery and closes outgoing connections.
func (r *Router) Close() error {
	r.P2P.Close()
	return r.client.Close()
}

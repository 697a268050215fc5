package client

import (
	"context"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/monitor"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
)

type Client struct {
	self     plan.PeerID
	connPool *connectionPool
	monitor  monitor.Monitor
}

func New(self plan.PeerID, token uint32, opts connection.Options) *Client {
	return &Client{
		self:     self,
		connPool: newConnectionPool(token, opts),
		monitor:  monitor.GetMonitor(),
	}
}

func (c *Client) Self() plan.PeerID {
	return c.self
}

func (c *Client) Ping(target plan.PeerID) (time.Duration, error) {
	t0 := time.Now()
	conn, err := connection.Open(target, c.self, connection.ConnPing, c.connPool.token)
	if err != nil {
		return time.Since(t0), err
	}
	defer conn.Close()
	var empty connection.Message
	if err := conn.Send("ping", empty, connection.NoFlag); err != nil {
		return time.Since(t0), err
	}
	if err := conn.Read("ping", empty); err != nil {
		return time.Since(t0), err
	}
	return time.Since(t0), nil
}

// Wait waits a peer until it's accessible
func (c *Client) Wait(ctx context.Context, target plan.PeerID) (int, bool) {
	const period = 200 * time.Millisecond
	var last time.Time
	ping := func() bool {
		if d := time.Since(last); d < period {
			time.Sleep(period - d)
		}
		_, err := c.Ping(target)
		last = time.Now()
		return err == nil
	}
	return utils.Poll(ctx, ping)
}

// Send sends data in buf to given Addr
func (c *Client) Send(a plan.Addr, buf []byte, t connection.ConnType, flags uint32) error {
	msg := connection.Message{
		Length: uint32(len(buf)),
		Data:   buf,
	}
	conn := c.connPool.get(a.Peer(), c.self, t)
	if err := conn.Send(a.Name, msg, flags); err != nil {
		c.monitor.ConnError(a.NetAddr())
		return err
	}
	c.monitor.Egress(int64(msg.Length), a.NetAddr())
	return nil
}

// Close closes all pooled connections.
func (c *Client) Close() error {
	return c.connPool.close()
}

package connection

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
)

// Connection is a simplex logical connection from one peer to another
type Connection interface {
	io.Closer

	Conn() net.Conn
	Type() ConnType
	Src() plan.PeerID
	Dest() plan.PeerID
	Send(name string, m Message, flags uint32) error
	Read(name string, m Message) error
}

// Options controls how an outgoing connection is established.
type Options struct {
	RetryCount  int
	RetryPeriod time.Duration
}

var DefaultOptions = Options{
	RetryCount:  500,
	RetryPeriod: 200 * time.Millisecond,
}

// UpgradeFrom performs the server side operations to upgrade a TCP connection to a Connection
func UpgradeFrom(conn net.Conn, self plan.PeerID, token uint32) (Connection, error) {
	var ch connectionHeader
	if err := ch.ReadFrom(conn); err != nil {
		return nil, err
	}
	if t := ConnType(ch.Type); t != ConnPing && t != ConnPeerToPeer {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConnectionType, ch.Type)
	}
	ack := connectionACK{
		Token: token,
	}
	if err := ack.WriteTo(conn); err != nil {
		return nil, err
	}
	return &tcpConnection{
		src:      plan.PeerID{IPv4: ch.SrcIPv4, Port: ch.SrcPort},
		dest:     self,
		connType: ConnType(ch.Type),
		conn:     conn,
	}, nil
}

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrCantEstablishConnection = errors.New("can't establish connection")
)

// Open dials remote once, without retry.
func Open(remote, local plan.PeerID, t ConnType, token uint32) (*tcpConnection, error) {
	conn := New(remote, local, t, token, Options{})
	if err := conn.initOnce(); err != nil {
		return nil, err
	}
	return conn, nil
}

// New creates a lazily established connection to remote.
func New(remote, local plan.PeerID, t ConnType, token uint32, opts Options) *tcpConnection {
	init := func() (net.Conn, error) {
		conn, err := net.Dial("tcp", remote.String())
		if err != nil {
			return nil, err
		}
		h := connectionHeader{
			Type:    uint16(t),
			SrcIPv4: local.IPv4,
			SrcPort: local.Port,
		}
		if err := h.WriteTo(conn); err != nil {
			conn.Close()
			return nil, err
		}
		var ack connectionACK
		if err := ack.ReadFrom(conn); err != nil {
			conn.Close()
			return nil, err
		}
		if t == ConnPeerToPeer && ack.Token != token {
			conn.Close()
			return nil, fmt.Errorf("%w: %08x from %s, expect %08x", ErrInvalidToken, ack.Token, remote, token)
		}
		return conn, nil
	}
	var initRetry int
	if t == ConnPeerToPeer {
		initRetry = opts.RetryCount
	}
	return &tcpConnection{
		init:        init,
		src:         local,
		dest:        remote,
		initRetry:   initRetry,
		retryPeriod: opts.RetryPeriod,
		connType:    t,
	}
}

type tcpConnection struct {
	sync.Mutex
	src, dest   plan.PeerID
	init        func() (net.Conn, error)
	conn        net.Conn
	initRetry   int
	retryPeriod time.Duration
	connType    ConnType
	closed      bool
}

func (c *tcpConnection) Conn() net.Conn {
	return c.conn
}

func (c *tcpConnection) Type() ConnType {
	return c.connType
}

func (c *tcpConnection) Src() plan.PeerID {
	return c.src
}

func (c *tcpConnection) Dest() plan.PeerID {
	return c.dest
}

func (c *tcpConnection) initOnce() error {
	c.Lock()
	defer c.Unlock()
	if c.conn != nil {
		return nil
	}
	if c.closed {
		return net.ErrClosed
	}
	t0 := time.Now()
	var err error
	for i := 0; i <= c.initRetry; i++ {
		if c.conn, err = c.init(); err == nil {
			log.Debugf("%s connection to #<%s> established after %d trials, took %s", c.connType, c.dest, i+1, time.Since(t0))
			return nil
		}
		if errors.Is(err, ErrInvalidToken) {
			return err
		}
		log.Debugf("failed to establish connection to #<%s> for %d times: %v", c.dest, i+1, err)
		if i < c.initRetry {
			time.Sleep(c.retryPeriod)
		}
	}
	return fmt.Errorf("%w to #<%s>: %v", ErrCantEstablishConnection, c.dest, err)
}

func (c *tcpConnection) Send(name string, m Message, flags uint32) error {
	if err := c.initOnce(); err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	bs := []byte(name)
	mh := MessageHeader{
		NameLength: uint32(len(bs)),
		Name:       bs,
		Flags:      flags,
	}
	if err := mh.WriteTo(c.conn); err != nil {
		return err
	}
	return m.WriteTo(c.conn)
}

func (c *tcpConnection) Read(name string, m Message) error {
	if err := c.initOnce(); err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	var mh MessageHeader
	if err := mh.Expect(c.conn, name); err != nil {
		return err
	}
	return m.ReadInto(c.conn)
}

func (c *tcpConnection) Close() error {
	c.Lock()
	defer c.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

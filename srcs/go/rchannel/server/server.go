package server

import (
	"errors"
	"net"
	"sync"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
)

// Server receives messages from remote endpoints
type Server interface {
	Start() error
	Close()
}

type server struct {
	listener net.Listener
	self     plan.PeerID
	handler  connection.Handler
	token    uint32

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// New creates a new Server listening on the TCP port of self.
func New(self plan.PeerID, handler connection.Handler, token uint32) *server {
	return &server{
		self:    self,
		handler: handler,
		token:   token,
		conns:   make(map[net.Conn]struct{}),
	}
}

func (s *server) Listen() error {
	listenAddr := s.self.ListenAddr()
	log.Debugf("listening: %s", listenAddr)
	var err error
	s.listener, err = net.Listen("tcp", listenAddr.String())
	return err
}

func (s *server) accept() (connection.Connection, error) {
	tcpConn, err := s.listener.Accept()
	if err != nil {
		return nil, err
	}
	conn, err := connection.UpgradeFrom(tcpConn, s.self, s.token)
	if err != nil {
		tcpConn.Close()
		return nil, err
	}
	return conn, nil
}

func (s *server) Serve() {
	for {
		conn, err := s.accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			log.Infof("Accept failed: %v", err)
			continue
		}
		if !s.register(conn.Conn()) {
			conn.Close()
			continue
		}
		go s.handle(conn)
	}
}

// Start listens and serves in the background.
func (s *server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	go s.Serve()
	return nil
}

// Close closes the listener and every accepted connection, then waits for
// the handlers to return.
func (s *server) Close() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	log.Debugf("Server Closed")
}

func (s *server) register(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *server) unregister(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *server) handle(conn connection.Connection) {
	defer s.wg.Done()
	defer s.unregister(conn.Conn())
	defer conn.Close()
	if n, err := s.handler.Handle(conn); err != nil {
		log.Warnf("handle conn err: %v after handled %d messages", err, n)
	}
}

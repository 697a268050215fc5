package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/connection"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/rchannel/server"
	"github.com/stretchr/testify/require"
)

func freePeer(t *testing.T) plan.PeerID {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return plan.PeerID{
		IPv4: plan.MustParseIPv4("127.0.0.1"),
		Port: uint16(l.Addr().(*net.TCPAddr).Port),
	}
}

func startRouter(t *testing.T, self plan.PeerID, token uint32) *Router {
	opts := connection.Options{RetryCount: 10, RetryPeriod: 20 * time.Millisecond}
	r := NewRouter(self, token, opts)
	srv := server.New(self, r, token)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		r.Close()
		srv.Close()
	})
	return r
}

func Test_Router_p2p(t *testing.T) {
	const token = 0x5eed
	pa, pb := freePeer(t), freePeer(t)
	ra := startRouter(t, pa, token)
	rb := startRouter(t, pb, token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := ra.Wait(ctx, pb)
	require.NoError(t, err)

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, ra.P2P.Send(pb.WithName("greeting"), []byte(s)))
	}
	for _, s := range []string{"one", "two", "three"} {
		m, err := rb.P2P.Recv(pa, "greeting")
		require.NoError(t, err)
		require.Equal(t, s, string(m.Data))
	}

	require.NoError(t, rb.P2P.Send(pb.WithName("self"), []byte("loop")))
	src, m, err := rb.P2P.RecvAny("self")
	require.NoError(t, err)
	require.Equal(t, pb, src)
	require.Equal(t, "loop", string(m.Data))
}

func Test_Router_tokenMismatch(t *testing.T) {
	pa, pb := freePeer(t), freePeer(t)
	ra := startRouter(t, pa, 1)
	startRouter(t, pb, 2)

	err := ra.P2P.Send(pb.WithName("x"), []byte("stale"))
	require.ErrorIs(t, err, connection.ErrInvalidToken)
}

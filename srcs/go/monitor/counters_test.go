package monitor

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/hashicorp/go-metrics"
	"github.com/stretchr/testify/require"
)

func Test_accumulatorGroup(t *testing.T) {
	var b bytes.Buffer
	a := plan.NetAddr{IPv4: plan.MustParseIPv4("127.0.0.1"), Port: 10000}
	m := New(nil)
	m.Egress(3, a)
	m.Egress(4, a)
	m.Ingress(2, a)
	m.WriteTo(&b)
	const want = `egress_total_bytes{peer="127.0.0.1:10000"} 7
ingress_total_bytes{peer="127.0.0.1:10000"} 2
`
	if got := b.String(); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func Test_inmemSink(t *testing.T) {
	inm := metrics.NewInmemSink(time.Minute, time.Minute)
	m := New(inm)
	a := plan.NetAddr{IPv4: plan.MustParseIPv4("127.0.0.1"), Port: 10001}
	m.Egress(100, a)
	m.Egress(28, a)

	data := inm.Data()
	require.NotEmpty(t, data)
	var found bool
	for name, v := range data[0].Counters {
		if strings.HasPrefix(name, "gigatraj.rchannel.egress.bytes") {
			found = true
			require.Equal(t, 2, v.Count)
			require.InDelta(t, 128, v.Sum, 1e-9)
		}
	}
	require.True(t, found, "egress counter not reported")
}

func Test_noopByDefault(t *testing.T) {
	var b bytes.Buffer
	GetMonitor().WriteTo(&b)
	require.Empty(t, b.String())
}

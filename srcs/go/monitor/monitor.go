package monitor

import (
	"io"
	"sync"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/hashicorp/go-metrics"
)

var (
	MetricEgressBytes    = []string{"gigatraj", "rchannel", "egress", "bytes"}
	MetricIngressBytes   = []string{"gigatraj", "rchannel", "ingress", "bytes"}
	MetricMessages       = []string{"gigatraj", "rchannel", "messages"}
	MetricConnErrorCount = []string{"gigatraj", "rchannel", "connection", "error", "count"}
)

const LabelPeer = "peer"

// Monitor counts traffic per remote peer.
type Monitor interface {
	Egress(n int64, a plan.NetAddr)
	Ingress(n int64, a plan.NetAddr)
	ConnError(a plan.NetAddr)

	WriteTo(w io.Writer)
}

var (
	mu             sync.RWMutex
	defaultMonitor Monitor = noopMonitor{}
)

// Setup installs the process-wide monitor. When enabled, counters go to an
// in-memory sink that is dumped to stderr on SIGUSR1.
func Setup(enabled bool) Monitor {
	if !enabled {
		return set(noopMonitor{})
	}
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)
	log.Debugf("monitoring enabled, send SIGUSR1 to dump counters")
	return set(New(inm))
}

func set(m Monitor) Monitor {
	mu.Lock()
	defer mu.Unlock()
	defaultMonitor = m
	return m
}

func GetMonitor() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return defaultMonitor
}

type noopMonitor struct{}

func (noopMonitor) Egress(n int64, a plan.NetAddr) {}

func (noopMonitor) Ingress(n int64, a plan.NetAddr) {}

func (noopMonitor) ConnError(a plan.NetAddr) {}

func (noopMonitor) WriteTo(w io.Writer) {}

type netMonitor struct {
	sink    metrics.MetricSink
	egress  *accumulatorGroup
	ingress *accumulatorGroup
}

// New returns a Monitor that reports to sink and keeps running totals.
func New(sink metrics.MetricSink) Monitor {
	if sink == nil {
		sink = &metrics.BlackholeSink{}
	}
	return &netMonitor{
		sink:    sink,
		egress:  newAccumulatorGroup("egress"),
		ingress: newAccumulatorGroup("ingress"),
	}
}

func peerLabels(a plan.NetAddr) []metrics.Label {
	return []metrics.Label{{Name: LabelPeer, Value: a.String()}}
}

func (m *netMonitor) Egress(n int64, a plan.NetAddr) {
	m.egress.getOrCreate(a).Add(n)
	labels := peerLabels(a)
	m.sink.IncrCounterWithLabels(MetricEgressBytes, float32(n), labels)
	m.sink.IncrCounterWithLabels(MetricMessages, 1, labels)
}

func (m *netMonitor) Ingress(n int64, a plan.NetAddr) {
	m.ingress.getOrCreate(a).Add(n)
	m.sink.IncrCounterWithLabels(MetricIngressBytes, float32(n), peerLabels(a))
}

func (m *netMonitor) ConnError(a plan.NetAddr) {
	m.sink.IncrCounterWithLabels(MetricConnErrorCount, 1, peerLabels(a))
}

func (m *netMonitor) WriteTo(w io.Writer) {
	m.egress.WriteTo(w)
	m.ingress.WriteTo(w)
}

package monitor

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
)

type accumulator struct {
	name  string
	value int64
}

func newAccumulator(name string) *accumulator {
	return &accumulator{
		name: name,
	}
}

func (a *accumulator) Add(n int64) int64 {
	return atomic.AddInt64(&a.value, n)
}

func (a *accumulator) Get() int64 {
	return atomic.LoadInt64(&a.value)
}

func (a *accumulator) WriteTo(w io.Writer) {
	val := atomic.LoadInt64(&a.value)
	fmt.Fprintf(w, "%s %d\n", a.name, val)
}

type accumulatorGroup struct {
	sync.Mutex

	prefix       string
	accumulators map[string]*accumulator
}

func newAccumulatorGroup(prefix string) *accumulatorGroup {
	return &accumulatorGroup{
		prefix:       prefix,
		accumulators: make(map[string]*accumulator),
	}
}

func key(a plan.NetAddr) string {
	return fmt.Sprintf(`{peer="%s"}`, a)
}

func (g *accumulatorGroup) getOrCreate(a plan.NetAddr) *accumulator {
	labels := key(a)
	g.Lock()
	defer g.Unlock()
	acc, ok := g.accumulators[labels]
	if !ok {
		acc = newAccumulator(g.prefix + "_total_bytes" + labels)
		g.accumulators[labels] = acc
	}
	return acc
}

func (g *accumulatorGroup) total() int64 {
	g.Lock()
	defer g.Unlock()
	var n int64
	for _, acc := range g.accumulators {
		n += acc.Get()
	}
	return n
}

func (g *accumulatorGroup) WriteTo(w io.Writer) {
	g.Lock()
	defer g.Unlock()
	var keys []string
	for k := range g.accumulators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		g.accumulators[k].WriteTo(w)
	}
}

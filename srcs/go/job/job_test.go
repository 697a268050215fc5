package job

import (
	"testing"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/config"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateProcs(t *testing.T) {
	hl, err := plan.ParseHostList("127.0.0.1:2,127.0.0.2:1:example.org")
	require.NoError(t, err)
	pl, err := hl.GenPeerList(3, plan.DefaultPortRange)
	require.NoError(t, err)
	id, err := NewID()
	require.NoError(t, err)
	j := Job{ID: id, HostList: hl, Prog: "trace", Args: []string{"-n", "10"}}

	ps := j.CreateAllProcs(pl)
	require.Len(t, ps, 3)
	for i, p := range ps {
		assert.Equal(t, pl[i].String(), p.Envs[config.SelfSpecEnvKey])
		assert.Equal(t, pl.String(), p.Envs[config.PeerListEnvKey])
		assert.Equal(t, id, p.Envs[config.JobIDEnvKey])
	}
	assert.Equal(t, "example.org", ps[2].PubAddr)

	local := j.CreateProcs(pl, plan.MustParseIPv4("127.0.0.1"))
	assert.Len(t, local, 2)

	other, err := NewID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

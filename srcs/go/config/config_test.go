package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/monitor"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/stretchr/testify/require"
)

func Test_FromMap(t *testing.T) {
	cfg, err := FromMap(map[string]interface{}{
		SelfSpecEnvKey:         "127.0.0.1:10001",
		PeerListEnvKey:         "127.0.0.1:10000,127.0.0.1:10001",
		JobIDEnvKey:            "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		LogLevelEnvKey:         "debug",
		EnableMonitoringEnvKey: "true",
		ConnRetryCountEnvKey:   "3",
		ConnRetryPeriodEnvKey:  "50ms",
		BlockSizeEnvKey:        "64",
	})
	require.NoError(t, err)
	require.False(t, cfg.Single)
	require.Len(t, cfg.Peers, 2)
	require.Equal(t, cfg.Peers[1], cfg.Self)
	require.True(t, cfg.EnableMonitoring)
	require.Equal(t, 3, cfg.ConnRetryCount)
	require.Equal(t, 50*time.Millisecond, cfg.ConnRetryPeriod)
	require.Equal(t, 2*time.Minute, cfg.WaitPeerTimeout)
	require.Equal(t, 64, cfg.BlockSize)
	require.NotZero(t, cfg.Token())
}

func Test_FromMapSingle(t *testing.T) {
	cfg, err := FromMap(nil)
	require.NoError(t, err)
	require.True(t, cfg.Single)
	require.Equal(t, 1024, cfg.BlockSize)
}

func Test_FromMapInvalid(t *testing.T) {
	for _, envs := range []map[string]interface{}{
		{LogLevelEnvKey: "loud"},
		{BlockSizeEnvKey: "0"},
		{SelfSpecEnvKey: "127.0.0.1:10002", PeerListEnvKey: "127.0.0.1:10000"},
		{SelfSpecEnvKey: "localhost"},
		{ConnRetryPeriodEnvKey: "soon"},
	} {
		_, err := FromMap(envs)
		require.Error(t, err, "%v", envs)
	}
}

func Test_Apply(t *testing.T) {
	t.Cleanup(func() { Default().Apply() })
	cfg, err := FromMap(map[string]interface{}{
		EnableMonitoringEnvKey: "true",
		BlockSizeEnvKey:        "64",
	})
	require.NoError(t, err)
	cfg.Apply()
	require.Same(t, cfg, Current())
	require.Equal(t, 64, Current().BlockSize)

	a := plan.NetAddr{IPv4: plan.MustParseIPv4("127.0.0.1"), Port: 10000}
	monitor.GetMonitor().Egress(5, a)
	var b bytes.Buffer
	monitor.GetMonitor().WriteTo(&b)
	require.Contains(t, b.String(), `egress_total_bytes{peer="127.0.0.1:10000"} 5`)

	Default().Apply()
	b.Reset()
	monitor.GetMonitor().WriteTo(&b)
	require.Empty(t, b.String())
}

// Package config holds the process-wide settings of a gigatraj rank. They are
// read once from GIGATRAJ_* environment variables, which the launcher sets for
// every rank it starts.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/log"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/monitor"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/mitchellh/mapstructure"
	"github.com/spaolacci/murmur3"
)

// Internal environment variables set by gigatraj-run, users should not set them.
const (
	SelfSpecEnvKey = `GIGATRAJ_SELF_SPEC`
	PeerListEnvKey = `GIGATRAJ_INIT_PEERS`
	JobIDEnvKey    = `GIGATRAJ_JOB_ID`
)

const (
	LogLevelEnvKey         = `GIGATRAJ_CONFIG_LOG_LEVEL`
	EnableMonitoringEnvKey = `GIGATRAJ_CONFIG_ENABLE_MONITORING`
	ConnRetryCountEnvKey   = `GIGATRAJ_CONFIG_CONN_RETRY_COUNT`
	ConnRetryPeriodEnvKey  = `GIGATRAJ_CONFIG_CONN_RETRY_PERIOD`
	WaitPeerTimeoutEnvKey  = `GIGATRAJ_CONFIG_WAIT_PEER_TIMEOUT`
	BlockSizeEnvKey        = `GIGATRAJ_CONFIG_BLOCK_SIZE`
)

const envPrefix = `GIGATRAJ_`

var ConfigEnvKeys = []string{
	LogLevelEnvKey,
	EnableMonitoringEnvKey,
	ConnRetryCountEnvKey,
	ConnRetryPeriodEnvKey,
	WaitPeerTimeoutEnvKey,
	BlockSizeEnvKey,
}

type Config struct {
	SelfSpec string `mapstructure:"GIGATRAJ_SELF_SPEC"`
	PeerList string `mapstructure:"GIGATRAJ_INIT_PEERS"`
	JobID    string `mapstructure:"GIGATRAJ_JOB_ID"`

	LogLevel         string        `mapstructure:"GIGATRAJ_CONFIG_LOG_LEVEL"`
	EnableMonitoring bool          `mapstructure:"GIGATRAJ_CONFIG_ENABLE_MONITORING"`
	ConnRetryCount   int           `mapstructure:"GIGATRAJ_CONFIG_CONN_RETRY_COUNT"`
	ConnRetryPeriod  time.Duration `mapstructure:"GIGATRAJ_CONFIG_CONN_RETRY_PERIOD"`
	WaitPeerTimeout  time.Duration `mapstructure:"GIGATRAJ_CONFIG_WAIT_PEER_TIMEOUT"`
	BlockSize        int           `mapstructure:"GIGATRAJ_CONFIG_BLOCK_SIZE"`

	// Resolved from SelfSpec and PeerList.
	Self   plan.PeerID   `mapstructure:"-"`
	Peers  plan.PeerList `mapstructure:"-"`
	Single bool          `mapstructure:"-"`
}

// Default returns the configuration of a single process.
func Default() *Config {
	return &Config{
		LogLevel:        `INFO`,
		ConnRetryCount:  500,
		ConnRetryPeriod: 200 * time.Millisecond,
		WaitPeerTimeout: 2 * time.Minute,
		BlockSize:       1024,
		Single:          true,
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	envs := make(map[string]interface{})
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		if k, v, ok := strings.Cut(kv, "="); ok {
			envs[k] = v
		}
	}
	return FromMap(envs)
}

// FromMap decodes the configuration from GIGATRAJ_* keys; values may be
// strings as found in the environment. Missing keys keep their defaults.
func FromMap(envs map[string]interface{}) (*Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(envs); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", BlockSizeEnvKey, c.BlockSize)
	}
	if len(c.SelfSpec) == 0 {
		c.Single = true
		return nil
	}
	self, err := plan.ParsePeerID(c.SelfSpec)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", SelfSpecEnvKey, err)
	}
	peers, err := plan.ParsePeerList(c.PeerList)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", PeerListEnvKey, err)
	}
	if !peers.Contains(*self) {
		return fmt.Errorf("%s %s not in %s", SelfSpecEnvKey, self, peers)
	}
	c.Self = *self
	c.Peers = peers
	c.Single = false
	return nil
}

// Token is the connection token shared by all ranks of the same job.
func (c *Config) Token() uint32 {
	return murmur3.Sum32([]byte(c.JobID))
}

var (
	mu      sync.RWMutex
	current = Default()
)

// Apply installs the process-wide parts of the configuration: the log level
// and the monitor. It must run before the transport starts, which captures
// the monitor. c becomes the Current configuration.
func (c *Config) Apply() {
	if l, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(l)
	}
	monitor.Setup(c.EnableMonitoring)
	mu.Lock()
	defer mu.Unlock()
	current = c
}

// Current returns the configuration last applied, or the default one.
func Current() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

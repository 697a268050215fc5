// Package job turns a peer list into the processes of a tracing job.
package job

import (
	"fmt"
	"os"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/config"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/proc"
	uuid "github.com/nu7hatch/gouuid"
)

type Job struct {
	ID        string
	HostList  plan.HostList
	PortRange plan.PortRange
	Prog      string
	Args      []string
	LogDir    string
}

// NewID returns a fresh job id. Peers of different jobs refuse each other.
func NewID() (string, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (j Job) NewProc(peer plan.PeerID, pl plan.PeerList) proc.Proc {
	envs := proc.Envs{
		config.SelfSpecEnvKey: peer.String(),
		config.PeerListEnvKey: pl.String(),
		config.JobIDEnvKey:    j.ID,
	}
	allEnvs := proc.Merge(getConfigEnvs(), envs)
	var pubAddr string
	if h, ok := j.HostList.Lookup(peer.IPv4); ok {
		pubAddr = h.PublicAddr
	}
	return proc.Proc{
		Name:    fmt.Sprintf("%s.%d", plan.FormatIPv4(peer.IPv4), peer.Port),
		Prog:    j.Prog,
		Args:    j.Args,
		Envs:    allEnvs,
		IPv4:    peer.IPv4,
		PubAddr: pubAddr,
		LogDir:  j.LogDir,
	}
}

func (j Job) CreateAllProcs(pl plan.PeerList) []proc.Proc {
	var ps []proc.Proc
	for _, self := range pl {
		ps = append(ps, j.NewProc(self, pl))
	}
	return ps
}

func (j Job) CreateProcs(pl plan.PeerList, host uint32) []proc.Proc {
	var ps []proc.Proc
	for _, self := range pl.On(host) {
		ps = append(ps, j.NewProc(self, pl))
	}
	return ps
}

func getConfigEnvs() proc.Envs {
	envs := make(proc.Envs)
	for _, k := range config.ConfigEnvKeys {
		if val := os.Getenv(k); len(val) > 0 {
			envs[k] = val
		}
	}
	return envs
}

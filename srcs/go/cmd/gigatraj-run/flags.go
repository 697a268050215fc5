package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan/hostfile"
)

type FlagSet struct {
	ClusterSize int
	hostList    string
	hostFile    string
	HostList    plan.HostList
	PortRange   plan.PortRange

	User       string
	Self       string
	Timeout    time.Duration
	VerboseLog bool
	LogDir     string

	Prog string
	Args []string
}

func (f *FlagSet) Register(flag *flag.FlagSet) {
	f.PortRange = plan.DefaultPortRange
	flag.IntVar(&f.ClusterSize, "np", 1, "number of ranks")
	flag.StringVar(&f.hostList, "H", plan.DefaultHostList.String(), "comma separated list of <internal IP>:<nslots>[:<public addr>]")
	flag.StringVar(&f.hostFile, "hostfile", "", "path to a hostfile, overrides -H")
	flag.Var(&f.PortRange, "port-range", "port range for the ranks")
	flag.StringVar(&f.User, "u", "", "user name for ssh")
	flag.StringVar(&f.Self, "self", "127.0.0.1", "internal IPv4 of this host; ranks on other hosts start over ssh")
	flag.DurationVar(&f.Timeout, "timeout", 0, "timeout")
	flag.BoolVar(&f.VerboseLog, "v", true, "show rank log")
	flag.StringVar(&f.LogDir, "logdir", ".", "directory of the rank logs")
}

var errMissingProgramName = errors.New("missing program name")

func (f *FlagSet) Parse(args []string) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	f.Register(flags)
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if len(f.hostFile) > 0 {
		hl, err := hostfile.ParseFile(f.hostFile)
		if err != nil {
			return fmt.Errorf("failed to parse -hostfile: %v", err)
		}
		f.HostList = hl
	} else {
		hl, err := plan.ParseHostList(f.hostList)
		if err != nil {
			return fmt.Errorf("failed to parse -H: %v", err)
		}
		f.HostList = hl
	}
	if flags.NArg() < 1 {
		return errMissingProgramName
	}
	f.Prog = flags.Arg(0)
	f.Args = flags.Args()[1:]
	return nil
}

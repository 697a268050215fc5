// Package hostfile reads the hosts of a job from an MPI style hostfile:
//
//	# comment
//	10.0.0.1 slots=4
//	10.0.0.2 slots=4 public_addr=node2.example.org
package hostfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/plan"
)

var errInvalidHostfile = errors.New("invalid hostfile")

func ParseFile(filename string) (plan.HostList, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(string(bs))
}

func Parse(text string) (plan.HostList, error) {
	var hl plan.HostList
	for i, line := range strings.Split(text, "\n") {
		line, _, _ = strings.Cut(line, "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		h, err := parseLine(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		hl = append(hl, *h)
	}
	if len(hl) == 0 {
		return nil, fmt.Errorf("%w: no hosts", errInvalidHostfile)
	}
	return hl, nil
}

func parseLine(fields []string) (*plan.HostSpec, error) {
	ipv4, err := plan.ParseIPv4(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%v: %q", err, fields[0])
	}
	h := &plan.HostSpec{
		IPv4:       ipv4,
		Slots:      1,
		PublicAddr: plan.FormatIPv4(ipv4),
	}
	for _, kv := range fields[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errInvalidHostfile, kv)
		}
		switch k {
		case `slots`:
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: slots=%q", errInvalidHostfile, v)
			}
			h.Slots = n
		case `public_addr`:
			h.PublicAddr = v
		default:
			return nil, fmt.Errorf("%w: unknown key %q", errInvalidHostfile, k)
		}
	}
	return h, nil
}

package procgroup

import (
	"encoding/binary"

	"github.com/GEOS-ESM/gigatraj-sub006/srcs/go/utils"
	"github.com/spaolacci/murmur3"
)

// worldID derives the id of the world group from the job token.
func worldID(token uint32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], token)
	return murmur3.Sum32(b[:])
}

// childID derives the id of the ordinal-th child carved from the group
// parent with the given parent ranks. Every member of the parent computes
// the same value.
func childID(parent, ordinal uint32, ranks []int) uint32 {
	h := murmur3.New32WithSeed(parent)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], ordinal)
	h.Write(b[:])
	for _, r := range ranks {
		binary.LittleEndian.PutUint32(b[:], uint32(r))
		h.Write(b[:])
	}
	return h.Sum32()
}

// closeAll closes groups in reverse creation order.
func closeAll(gs []Group) error {
	var errs []error
	for i := len(gs) - 1; i >= 0; i-- {
		errs = append(errs, gs[i].Close())
	}
	return utils.MergeErrors(errs, "close subgroups")
}

// dropChild removes c from gs, keeping the order of the others.
func dropChild(gs []Group, c Group) []Group {
	for i, x := range gs {
		if x == c {
			return append(gs[:i], gs[i+1:]...)
		}
	}
	return gs
}

func mergeErrors(errs []error) error {
	return utils.MergeErrors(errs, "close group")
}

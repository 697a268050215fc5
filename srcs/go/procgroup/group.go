// Package procgroup organizes the ranks of a job into groups. A group gives
// each member a rank, carries a role per member, exchanges typed tagged
// messages between members and carves child groups. Groups form a tree: a
// group owns the groups carved from it and closes them with itself.
//
// All operations that change membership or synchronize are collective: every
// member of the group must call them in the same order.
package procgroup

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadGroupSize   = errors.New("bad group size")
	ErrBadProcessor   = errors.New("bad processor")
	ErrBadParallelism = errors.New("parallel transport failure")
	ErrBadTransfer    = errors.New("bad transfer")
)

// AnySource as the rank of a receive accepts a message from any member.
const AnySource = -1

// AllRanks as the rank of SetRole applies the role to every member.
const AllRanks = -1

type Role int

const (
	All Role = iota
	Tracer
	DataReader
	Coordinator
	Unknown
)

func (r Role) String() string {
	switch r {
	case All:
		return "All"
	case Tracer:
		return "Tracer"
	case DataReader:
		return "DataReader"
	case Coordinator:
		return "Coordinator"
	default:
		return "Unknown"
	}
}

// Flags modify how child groups are carved.
type Flags uint

const (
	// Strict fails a request that cannot be satisfied instead of clamping it.
	Strict Flags = 1 << iota
	// KeepRoot makes the parent's root the root of every child.
	KeepRoot
)

func (f Flags) Has(g Flags) bool { return f&g == g }

// Group is a set of cooperating ranks.
type Group interface {
	// Size is the number of members.
	Size() int
	// ID is the rank of this process in the group, or -1 if it is not a member.
	ID() int
	RootID() int
	Belongs() bool

	Role(rank int) Role
	SetRole(rank int, role Role) error
	Tag() string
	SetTag(tag string)

	// Sync blocks until every member has called it.
	Sync() error
	// SyncWith blocks until rank has called SyncWith with this member.
	SyncWith(rank int) error
	// SyncLabel is Sync with a label recorded in the debug log.
	SyncLabel(label string) error
	// Desync sleeps for a random duration in [0, max]. It is not collective.
	Desync(max time.Duration)

	SendReals(rank int, xs []float32, tag int) error
	SendDoubles(rank int, xs []float64, tag int) error
	SendInts(rank int, xs []int32, tag int) error
	SendStrings(rank int, ss []string, tag int) error
	// Receives fill the whole buffer and return the rank of the sender.
	RecvReals(rank int, xs []float32, tag int) (int, error)
	RecvDoubles(rank int, xs []float64, tag int) (int, error)
	RecvInts(rank int, xs []int32, tag int) (int, error)
	RecvStrings(rank int, ss []string, tag int) (int, error)

	// Subgroup carves size consecutive members starting at offset.
	Subgroup(size int, flags Flags, offset int) (Group, error)
	// SubgroupOf carves the given members; ranks[0] becomes the root.
	SubgroupOf(ranks []int, flags Flags) (Group, error)
	// Split carves the first sizeA members and the remainder.
	Split(sizeA int, flags Flags) (Group, Group, error)

	// Random returns the same value on every member; successive calls differ.
	Random() float64

	// Close closes the children of the group, then the group.
	Close() error
	// Shutdown releases the process-wide transport.
	Shutdown() error
}

func checkRank(rank, size int) error {
	if rank < 0 || rank >= size {
		return fmt.Errorf("%w: rank %d not in [0, %d)", ErrBadProcessor, rank, size)
	}
	return nil
}

func checkSource(rank, size int) error {
	if rank == AnySource {
		return nil
	}
	return checkRank(rank, size)
}

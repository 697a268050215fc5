package procgroup

import "fmt"

// Tags reserved for the collective helpers. User tags are non-negative.
const (
	tagBroadcast = -2
	tagGather    = -3
)

// BroadcastInts copies xs of root into xs of every other member.
func BroadcastInts(g Group, xs []int32, root int) error {
	if !g.Belongs() {
		return nil
	}
	if err := checkRank(root, g.Size()); err != nil {
		return err
	}
	if g.ID() != root {
		_, err := g.RecvInts(root, xs, tagBroadcast)
		return err
	}
	for r := 0; r < g.Size(); r++ {
		if r != root {
			if err := g.SendInts(r, xs, tagBroadcast); err != nil {
				return err
			}
		}
	}
	return nil
}

// BroadcastDoubles copies xs of root into xs of every other member.
func BroadcastDoubles(g Group, xs []float64, root int) error {
	if !g.Belongs() {
		return nil
	}
	if err := checkRank(root, g.Size()); err != nil {
		return err
	}
	if g.ID() != root {
		_, err := g.RecvDoubles(root, xs, tagBroadcast)
		return err
	}
	for r := 0; r < g.Size(); r++ {
		if r != root {
			if err := g.SendDoubles(r, xs, tagBroadcast); err != nil {
				return err
			}
		}
	}
	return nil
}

// GatherDoubles concatenates xs of every member, in rank order, on root.
// Other members get nil. All members must pass slices of the same length.
func GatherDoubles(g Group, xs []float64, root int) ([]float64, error) {
	if !g.Belongs() {
		return nil, nil
	}
	if err := checkRank(root, g.Size()); err != nil {
		return nil, err
	}
	if g.ID() != root {
		return nil, g.SendDoubles(root, xs, tagGather)
	}
	n := len(xs)
	all := make([]float64, n*g.Size())
	for r := 0; r < g.Size(); r++ {
		part := all[r*n : (r+1)*n]
		if r == root {
			copy(part, xs)
			continue
		}
		if _, err := g.RecvDoubles(r, part, tagGather); err != nil {
			return nil, fmt.Errorf("gather from %d: %w", r, err)
		}
	}
	return all, nil
}

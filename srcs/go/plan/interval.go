package plan

// Interval represents the interval of integers [Begin, End)
type Interval struct {
	Begin int
	End   int
}

func (i Interval) Len() int { return i.End - i.Begin }

func (i Interval) Contains(x int) bool { return i.Begin <= x && x < i.End }

// EvenPartition parts an Interval into k parts such that the length of each part differ at most 1.
// The longer parts come first.
func EvenPartition(r Interval, k int) []Interval {
	quo, rem := divide(r.Len(), k)
	var parts []Interval
	offset := r.Begin
	for i := 0; i < k; i++ {
		blockCount := func() int {
			if i < rem {
				return quo + 1
			}
			return quo
		}()
		parts = append(parts, Interval{Begin: offset, End: offset + blockCount})
		offset += blockCount
	}
	return parts
}

// EvenSizes returns the lengths of EvenPartition(Interval{0, n}, k).
func EvenSizes(n, k int) []int {
	sizes := make([]int, k)
	for i, r := range EvenPartition(Interval{Begin: 0, End: n}, k) {
		sizes[i] = r.Len()
	}
	return sizes
}

func divide(a, b int) (int, int) {
	q := a / b
	r := a - b*q
	return q, r
}

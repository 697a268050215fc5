package procgroup

// NumChildren returns the number of open children of g.
func NumChildren(g Group) int {
	switch g := g.(type) {
	case *netGroup:
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.children)
	case *serialGroup:
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.children)
	}
	return -1
}

// Package search implements the bounded breadth-first traversal shared by
// blast-area computation, spawn territory fill and connectivity queries.
// The traversal order is fully determined by the start order and the order
// in which the neighbor callback yields nodes, so results are reproducible
// across participants.
package search

// Visit is the per-node decision returned by the visitor callback.
type Visit int

const (
	// Reject drops the node: not collected, neighbors not expanded.
	Reject Visit = iota
	// Explore expands the node's neighbors without collecting it.
	Explore
	// Accept collects the node and expands its neighbors.
	Accept
	// Found collects the node and stops the traversal immediately.
	Found
)

// Result carries the collected nodes in visit order. When the visitor
// returned Found, HasFound is set and Found holds the terminating node.
type Result[N comparable] struct {
	Accepted []N
	Found    N
	HasFound bool
}

// BreadthFirst traverses outward from the start nodes. neighbors appends the
// adjacent nodes of n to buf and returns the extended slice; visit decides
// what happens to each node, where depth is the hop count from the nearest
// start node. The traversal stops after maxNodes visited nodes (<= 0 means
// unbounded) or when the visitor returns Found.
func BreadthFirst[N comparable](
	start []N,
	maxNodes int,
	neighbors func(n N, buf []N) []N,
	visit func(n N, depth int) Visit,
) Result[N] {
	var res Result[N]

	type item struct {
		node  N
		depth int
	}

	seen := make(map[N]struct{}, len(start))
	queue := make([]item, 0, len(start))
	for _, n := range start {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		queue = append(queue, item{node: n})
	}

	var buf []N
	visited := 0
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		if maxNodes > 0 && visited >= maxNodes {
			return res
		}
		visited++

		switch visit(it.node, it.depth) {
		case Reject:
			continue
		case Found:
			res.Accepted = append(res.Accepted, it.node)
			res.Found = it.node
			res.HasFound = true
			return res
		case Accept:
			res.Accepted = append(res.Accepted, it.node)
		case Explore:
			// expand only
		}

		buf = neighbors(it.node, buf[:0])
		for _, nb := range buf {
			if _, ok := seen[nb]; ok {
				continue
			}
			seen[nb] = struct{}{}
			queue = append(queue, item{node: nb, depth: it.depth + 1})
		}
	}
	return res
}

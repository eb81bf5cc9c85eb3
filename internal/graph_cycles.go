package internal

import (
	"slices"
	"strings"
)

// CycleConfig configures generic cycle detection traversal.
type CycleConfig[K comparable] struct {
	// Starts bound the search to the nodes reachable from them.
	Starts []K
	// Next returns the successors of a node. Missing nodes return nil.
	Next func(K) []K
	// Key renders a node for canonical ordering.
	Key func(K) string
}

// DetectCycles returns every elementary cycle among the nodes reachable from
// the starts. Cycles that share nodes are reported separately. Each cycle is
// rotated so that the node with the smallest key comes first, and the result
// is ordered by the joined keys.
func DetectCycles[K comparable](cfg CycleConfig[K]) [][]K {
	nodes, adj := reachable(cfg)
	slices.SortStableFunc(nodes, func(a, b K) int { return strings.Compare(cfg.Key(a), cfg.Key(b)) })
	rank := make(map[K]int, len(nodes))
	for i, n := range nodes {
		rank[n] = i
	}

	seen := make(map[string]struct{})
	var cycles [][]K
	record := func(members []K) {
		cycle := canonicalCycle(members, cfg.Key)
		key := cycleKey(cycle, cfg.Key)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		cycles = append(cycles, cycle)
	}

	// Johnson's circuit search, rooted at each node over the nodes ranked at or after it.
	for i, root := range nodes {
		blocked := make(map[K]bool)
		blockedBy := make(map[K]map[K]struct{})
		var stack []K

		var unblock func(n K)
		unblock = func(n K) {
			blocked[n] = false
			if waiting, ok := blockedBy[n]; ok {
				delete(blockedBy, n)
				for w := range waiting {
					if blocked[w] {
						unblock(w)
					}
				}
			}
		}

		var circuit func(v K) bool
		circuit = func(v K) bool {
			found := false
			stack = append(stack, v)
			blocked[v] = true
			for _, w := range adj[v] {
				if rank[w] < i {
					continue
				}
				if w == root {
					record(stack)
					found = true
				} else if !blocked[w] && circuit(w) {
					found = true
				}
			}
			if found {
				unblock(v)
			} else {
				for _, w := range adj[v] {
					if rank[w] < i {
						continue
					}
					if blockedBy[w] == nil {
						blockedBy[w] = make(map[K]struct{})
					}
					blockedBy[w][v] = struct{}{}
				}
			}
			stack = stack[:len(stack)-1]
			return found
		}
		circuit(root)
	}

	slices.SortFunc(cycles, func(a, b []K) int {
		return strings.Compare(cycleKey(a, cfg.Key), cycleKey(b, cfg.Key))
	})
	return cycles
}

// reachable collects the nodes reachable from the starts together with their successors.
func reachable[K comparable](cfg CycleConfig[K]) ([]K, map[K][]K) {
	adj := make(map[K][]K)
	var nodes []K
	queue := slices.Clone(cfg.Starts)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, ok := adj[n]; ok {
			continue
		}
		next := cfg.Next(n)
		if next == nil {
			next = []K{}
		}
		adj[n] = next
		nodes = append(nodes, n)
		queue = append(queue, next...)
	}
	return nodes, adj
}

func canonicalCycle[K comparable](members []K, key func(K) string) []K {
	minIdx := 0
	for i := range members {
		if key(members[i]) < key(members[minIdx]) {
			minIdx = i
		}
	}
	out := make([]K, 0, len(members))
	out = append(out, members[minIdx:]...)
	out = append(out, members[:minIdx]...)
	return out
}

func cycleKey[K comparable](cycle []K, key func(K) string) string {
	parts := make([]string, len(cycle))
	for i, n := range cycle {
		parts[i] = key(n)
	}
	return strings.Join(parts, " -> ")
}

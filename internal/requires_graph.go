package internal

import (
	"slices"

	"github.com/lychee-technology/schemaguard"
)

// ContainerLookup resolves a container reference.
type ContainerLookup func(schemaguard.ContainerRef) (schemaguard.Container, bool)

// RequiresGraph analyzes the requires constraints between containers.
// Closures follow requires edges over every resolvable container, so a path
// through containers outside a view's scope still counts. Closures are
// memoized per instance; an instance must not be shared between runs.
type RequiresGraph struct {
	lookup  ContainerLookup
	closure map[schemaguard.ContainerRef]*Set[schemaguard.ContainerRef]
}

// NewRequiresGraph creates an analyzer over the given container lookup.
func NewRequiresGraph(lookup ContainerLookup) *RequiresGraph {
	return &RequiresGraph{
		lookup:  lookup,
		closure: make(map[schemaguard.ContainerRef]*Set[schemaguard.ContainerRef]),
	}
}

// Requires returns the direct, resolvable requires targets of ref in sorted order.
func (g *RequiresGraph) Requires(ref schemaguard.ContainerRef) []schemaguard.ContainerRef {
	c, ok := g.lookup(ref)
	if !ok {
		return nil
	}
	set := NewSet[schemaguard.ContainerRef]()
	for _, target := range c.Requires {
		if _, ok := g.lookup(target); ok {
			set.Add(target)
		}
	}
	return set.Sorted(schemaguard.CompareContainerRefs)
}

// TransitiveClosure returns every container reachable from ref through requires.
// ref itself is only included when it sits on a cycle.
func (g *RequiresGraph) TransitiveClosure(ref schemaguard.ContainerRef) *Set[schemaguard.ContainerRef] {
	if cached, ok := g.closure[ref]; ok {
		return cached.Clone()
	}
	reached := NewSet[schemaguard.ContainerRef]()
	stack := g.Requires(ref)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached.Contains(cur) {
			continue
		}
		reached.Add(cur)
		stack = append(stack, g.Requires(cur)...)
	}
	g.closure[ref] = reached
	return reached.Clone()
}

// Reach returns the members of refs together with everything they require transitively.
// Reach is idempotent: Reach(Reach(x)) equals Reach(x).
func (g *RequiresGraph) Reach(refs []schemaguard.ContainerRef) *Set[schemaguard.ContainerRef] {
	out := NewSet(refs...)
	for _, ref := range refs {
		out.AddAll(g.TransitiveClosure(ref))
	}
	return out
}

// coverage counts how many members of scope are c or reachable from c.
func (g *RequiresGraph) coverage(c schemaguard.ContainerRef, scope *Set[schemaguard.ContainerRef]) int {
	covered := g.TransitiveClosure(c)
	covered.Add(c)
	return covered.Intersect(scope).Size()
}

// HasFullHierarchy reports whether one member of containers requires, directly
// or transitively, every other member.
func (g *RequiresGraph) HasFullHierarchy(containers []schemaguard.ContainerRef) bool {
	scope := NewSet(containers...)
	for _, c := range containers {
		if g.coverage(c, scope) == scope.Size() {
			return true
		}
	}
	return false
}

// FindOutermost returns the container covering most of containers. Ties go to
// the lexicographically smallest ref. It reports false when no member covers
// anything beyond itself and there are more than two members, because then
// no candidate stands out.
func (g *RequiresGraph) FindOutermost(containers []schemaguard.ContainerRef) (schemaguard.ContainerRef, bool) {
	scope := NewSet(containers...)
	ordered := scope.Sorted(schemaguard.CompareContainerRefs)
	if len(ordered) == 0 {
		return schemaguard.ContainerRef{}, false
	}
	best, bestCoverage := ordered[0], -1
	for _, c := range ordered {
		if cov := g.coverage(c, scope); cov > bestCoverage {
			best, bestCoverage = c, cov
		}
	}
	if bestCoverage <= 1 && len(ordered) > 2 {
		return schemaguard.ContainerRef{}, false
	}
	return best, true
}

// Chain returns the members of scope covered by outer, outermost first. Members
// covering more of the scope come earlier; ties are ordered by ref.
func (g *RequiresGraph) Chain(outer schemaguard.ContainerRef, containers []schemaguard.ContainerRef) []schemaguard.ContainerRef {
	scope := NewSet(containers...)
	covered := g.TransitiveClosure(outer).Intersect(scope)
	covered.Remove(outer)
	rest := covered.Sorted(schemaguard.CompareContainerRefs)
	slices.SortStableFunc(rest, func(a, b schemaguard.ContainerRef) int {
		return g.coverage(b, scope) - g.coverage(a, scope)
	})
	return append([]schemaguard.ContainerRef{outer}, rest...)
}

// FindMinimalCompletionSet drops every member of missing that another member
// already reaches, so no recommendation is implied by another one. When two
// members reach each other the smaller ref is kept. The result is sorted.
func (g *RequiresGraph) FindMinimalCompletionSet(missing []schemaguard.ContainerRef) []schemaguard.ContainerRef {
	candidates := NewSet(missing...).Sorted(schemaguard.CompareContainerRefs)
	var out []schemaguard.ContainerRef
	for _, m := range candidates {
		redundant := false
		for _, x := range candidates {
			if x == m || !g.TransitiveClosure(x).Contains(m) {
				continue
			}
			mutual := g.TransitiveClosure(m).Contains(x)
			if !mutual || schemaguard.CompareContainerRefs(x, m) < 0 {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, m)
		}
	}
	return out
}

// FindBridgeAndRequirer looks for a way to hook target into an existing chain
// instead of adding an edge from the outermost container. The bridge is the
// first chain member target already reaches; the requirer is a chain member
// that requires the bridge directly or through one container outside scope.
// Recommending "requirer requires target" then keeps the chain intact because
// target leads back to the bridge.
func (g *RequiresGraph) FindBridgeAndRequirer(target schemaguard.ContainerRef, chain, containers []schemaguard.ContainerRef) (bridge, requirer schemaguard.ContainerRef, ok bool) {
	scope := NewSet(containers...)
	fromTarget := g.TransitiveClosure(target)

	found := false
	for _, member := range chain {
		if fromTarget.Contains(member) {
			bridge, found = member, true
			break
		}
	}
	if !found {
		return bridge, requirer, false
	}

	for _, member := range chain {
		if member == bridge || fromTarget.Contains(member) {
			continue
		}
		if g.requiresWithinOneHop(member, bridge, scope) {
			return bridge, member, true
		}
	}
	return bridge, requirer, false
}

func (g *RequiresGraph) requiresWithinOneHop(from, to schemaguard.ContainerRef, scope *Set[schemaguard.ContainerRef]) bool {
	for _, next := range g.Requires(from) {
		if next == to {
			return true
		}
		if scope.Contains(next) {
			continue
		}
		if slices.Contains(g.Requires(next), to) {
			return true
		}
	}
	return false
}

// DetectCycle returns the first requires cycle reachable from containers, or nil.
func (g *RequiresGraph) DetectCycle(containers []schemaguard.ContainerRef) []schemaguard.ContainerRef {
	cycles := g.DetectCycles(containers)
	if len(cycles) == 0 {
		return nil
	}
	return cycles[0]
}

// DetectCycles returns every distinct requires cycle reachable from containers.
func (g *RequiresGraph) DetectCycles(containers []schemaguard.ContainerRef) [][]schemaguard.ContainerRef {
	starts := NewSet[schemaguard.ContainerRef]()
	for _, c := range containers {
		if _, ok := g.lookup(c); ok {
			starts.Add(c)
		}
	}
	return DetectCycles(CycleConfig[schemaguard.ContainerRef]{
		Starts: starts.Sorted(schemaguard.CompareContainerRefs),
		Next:   g.Requires,
		Key:    schemaguard.ContainerRef.String,
	})
}

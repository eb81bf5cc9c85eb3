package internal

import (
	"strings"

	"github.com/lychee-technology/schemaguard"
)

func performanceValidators() []Validator {
	return []Validator{
		&rule{
			code:    CodeMissingRequiresHierarchy,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "containers mapped by one view should form a requires hierarchy",
			run:     checkRequiresHierarchy,
		},
	}
}

// checkRequiresHierarchy recommends requires constraints so that one container
// of every multi-container view reaches all the others. Without that the
// platform cannot prune joins when querying the view.
func checkRequiresHierarchy(r *ResolvedResources, out *issueSink) error {
	graph := NewRequiresGraph(r.Container)
	for _, view := range r.LocalViews() {
		var scope []schemaguard.ContainerRef
		for _, ref := range r.ViewContainers(view.Ref) {
			if _, ok := r.Container(ref); ok {
				scope = append(scope, ref)
			}
		}
		if len(scope) < 2 || graph.HasFullHierarchy(scope) {
			continue
		}

		subject := view.Ref.String()
		outer, ok := graph.FindOutermost(scope)
		if !ok {
			out.add(subject, "Pick the container that identifies the view and let it require the others.",
				"containers %s are not connected by requires constraints", joinContainerRefs(scope))
			continue
		}

		reached := graph.Reach([]schemaguard.ContainerRef{outer})
		var missing []schemaguard.ContainerRef
		for _, ref := range scope {
			if !reached.Contains(ref) {
				missing = append(missing, ref)
			}
		}

		chain := graph.Chain(outer, scope)
		for _, target := range graph.FindMinimalCompletionSet(missing) {
			if bridge, requirer, ok := graph.FindBridgeAndRequirer(target, chain, scope); ok {
				out.add(subject, "Add "+target.String()+" to the requires of "+requirer.String()+".",
					"container %s is not reached from %s; %s should require %s, which already leads to %s",
					target, outer, requirer, target, bridge)
				continue
			}
			out.add(subject, "Add "+target.String()+" to the requires of "+outer.String()+".",
				"container %s is not reached from %s; %s should require %s",
				target, outer, outer, target)
		}
	}
	return nil
}

func joinContainerRefs(refs []schemaguard.ContainerRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, ", ")
}

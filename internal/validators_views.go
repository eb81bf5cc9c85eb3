package internal

import (
	"strings"

	"github.com/lychee-technology/schemaguard"
)

func viewValidators() []Validator {
	return []Validator{
		&rule{
			code:    CodeImplementsMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "implemented views must exist",
			run:     checkImplementsExist,
		},
		&rule{
			code:    CodeViewEmpty,
			kind:    schemaguard.IssueKindConsistency,
			summary: "views must have at least one property",
			run:     checkViewHasProperties,
		},
		&rule{
			code:    CodeImplementsCycle,
			kind:    schemaguard.IssueKindConsistency,
			summary: "implements must not form a cycle",
			run:     checkImplementsCycles,
		},
		&rule{
			code:    CodeDataModelViewGone,
			kind:    schemaguard.IssueKindConsistency,
			summary: "data model views must survive a rebuild",
			run:     checkDataModelViewsKept,
		},
	}
}

func checkImplementsExist(r *ResolvedResources, out *issueSink) error {
	for _, view := range r.LocalViews() {
		for _, parent := range view.Implements {
			if _, ok := r.View(parent); !ok {
				out.add(view.Ref.String(), "Define the implemented view or drop it from implements.",
					"view implements %s which is defined neither locally nor remotely", parent)
			}
		}
	}
	return nil
}

func checkViewHasProperties(r *ResolvedResources, out *issueSink) error {
	for _, view := range r.LocalViews() {
		props, missing := r.ExpandedViewProperties(view.Ref)
		if len(props) == 0 && len(missing) == 0 {
			out.add(view.Ref.String(), "Add a property or implement a view that has properties.",
				"view has no properties, neither its own nor inherited")
		}
	}
	return nil
}

func checkImplementsCycles(r *ResolvedResources, out *issueSink) error {
	starts := make([]schemaguard.ViewRef, 0)
	for _, view := range r.LocalViews() {
		starts = append(starts, view.Ref)
	}
	cycles := DetectCycles(CycleConfig[schemaguard.ViewRef]{
		Starts: starts,
		Next: func(ref schemaguard.ViewRef) []schemaguard.ViewRef {
			view, ok := r.View(ref)
			if !ok {
				return nil
			}
			var next []schemaguard.ViewRef
			for _, parent := range view.Implements {
				if _, ok := r.View(parent); ok {
					next = append(next, parent)
				}
			}
			return next
		},
		Key: schemaguard.ViewRef.String,
	})
	for _, cycle := range cycles {
		parts := make([]string, 0, len(cycle)+1)
		for _, ref := range cycle {
			parts = append(parts, ref.String())
		}
		parts = append(parts, cycle[0].String())
		out.add(cycle[0].String(), "Remove one of the implements entries in the cycle.",
			"implements form a cycle: %s", strings.Join(parts, " -> "))
	}
	return nil
}

func checkDataModelViewsKept(r *ResolvedResources, out *issueSink) error {
	dm := r.DataModel()
	if dm == nil {
		return nil
	}
	for _, ref := range dm.Views {
		if r.HiddenByRebuild(ref) {
			out.add(dm.Ref.String(), "Add the view to the draft or drop it from the data model.",
				"data model lists view %s which exists only in the snapshot and is removed when space %s is rebuilt", ref, ref.Space)
		}
	}
	return nil
}

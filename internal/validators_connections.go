package internal

import (
	"slices"

	"github.com/lychee-technology/schemaguard"
)

func connectionValidators() []Validator {
	return []Validator{
		&rule{
			code:    CodeValueTypeUndefined,
			kind:    schemaguard.IssueKindConsistency,
			summary: "connection value types must be defined locally or remotely",
			run:     checkValueTypeDefined,
		},
		&rule{
			code:    CodeValueTypeUnset,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "connections should declare the view they point at",
			run:     checkValueTypeSet,
		},
		&rule{
			code:    CodeReverseSourceMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "reverse connections must go through an existing view",
			run:     reverseCheck(reverseSourceMissing),
		},
		&rule{
			code:    CodeReverseThroughMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "reverse connections must go through an existing property",
			run:     reverseCheck(reverseThroughMissing),
		},
		&rule{
			code:    CodeReverseThroughNotDirect,
			kind:    schemaguard.IssueKindConsistency,
			summary: "reverse connections must go through a direct connection",
			run:     reverseCheck(reverseThroughNotDirect),
		},
		&rule{
			code:    CodeReverseContainerNotDirect,
			kind:    schemaguard.IssueKindConsistency,
			summary: "the reversed direct connection must be stored as a direct relation",
			run:     reverseCheck(reverseContainerNotDirect),
		},
		&rule{
			code:    CodeReverseTargetsAncestor,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "the reversed direct connection should point at the reverse owner itself",
			run:     reverseCheck(reverseTargetsAncestor),
		},
		&rule{
			code:    CodeReverseTargetMismatch,
			kind:    schemaguard.IssueKindConsistency,
			summary: "the reversed direct connection must point back at the reverse owner",
			run:     reverseCheck(reverseTargetMismatch),
		},
		&rule{
			code:    CodeReverseTargetUnset,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "the reversed direct connection should declare its value type",
			run:     reverseCheck(reverseTargetUnset),
		},
	}
}

// eachLocalProperty visits the own properties of every local view in order.
func eachLocalProperty(r *ResolvedResources, fn func(view schemaguard.View, id string, p schemaguard.ViewProperty)) {
	for _, view := range r.LocalViews() {
		for _, id := range SortedKeys(view.Properties) {
			fn(view, id, view.Properties[id])
		}
	}
}

func checkValueTypeDefined(r *ResolvedResources, out *issueSink) error {
	eachLocalProperty(r, func(view schemaguard.View, id string, p schemaguard.ViewProperty) {
		if !p.IsConnection() || p.Source == nil {
			return
		}
		if _, ok := r.View(*p.Source); !ok {
			out.add(propertySubject(view.Ref, id),
				"Define the view or point the connection at an existing view.",
				"connection points at view %s which is defined neither locally nor remotely", p.Source)
		}
	})
	return nil
}

func checkValueTypeSet(r *ResolvedResources, out *issueSink) error {
	eachLocalProperty(r, func(view schemaguard.View, id string, p schemaguard.ViewProperty) {
		if !p.IsConnection() || p.Source != nil {
			return
		}
		out.add(propertySubject(view.Ref, id),
			"Set source to the view the connection points at.",
			"%s connection has no value type", p.Connection)
	})
	return nil
}

// reverseLink is a reverse connection together with the direct connection it reverses.
type reverseLink struct {
	owner      schemaguard.ViewRef
	property   string
	through    schemaguard.ViewPropertyRef
	viewFound  bool
	direct     schemaguard.ViewProperty
	directSeen bool
}

func (l reverseLink) subject() string {
	return propertySubject(l.owner, l.property)
}

// reverseCheck runs check for every reverse connection of the local views.
// The through property is looked up on the expanded through view, so inherited
// direct connections count.
func reverseCheck(check func(r *ResolvedResources, link reverseLink, out *issueSink)) func(*ResolvedResources, *issueSink) error {
	return func(r *ResolvedResources, out *issueSink) error {
		eachLocalProperty(r, func(view schemaguard.View, id string, p schemaguard.ViewProperty) {
			if p.Connection != schemaguard.ConnectionReverse || p.Through == nil {
				return
			}
			link := reverseLink{owner: view.Ref, property: id, through: *p.Through}
			if _, ok := r.View(p.Through.View); ok {
				link.viewFound = true
				props, _ := r.ExpandedViewProperties(p.Through.View)
				link.direct, link.directSeen = props[p.Through.Property]
			}
			check(r, link, out)
		})
		return nil
	}
}

func reverseSourceMissing(_ *ResolvedResources, link reverseLink, out *issueSink) {
	if !link.viewFound {
		out.add(link.subject(), "Define the view or correct the through reference.",
			"reverse connection goes through view %s which does not exist", link.through.View)
	}
}

func reverseThroughMissing(_ *ResolvedResources, link reverseLink, out *issueSink) {
	if link.viewFound && !link.directSeen {
		out.add(link.subject(), "Add the property to the view or correct the through reference.",
			"reverse connection goes through %s which does not exist", link.through)
	}
}

func reverseThroughNotDirect(_ *ResolvedResources, link reverseLink, out *issueSink) {
	if link.directSeen && link.direct.Connection != schemaguard.ConnectionDirect {
		out.add(link.subject(), "Point the reverse connection at a direct connection.",
			"reverse connection goes through %s which is not a direct connection", link.through)
	}
}

func reverseContainerNotDirect(r *ResolvedResources, link reverseLink, out *issueSink) {
	if !link.directSeen || link.direct.Connection != schemaguard.ConnectionDirect || link.direct.Container == nil {
		return
	}
	container, ok := r.Container(*link.direct.Container)
	if !ok {
		return
	}
	prop, ok := container.Properties[link.direct.ContainerProperty]
	if !ok || prop.Type.Kind == schemaguard.DataTypeDirect {
		return
	}
	out.add(link.subject(), "Store the reversed connection in a container property of type direct.",
		"reverse connection goes through %s which is stored in %s as %s, not as a direct relation",
		link.through, containerPropertySubject(container.Ref, link.direct.ContainerProperty), prop.Type.Kind)
}

// reverseTarget returns the view the reversed direct connection points at.
func reverseTarget(link reverseLink) (schemaguard.ViewRef, bool) {
	if !link.directSeen || link.direct.Connection != schemaguard.ConnectionDirect || link.direct.Source == nil {
		return schemaguard.ViewRef{}, false
	}
	return *link.direct.Source, true
}

func reverseTargetsAncestor(r *ResolvedResources, link reverseLink, out *issueSink) {
	target, ok := reverseTarget(link)
	if !ok || target == link.owner {
		return
	}
	if slices.Contains(r.Ancestors(link.owner), target) {
		out.add(link.subject(), "Point the direct connection at the view owning the reverse connection.",
			"reverse connection goes through %s which points at %s, an ancestor of %s", link.through, target, link.owner)
	}
}

func reverseTargetMismatch(r *ResolvedResources, link reverseLink, out *issueSink) {
	target, ok := reverseTarget(link)
	if !ok || target == link.owner || slices.Contains(r.Ancestors(link.owner), target) {
		return
	}
	out.add(link.subject(), "Point the direct connection at the view owning the reverse connection.",
		"reverse connection goes through %s which points at %s instead of %s", link.through, target, link.owner)
}

func reverseTargetUnset(_ *ResolvedResources, link reverseLink, out *issueSink) {
	if link.directSeen && link.direct.Connection == schemaguard.ConnectionDirect && link.direct.Source == nil {
		out.add(link.subject(), "Set source on the direct connection.",
			"reverse connection goes through %s which has no value type", link.through)
	}
}

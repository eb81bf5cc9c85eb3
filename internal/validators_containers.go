package internal

import (
	"strings"

	"github.com/lychee-technology/schemaguard"
)

func containerValidators() []Validator {
	return []Validator{
		&rule{
			code:    CodeContainerMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "views must map to containers that exist",
			run:     checkContainersExist,
		},
		&rule{
			code:    CodeContainerPropertyMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "views must map to container properties that exist",
			run:     checkContainerPropertiesExist,
		},
		&rule{
			code:    CodeDirectTypeMismatch,
			kind:    schemaguard.IssueKindConsistency,
			summary: "direct connections must be stored in direct relation properties",
			run:     checkDirectStorage,
		},
		&rule{
			code:    CodeRequiresCycle,
			kind:    schemaguard.IssueKindConsistency,
			summary: "requires constraints must not form a cycle",
			run:     checkRequiresCycles,
		},
		&rule{
			code:    CodeRequiresMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "required containers must exist",
			run:     checkRequiresTargets,
		},
		&rule{
			code:    CodeIndexPropertyMissing,
			kind:    schemaguard.IssueKindConsistency,
			summary: "indexes must cover properties of their container",
			run:     checkIndexProperties,
		},
	}
}

func checkContainersExist(r *ResolvedResources, out *issueSink) error {
	for _, view := range r.LocalViews() {
		missing := make(map[schemaguard.ContainerRef][]string)
		for _, id := range SortedKeys(view.Properties) {
			p := view.Properties[id]
			if !p.MapsToContainer() {
				continue
			}
			if _, ok := r.Container(*p.Container); !ok {
				missing[*p.Container] = append(missing[*p.Container], id)
			}
		}
		for _, ref := range SortedKeysFunc(missing, schemaguard.CompareContainerRefs) {
			out.add(view.Ref.String(), "Define the container or map the properties to an existing one.",
				"properties %s map to container %s which is defined neither locally nor remotely",
				strings.Join(missing[ref], ", "), ref)
		}
	}
	return nil
}

func checkContainerPropertiesExist(r *ResolvedResources, out *issueSink) error {
	eachLocalProperty(r, func(view schemaguard.View, id string, p schemaguard.ViewProperty) {
		if !p.MapsToContainer() || p.ContainerProperty == "" {
			return
		}
		container, ok := r.Container(*p.Container)
		if !ok {
			return
		}
		if _, ok := container.Properties[p.ContainerProperty]; !ok {
			out.add(propertySubject(view.Ref, id), "Add the property to the container or correct the mapping.",
				"container %s has no property %q", container.Ref, p.ContainerProperty)
		}
	})
	return nil
}

func checkDirectStorage(r *ResolvedResources, out *issueSink) error {
	eachLocalProperty(r, func(view schemaguard.View, id string, p schemaguard.ViewProperty) {
		if p.Connection != schemaguard.ConnectionDirect || !p.MapsToContainer() {
			return
		}
		container, ok := r.Container(*p.Container)
		if !ok {
			return
		}
		prop, ok := container.Properties[p.ContainerProperty]
		if !ok || prop.Type.Kind == schemaguard.DataTypeDirect {
			return
		}
		out.add(propertySubject(view.Ref, id), "Change the container property type to direct.",
			"direct connection is stored in %s which has type %s",
			containerPropertySubject(container.Ref, p.ContainerProperty), prop.Type.Kind)
	})
	return nil
}

// requiresScope is every container the local draft defines or maps views to.
func requiresScope(r *ResolvedResources) []schemaguard.ContainerRef {
	scope := NewSet[schemaguard.ContainerRef]()
	for _, c := range r.LocalContainers() {
		scope.Add(c.Ref)
	}
	for _, view := range r.LocalViews() {
		for _, ref := range r.ViewContainers(view.Ref) {
			scope.Add(ref)
		}
	}
	return scope.Sorted(schemaguard.CompareContainerRefs)
}

func checkRequiresCycles(r *ResolvedResources, out *issueSink) error {
	graph := NewRequiresGraph(r.Container)
	for _, cycle := range graph.DetectCycles(requiresScope(r)) {
		parts := make([]string, 0, len(cycle)+1)
		for _, ref := range cycle {
			parts = append(parts, ref.String())
		}
		parts = append(parts, cycle[0].String())
		out.add(cycle[0].String(), "Remove one of the requires constraints in the cycle.",
			"requires constraints form a cycle: %s", strings.Join(parts, " -> "))
	}
	return nil
}

func checkRequiresTargets(r *ResolvedResources, out *issueSink) error {
	for _, c := range r.LocalContainers() {
		for _, target := range c.Requires {
			if _, ok := r.Container(target); !ok {
				out.add(c.Ref.String(), "Define the required container or drop the constraint.",
					"container requires %s which is defined neither locally nor remotely", target)
			}
		}
	}
	return nil
}

func checkIndexProperties(r *ResolvedResources, out *issueSink) error {
	for _, c := range r.LocalContainers() {
		for _, id := range SortedKeys(c.Indexes) {
			for _, prop := range c.Indexes[id].Properties {
				if _, ok := c.Properties[prop]; !ok {
					out.add(containerPropertySubject(c.Ref, id), "Index only properties of the container.",
						"index %s covers property %q which the container does not define", id, prop)
				}
			}
		}
	}
	return nil
}

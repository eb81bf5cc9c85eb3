package internal

import (
	"slices"

	"github.com/lychee-technology/schemaguard"
)

func limitValidators(limits schemaguard.LimitsConfig) []Validator {
	return []Validator{
		&rule{
			code:    CodeLimitDataModelViews,
			kind:    schemaguard.IssueKindConsistency,
			summary: "a data model may list a bounded number of views",
			run: func(r *ResolvedResources, out *issueSink) error {
				dm := r.DataModel()
				if dm != nil && len(dm.Views) > limits.ViewsPerDataModel {
					out.add(dm.Ref.String(), "Split the data model.",
						"data model has %d views, exceeding the limit of %d", len(dm.Views), limits.ViewsPerDataModel)
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitViewProperties,
			kind:    schemaguard.IssueKindConsistency,
			summary: "a view may have a bounded number of properties",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, view := range r.LocalViews() {
					props, _ := r.ExpandedViewProperties(view.Ref)
					if n := len(props); n > limits.PropertiesPerView {
						out.add(view.Ref.String(), "Split the view.",
							"view has %d properties including inherited ones, exceeding the limit of %d", n, limits.PropertiesPerView)
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitViewImplements,
			kind:    schemaguard.IssueKindConsistency,
			summary: "a view may implement a bounded number of views",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, view := range r.LocalViews() {
					if n := len(view.Implements); n > limits.ImplementsPerView {
						out.add(view.Ref.String(), "Implement fewer views.",
							"view implements %d views, exceeding the limit of %d", n, limits.ImplementsPerView)
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitViewContainers,
			kind:    schemaguard.IssueKindConsistency,
			summary: "a view may map to a bounded number of containers",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, view := range r.LocalViews() {
					if n := len(r.ViewContainers(view.Ref)); n > limits.ContainersPerView {
						out.add(view.Ref.String(), "Map the view to fewer containers.",
							"view maps to %d containers, exceeding the limit of %d", n, limits.ContainersPerView)
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitContainerProps,
			kind:    schemaguard.IssueKindConsistency,
			summary: "a container may have a bounded number of properties",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, c := range r.LocalContainers() {
					if n := len(c.Properties); n > limits.PropertiesPerContainer {
						out.add(c.Ref.String(), "Split the container.",
							"container has %d properties, exceeding the limit of %d", n, limits.PropertiesPerContainer)
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitListSize,
			kind:    schemaguard.IssueKindConsistency,
			summary: "list properties must stay within the list size ceilings",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, c := range r.LocalContainers() {
					for _, id := range SortedKeys(c.Properties) {
						checkListSize(limits, c, id, out)
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitEnumValues,
			kind:    schemaguard.IssueKindConsistency,
			summary: "an enum may have a bounded number of values",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, c := range r.LocalContainers() {
					for _, id := range SortedKeys(c.Properties) {
						p := c.Properties[id]
						if n := len(p.Type.Values); p.Type.Kind == schemaguard.DataTypeEnum && n > limits.EnumValues {
							out.add(containerPropertySubject(c.Ref, id), "Reduce the number of enum values.",
								"enum has %d values, exceeding the limit of %d", n, limits.EnumValues)
						}
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeLimitContainerIndexes,
			kind:    schemaguard.IssueKindConsistency,
			summary: "a container may have a bounded number of indexes",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, c := range r.LocalContainers() {
					if n := len(c.Indexes); n > limits.IndexesPerContainer {
						out.add(c.Ref.String(), "Drop indexes that queries do not use.",
							"container has %d indexes, exceeding the limit of %d", n, limits.IndexesPerContainer)
					}
				}
				return nil
			},
		},
	}
}

// ListSizeCeiling returns the largest list size allowed for a property given
// the indexes covering it. Enums are not limited.
func ListSizeCeiling(limits schemaguard.LimitsConfig, kind schemaguard.DataTypeKind, indexes []schemaguard.IndexKind) (int, bool) {
	btree := slices.Contains(indexes, schemaguard.IndexKindBTree)
	switch {
	case kind == schemaguard.DataTypeEnum:
		return 0, false
	case kind == schemaguard.DataTypeDirect && btree:
		return limits.MaxDirectBTreeListSize, true
	case kind == schemaguard.DataTypeDirect:
		return limits.MaxDirectListSize, true
	case kind == schemaguard.DataTypeInt32 && btree:
		return limits.MaxInt32BTreeListSize, true
	case kind == schemaguard.DataTypeInt64 && btree:
		return limits.MaxInt64BTreeListSize, true
	default:
		return limits.MaxListSize, true
	}
}

// EffectiveListSize is the declared maxListSize or the platform default.
func EffectiveListSize(limits schemaguard.LimitsConfig, p schemaguard.ContainerProperty) int {
	if p.MaxListSize != nil {
		return *p.MaxListSize
	}
	if p.Type.Kind == schemaguard.DataTypeDirect {
		return limits.DefaultDirectListSize
	}
	return limits.DefaultListSize
}

func checkListSize(limits schemaguard.LimitsConfig, c schemaguard.Container, id string, out *issueSink) {
	p := c.Properties[id]
	if !p.IsList {
		return
	}
	ceiling, limited := ListSizeCeiling(limits, p.Type.Kind, c.IndexesOn(id))
	if !limited {
		return
	}
	size := EffectiveListSize(limits, p)
	if size <= ceiling {
		return
	}
	if p.MaxListSize == nil {
		out.add(containerPropertySubject(c.Ref, id), "Set maxListSize to a value within the limit.",
			"%s list uses the default size %d, exceeding the limit of %d", p.Type.Kind, size, ceiling)
		return
	}
	out.add(containerPropertySubject(c.Ref, id), "Lower maxListSize.",
		"%s list has maxListSize %d, exceeding the limit of %d", p.Type.Kind, size, ceiling)
}

package internal

import "github.com/lychee-technology/schemaguard"

func documentationValidators() []Validator {
	return []Validator{
		&rule{
			code:    CodeDataModelName,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "data models should have a name",
			run: func(r *ResolvedResources, out *issueSink) error {
				if dm := r.DataModel(); dm != nil && dm.Name == "" {
					out.add(dm.Ref.String(), "Give the data model a human readable name.", "data model has no name")
				}
				return nil
			},
		},
		&rule{
			code:    CodeDataModelDescription,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "data models should have a description",
			run: func(r *ResolvedResources, out *issueSink) error {
				if dm := r.DataModel(); dm != nil && dm.Description == "" {
					out.add(dm.Ref.String(), "Describe what the data model is for.", "data model has no description")
				}
				return nil
			},
		},
		&rule{
			code:    CodeViewName,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "views should have a name",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, view := range r.LocalViews() {
					if view.Name == "" {
						out.add(view.Ref.String(), "Give the view a human readable name.", "view has no name")
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeViewDescription,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "views should have a description",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, view := range r.LocalViews() {
					if view.Description == "" {
						out.add(view.Ref.String(), "Describe what the view represents.", "view has no description")
					}
				}
				return nil
			},
		},
		&rule{
			code:    CodeEnumValueUndocumented,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "enum values should have a name or description",
			run: func(r *ResolvedResources, out *issueSink) error {
				for _, c := range r.LocalContainers() {
					for _, id := range SortedKeys(c.Properties) {
						p := c.Properties[id]
						if p.Type.Kind != schemaguard.DataTypeEnum {
							continue
						}
						for _, v := range p.Type.Values {
							if v.Name == "" && v.Description == "" {
								out.add(containerPropertySubject(c.Ref, id), "Name or describe the enum value.",
									"enum value %q has neither name nor description", v.Key)
							}
						}
					}
				}
				return nil
			},
		},
	}
}

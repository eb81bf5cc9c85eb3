package internal

import "github.com/lychee-technology/schemaguard"

func consistencyValidators(sharedSpaces []string) []Validator {
	shared := NewSet(sharedSpaces...)
	return []Validator{
		&rule{
			code:    CodeViewSpaceMismatch,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "data model views should live in the data model's space",
			run: func(r *ResolvedResources, out *issueSink) error {
				return eachDataModelView(r, shared, func(dm *schemaguard.DataModel, view schemaguard.View) {
					if view.Ref.Space != dm.Ref.Space {
						out.add(view.Ref.String(), "Move the view into the data model's space or list its space as shared.",
							"view is in space %s while data model %s is in space %s", view.Ref.Space, dm.Ref, dm.Ref.Space)
					}
				})
			},
		},
		&rule{
			code:    CodeViewVersionMismatch,
			kind:    schemaguard.IssueKindRecommendation,
			summary: "data model views in the model's space should share its version",
			run: func(r *ResolvedResources, out *issueSink) error {
				return eachDataModelView(r, shared, func(dm *schemaguard.DataModel, view schemaguard.View) {
					if view.Ref.Space == dm.Ref.Space && view.Ref.Version != dm.Ref.Version {
						out.add(view.Ref.String(), "Version the view together with the data model.",
							"view has version %s while data model %s has version %s", view.Ref.Version, dm.Ref, dm.Ref.Version)
					}
				})
			},
		},
	}
}

// eachDataModelView visits the views listed by the local data model, skipping
// views from shared spaces and views a rebuild removes.
func eachDataModelView(r *ResolvedResources, shared *Set[string], fn func(*schemaguard.DataModel, schemaguard.View)) error {
	dm := r.DataModel()
	if dm == nil {
		return nil
	}
	for _, ref := range dm.Views {
		if shared.Contains(ref.Space) {
			continue
		}
		if view, ok := r.View(ref); ok {
			fn(dm, view)
		}
	}
	return nil
}

package internal

import (
	"fmt"
	"maps"
	"slices"

	"github.com/lychee-technology/schemaguard"
)

// Quarantine holds the keys of local entities that failed syntax checks.
// Quarantined entities stay resolvable for lookups but are not validated further.
type Quarantine map[string]struct{}

// ContainerKey, ViewKey and DataModelKey build quarantine keys.
func ContainerKey(ref schemaguard.ContainerRef) string { return "container:" + ref.String() }
func ViewKey(ref schemaguard.ViewRef) string           { return "view:" + ref.String() }
func DataModelKey(ref schemaguard.DataModelRef) string { return "datamodel:" + ref.String() }

func (q Quarantine) has(key string) bool {
	_, ok := q[key]
	return ok
}

// fieldStrategy decides which side wins for a scalar field when the same
// resource is defined both locally and remotely in additive mode.
type fieldStrategy int

const (
	// localIfSet takes the local value unless it is empty.
	localIfSet fieldStrategy = iota
	// localAlways takes the local value even when empty.
	localAlways
)

// scalarMergeStrategies is the per-field merge table for additive mode.
// Map and list fields (properties, indexes, implements, requires, views) are unioned instead.
var scalarMergeStrategies = map[string]fieldStrategy{
	"container.name":        localIfSet,
	"container.description": localIfSet,
	"container.usedFor":     localIfSet,
	"view.name":             localIfSet,
	"view.description":      localIfSet,
	"dataModel.name":        localIfSet,
	"dataModel.description": localIfSet,
}

func mergeScalar(field, local, remote string) string {
	strategy, ok := scalarMergeStrategies[field]
	if !ok {
		panic(fmt.Sprintf("no merge strategy registered for field %q", field))
	}
	switch strategy {
	case localAlways:
		return local
	default:
		if local != "" {
			return local
		}
		return remote
	}
}

// ResolvedResources is the merged, read-only view of the schema that validators run against.
type ResolvedResources struct {
	mode       schemaguard.DeploymentMode
	dataModel  *schemaguard.DataModel
	views      map[schemaguard.ViewRef]schemaguard.View
	containers map[schemaguard.ContainerRef]schemaguard.Container

	localViews      []schemaguard.ViewRef
	localContainers []schemaguard.ContainerRef
	localSpaces     map[string]struct{}

	remoteViews      map[schemaguard.ViewRef]schemaguard.View
	remoteContainers map[schemaguard.ContainerRef]schemaguard.Container

	quarantine Quarantine
}

// Resolve merges the local draft with the remote snapshot according to mode.
// It never mutates its inputs. The returned error is always a defect.
func Resolve(local, remote *schemaguard.Schema, mode schemaguard.DeploymentMode, quarantine Quarantine) (*ResolvedResources, error) {
	if _, ok := schemaguard.ParseDeploymentMode(string(mode)); !ok {
		return nil, schemaguard.NewDefect(schemaguard.ErrCodeUnknownDeploymentMode,
			fmt.Sprintf("unknown deployment mode %q", mode))
	}
	if local == nil {
		local = &schemaguard.Schema{}
	}
	if quarantine == nil {
		quarantine = Quarantine{}
	}

	r := &ResolvedResources{
		mode:             mode,
		views:            make(map[schemaguard.ViewRef]schemaguard.View),
		containers:       make(map[schemaguard.ContainerRef]schemaguard.Container),
		localSpaces:      local.SpaceSet(),
		remoteViews:      make(map[schemaguard.ViewRef]schemaguard.View),
		remoteContainers: make(map[schemaguard.ContainerRef]schemaguard.Container),
		quarantine:       quarantine,
	}

	if remote != nil {
		for _, c := range remote.Containers {
			r.remoteContainers[c.Ref] = cloneContainer(c)
		}
		for _, v := range remote.Views {
			r.remoteViews[v.Ref] = cloneView(v)
		}
	}

	if mode == schemaguard.DeploymentModeAdditive {
		maps.Copy(r.containers, r.remoteContainers)
		maps.Copy(r.views, r.remoteViews)
	}

	// The first local definition wins; duplicates are reported by the syntax checks.
	seenContainers := make(map[schemaguard.ContainerRef]struct{})
	for _, c := range local.Containers {
		if _, dup := seenContainers[c.Ref]; dup {
			continue
		}
		seenContainers[c.Ref] = struct{}{}
		r.localContainers = append(r.localContainers, c.Ref)
		if existing, ok := r.remoteContainers[c.Ref]; ok && mode == schemaguard.DeploymentModeAdditive {
			r.containers[c.Ref] = mergeContainer(c, existing)
		} else {
			r.containers[c.Ref] = cloneContainer(c)
		}
	}

	seenViews := make(map[schemaguard.ViewRef]struct{})
	for _, v := range local.Views {
		if _, dup := seenViews[v.Ref]; dup {
			continue
		}
		seenViews[v.Ref] = struct{}{}
		r.localViews = append(r.localViews, v.Ref)
		if existing, ok := r.remoteViews[v.Ref]; ok && mode == schemaguard.DeploymentModeAdditive {
			r.views[v.Ref] = mergeView(v, existing)
		} else {
			r.views[v.Ref] = cloneView(v)
		}
	}
	slices.SortFunc(r.localContainers, schemaguard.CompareContainerRefs)
	slices.SortFunc(r.localViews, schemaguard.CompareViewRefs)

	if local.DataModel != nil {
		dm := cloneDataModel(*local.DataModel)
		if mode == schemaguard.DeploymentModeAdditive && remote != nil && remote.DataModel != nil && remote.DataModel.Ref == dm.Ref {
			dm = mergeDataModel(dm, *remote.DataModel)
		}
		r.dataModel = &dm

		if !quarantine.has(DataModelKey(dm.Ref)) {
			for _, ref := range dm.Views {
				if !r.defined(ref) {
					return nil, schemaguard.NewUnresolvedReferenceError(dm.Ref.String(),
						fmt.Sprintf("view %s listed by the data model is defined neither locally nor remotely", ref)).
						WithDetail("view", ref.String()).
						WithDetail("mode", string(mode))
				}
			}
		}
	}

	return r, nil
}

// Mode returns the deployment mode the resources were resolved with.
func (r *ResolvedResources) Mode() schemaguard.DeploymentMode { return r.mode }

// DataModel returns the merged local data model, or nil when the draft has none.
func (r *ResolvedResources) DataModel() *schemaguard.DataModel {
	if r.dataModel == nil || r.quarantine.has(DataModelKey(r.dataModel.Ref)) {
		return nil
	}
	return r.dataModel
}

// remoteLookupAllowed reports whether a ref that is not part of the resolved
// set may be looked up in the remote snapshot. In rebuild mode the local draft
// is the final state of its own spaces, so only foreign spaces may be consulted.
func (r *ResolvedResources) remoteLookupAllowed(space string) bool {
	if r.mode == schemaguard.DeploymentModeAdditive {
		return true
	}
	_, local := r.localSpaces[space]
	return !local
}

// View looks up a view among the resolved resources and permitted remote ones.
func (r *ResolvedResources) View(ref schemaguard.ViewRef) (schemaguard.View, bool) {
	if v, ok := r.views[ref]; ok {
		return v, true
	}
	if r.remoteLookupAllowed(ref.Space) {
		v, ok := r.remoteViews[ref]
		return v, ok
	}
	return schemaguard.View{}, false
}

// Container looks up a container among the resolved resources and permitted remote ones.
func (r *ResolvedResources) Container(ref schemaguard.ContainerRef) (schemaguard.Container, bool) {
	if c, ok := r.containers[ref]; ok {
		return c, true
	}
	if r.remoteLookupAllowed(ref.Space) {
		c, ok := r.remoteContainers[ref]
		return c, ok
	}
	return schemaguard.Container{}, false
}

// defined reports whether the view exists in the draft or the snapshot,
// whether or not the mode lets validators see it.
func (r *ResolvedResources) defined(ref schemaguard.ViewRef) bool {
	if _, ok := r.views[ref]; ok {
		return true
	}
	_, ok := r.remoteViews[ref]
	return ok
}

// HiddenByRebuild reports whether the view exists only in the snapshot, in a
// space the draft replaces, so rebuild mode will delete it.
func (r *ResolvedResources) HiddenByRebuild(ref schemaguard.ViewRef) bool {
	if _, ok := r.View(ref); ok {
		return false
	}
	_, ok := r.remoteViews[ref]
	return ok
}

// IsLocalView reports whether the view is defined by the local draft.
func (r *ResolvedResources) IsLocalView(ref schemaguard.ViewRef) bool {
	_, ok := slices.BinarySearchFunc(r.localViews, ref, schemaguard.CompareViewRefs)
	return ok
}

// IsLocalSpace reports whether the local draft places resources in space.
func (r *ResolvedResources) IsLocalSpace(space string) bool {
	_, ok := r.localSpaces[space]
	return ok
}

// LocalViews returns the merged local views that passed syntax checks, ordered by ref.
func (r *ResolvedResources) LocalViews() []schemaguard.View {
	out := make([]schemaguard.View, 0, len(r.localViews))
	for _, ref := range r.localViews {
		if r.quarantine.has(ViewKey(ref)) {
			continue
		}
		out = append(out, r.views[ref])
	}
	return out
}

// LocalContainers returns the merged local containers that passed syntax checks, ordered by ref.
func (r *ResolvedResources) LocalContainers() []schemaguard.Container {
	out := make([]schemaguard.Container, 0, len(r.localContainers))
	for _, ref := range r.localContainers {
		if r.quarantine.has(ContainerKey(ref)) {
			continue
		}
		out = append(out, r.containers[ref])
	}
	return out
}

// ExpandedViewProperties resolves a view's properties through its implements
// chain. Later entries of implements override earlier ones and the view's own
// properties override everything inherited. Missing ancestors are returned
// sorted; implements cycles are cut at the first revisit.
func (r *ResolvedResources) ExpandedViewProperties(ref schemaguard.ViewRef) (map[string]schemaguard.ViewProperty, []schemaguard.ViewRef) {
	props := make(map[string]schemaguard.ViewProperty)
	missing := NewSet[schemaguard.ViewRef]()
	visiting := NewSet[schemaguard.ViewRef]()

	var expand func(ref schemaguard.ViewRef)
	expand = func(ref schemaguard.ViewRef) {
		if visiting.Contains(ref) {
			return
		}
		view, ok := r.View(ref)
		if !ok {
			missing.Add(ref)
			return
		}
		visiting.Add(ref)
		for _, parent := range view.Implements {
			expand(parent)
		}
		maps.Copy(props, view.Properties)
		visiting.Remove(ref)
	}
	expand(ref)
	return props, missing.Sorted(schemaguard.CompareViewRefs)
}

// Ancestors returns every view reachable through implements, in discovery order.
func (r *ResolvedResources) Ancestors(ref schemaguard.ViewRef) []schemaguard.ViewRef {
	var out []schemaguard.ViewRef
	seen := NewSet(ref)
	queue := []schemaguard.ViewRef{ref}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		view, ok := r.View(cur)
		if !ok {
			continue
		}
		for _, parent := range view.Implements {
			if seen.Contains(parent) {
				continue
			}
			seen.Add(parent)
			out = append(out, parent)
			queue = append(queue, parent)
		}
	}
	return out
}

// ViewContainers returns the distinct containers mapped by the view's expanded properties.
func (r *ResolvedResources) ViewContainers(ref schemaguard.ViewRef) []schemaguard.ContainerRef {
	props, _ := r.ExpandedViewProperties(ref)
	set := NewSet[schemaguard.ContainerRef]()
	for _, p := range props {
		if p.Container != nil {
			set.Add(*p.Container)
		}
	}
	return set.Sorted(schemaguard.CompareContainerRefs)
}

func mergeContainer(local, remote schemaguard.Container) schemaguard.Container {
	merged := schemaguard.Container{
		Ref:         local.Ref,
		Name:        mergeScalar("container.name", local.Name, remote.Name),
		Description: mergeScalar("container.description", local.Description, remote.Description),
		UsedFor:     mergeScalar("container.usedFor", local.UsedFor, remote.UsedFor),
		Properties:  make(map[string]schemaguard.ContainerProperty, len(local.Properties)+len(remote.Properties)),
		Indexes:     make(map[string]schemaguard.Index, len(local.Indexes)+len(remote.Indexes)),
		Requires:    UnionOrdered(local.Requires, remote.Requires),
	}
	maps.Copy(merged.Properties, remote.Properties)
	maps.Copy(merged.Properties, local.Properties)
	maps.Copy(merged.Indexes, remote.Indexes)
	maps.Copy(merged.Indexes, local.Indexes)
	return merged
}

func mergeView(local, remote schemaguard.View) schemaguard.View {
	merged := schemaguard.View{
		Ref:         local.Ref,
		Name:        mergeScalar("view.name", local.Name, remote.Name),
		Description: mergeScalar("view.description", local.Description, remote.Description),
		Implements:  UnionOrdered(local.Implements, remote.Implements),
		Properties:  make(map[string]schemaguard.ViewProperty, len(local.Properties)+len(remote.Properties)),
	}
	maps.Copy(merged.Properties, remote.Properties)
	maps.Copy(merged.Properties, local.Properties)
	return merged
}

func mergeDataModel(local, remote schemaguard.DataModel) schemaguard.DataModel {
	return schemaguard.DataModel{
		Ref:         local.Ref,
		Name:        mergeScalar("dataModel.name", local.Name, remote.Name),
		Description: mergeScalar("dataModel.description", local.Description, remote.Description),
		Views:       UnionOrdered(local.Views, remote.Views),
	}
}

func cloneContainer(c schemaguard.Container) schemaguard.Container {
	c.Properties = maps.Clone(c.Properties)
	c.Indexes = maps.Clone(c.Indexes)
	c.Requires = UnionOrdered(c.Requires)
	return c
}

func cloneView(v schemaguard.View) schemaguard.View {
	v.Properties = maps.Clone(v.Properties)
	v.Implements = UnionOrdered(v.Implements)
	return v
}

func cloneDataModel(dm schemaguard.DataModel) schemaguard.DataModel {
	dm.Views = UnionOrdered(dm.Views)
	return dm
}

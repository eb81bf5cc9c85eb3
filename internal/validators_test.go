package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/schemaguard"
)

func runValidatorCode(t *testing.T, code string, local, remote *schemaguard.Schema, mode schemaguard.DeploymentMode) []schemaguard.Issue {
	t.Helper()
	reg := AllValidators(schemaguard.DefaultConfig())
	for _, v := range reg.Validators {
		if v.Code() != code {
			continue
		}
		r, err := Resolve(local, remote, mode, nil)
		require.NoError(t, err)
		issues, err := v.Run(r)
		require.NoError(t, err)
		for _, issue := range issues {
			assert.Equal(t, code, issue.Code)
			assert.Equal(t, v.IssueKind(), issue.Kind)
		}
		return issues
	}
	t.Fatalf("no validator registered for %s", code)
	return nil
}

func runLocal(t *testing.T, code string, local *schemaguard.Schema) []schemaguard.Issue {
	t.Helper()
	return runValidatorCode(t, code, local, nil, schemaguard.DeploymentModeAdditive)
}

func runSyntax(t *testing.T, code string, local *schemaguard.Schema) ([]schemaguard.Issue, Quarantine) {
	t.Helper()
	for _, check := range syntaxChecks() {
		if check.Code() == code {
			return check.Check(local)
		}
	}
	t.Fatalf("no syntax check registered for %s", code)
	return nil, nil
}

func container(id string, props map[string]schemaguard.ContainerProperty, requires ...string) schemaguard.Container {
	return schemaguard.Container{Ref: cref(id), Properties: props, Requires: crefs(requires...)}
}

func typed(kind schemaguard.DataTypeKind) schemaguard.ContainerProperty {
	return schemaguard.ContainerProperty{Type: schemaguard.PropertyType{Kind: kind}}
}

func directConn(c schemaguard.ContainerRef, property string, source *schemaguard.ViewRef) schemaguard.ViewProperty {
	return schemaguard.ViewProperty{
		Connection:        schemaguard.ConnectionDirect,
		Container:         &c,
		ContainerProperty: property,
		Source:            source,
	}
}

func reverseConn(source schemaguard.ViewRef, through schemaguard.ViewRef, property string) schemaguard.ViewProperty {
	return schemaguard.ViewProperty{
		Connection: schemaguard.ConnectionReverse,
		Source:     &source,
		Through:    &schemaguard.ViewPropertyRef{View: through, Property: property},
	}
}

func viewOf(ref schemaguard.ViewRef, props map[string]schemaguard.ViewProperty, implements ...schemaguard.ViewRef) schemaguard.View {
	return schemaguard.View{Ref: ref, Name: ref.ExternalID, Description: "d", Implements: implements, Properties: props}
}

func codes(issues []schemaguard.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Code
	}
	return out
}

// ---------------------------------------------------------------------------
// Syntax
// ---------------------------------------------------------------------------

func TestSyntax_InvalidIdentifiers(t *testing.T) {
	local := &schemaguard.Schema{
		Containers: []schemaguard.Container{
			container("bad-id", map[string]schemaguard.ContainerProperty{"name": typed(schemaguard.DataTypeText)}),
			container("Good", map[string]schemaguard.ContainerProperty{"space": typed(schemaguard.DataTypeText)}),
			container("Fine", map[string]schemaguard.ContainerProperty{"name": typed(schemaguard.DataTypeText)}),
		},
		Views: []schemaguard.View{
			viewOf(schemaguard.ViewRef{Space: "1sp", ExternalID: "V", Version: "v1"}, nil),
		},
	}

	issues, quarantine := runSyntax(t, CodeInvalidIdentifier, local)
	assert.Len(t, issues, 3)
	assert.Contains(t, quarantine, ContainerKey(cref("bad-id")))
	assert.Contains(t, quarantine, ContainerKey(cref("Good")))
	assert.Contains(t, quarantine, ViewKey(schemaguard.ViewRef{Space: "1sp", ExternalID: "V", Version: "v1"}))
	assert.NotContains(t, quarantine, ContainerKey(cref("Fine")))
}

func TestSyntax_ReservedSpace(t *testing.T) {
	local := &schemaguard.Schema{Spaces: []schemaguard.Space{{Space: "system"}, {Space: "plant"}}}
	issues, _ := runSyntax(t, CodeInvalidIdentifier, local)
	require.Len(t, issues, 1)
	assert.Equal(t, "system", issues[0].Subject)
}

func TestSyntax_Duplicates(t *testing.T) {
	local := &schemaguard.Schema{
		Containers: []schemaguard.Container{container("A", nil), container("A", nil), container("B", nil)},
		Views:      []schemaguard.View{viewOf(vref("sp", "V"), nil), viewOf(vref("sp", "V"), nil), viewOf(vref("sp", "V"), nil)},
	}
	issues, quarantine := runSyntax(t, CodeDuplicateDefinition, local)
	require.Len(t, issues, 2)
	assert.Equal(t, "sp:A", issues[0].Subject)
	assert.Contains(t, issues[1].Message, "3 times")
	assert.Empty(t, quarantine)
}

func TestSyntax_MalformedProperties(t *testing.T) {
	size := 10
	local := &schemaguard.Schema{
		Containers: []schemaguard.Container{
			container("A", map[string]schemaguard.ContainerProperty{
				"kind":   typed(schemaguard.DataTypeEnum),
				"weird":  typed("decimal"),
				"single": {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeText}, MaxListSize: &size},
			}),
			container("B", map[string]schemaguard.ContainerProperty{"ok": typed(schemaguard.DataTypeText)}),
		},
		Views: []schemaguard.View{
			viewOf(vref("sp", "V"), map[string]schemaguard.ViewProperty{
				"unmapped": {},
				"reverse":  {Connection: schemaguard.ConnectionReverse},
				"edge":     {Connection: schemaguard.ConnectionEdge},
			}),
		},
	}
	issues, quarantine := runSyntax(t, CodeMalformedProperty, local)
	assert.Len(t, issues, 6)
	assert.Contains(t, quarantine, ContainerKey(cref("A")))
	assert.NotContains(t, quarantine, ContainerKey(cref("B")))
	assert.Contains(t, quarantine, ViewKey(vref("sp", "V")))
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

func TestConnections_ValueType(t *testing.T) {
	link := cref("Link")
	ghost := vref("sp", "Ghost")
	local := &schemaguard.Schema{
		Containers: []schemaguard.Container{container("Link", map[string]schemaguard.ContainerProperty{
			"to": typed(schemaguard.DataTypeDirect),
		})},
		Views: []schemaguard.View{viewOf(vref("sp", "V"), map[string]schemaguard.ViewProperty{
			"dangling": directConn(link, "to", &ghost),
			"untyped":  directConn(link, "to", nil),
		})},
	}

	undefined := runLocal(t, CodeValueTypeUndefined, local)
	require.Len(t, undefined, 1)
	assert.Equal(t, "sp:V(version=v1).dangling", undefined[0].Subject)

	unset := runLocal(t, CodeValueTypeUnset, local)
	require.Len(t, unset, 1)
	assert.Equal(t, "sp:V(version=v1).untyped", unset[0].Subject)
}

// reverseFixture builds Child (implements Parent) with a reverse connection
// through Equipment.asset, a direct connection pointing at target.
func reverseFixture(target *schemaguard.ViewRef, storedAs schemaguard.DataTypeKind) *schemaguard.Schema {
	parent, child, equipment := vref("sp", "Parent"), vref("sp", "Child"), vref("sp", "Equipment")
	eq := cref("Equipment")
	return &schemaguard.Schema{
		Containers: []schemaguard.Container{
			container("Equipment", map[string]schemaguard.ContainerProperty{"asset": typed(storedAs)}),
			container("Asset", map[string]schemaguard.ContainerProperty{"name": typed(schemaguard.DataTypeText)}),
		},
		Views: []schemaguard.View{
			viewOf(parent, map[string]schemaguard.ViewProperty{"name": coreProp(cref("Asset"), "name")}),
			viewOf(child, map[string]schemaguard.ViewProperty{"equipment": reverseConn(equipment, equipment, "asset")}, parent),
			viewOf(equipment, map[string]schemaguard.ViewProperty{"asset": directConn(eq, "asset", target)}),
			viewOf(vref("sp", "Other"), map[string]schemaguard.ViewProperty{"name": coreProp(cref("Asset"), "name")}),
		},
	}
}

var reverseCodes = []string{
	CodeReverseSourceMissing, CodeReverseThroughMissing, CodeReverseThroughNotDirect,
	CodeReverseContainerNotDirect, CodeReverseTargetsAncestor, CodeReverseTargetMismatch,
	CodeReverseTargetUnset,
}

func runReverse(t *testing.T, local *schemaguard.Schema) []schemaguard.Issue {
	var all []schemaguard.Issue
	for _, code := range reverseCodes {
		all = append(all, runLocal(t, code, local)...)
	}
	return all
}

func TestReverse_PointsAtAncestor(t *testing.T) {
	parent := vref("sp", "Parent")
	issues := runReverse(t, reverseFixture(&parent, schemaguard.DataTypeDirect))

	require.Len(t, issues, 1)
	assert.Equal(t, CodeReverseTargetsAncestor, issues[0].Code)
	assert.Equal(t, schemaguard.IssueKindRecommendation, issues[0].Kind)
	assert.Equal(t, "sp:Child(version=v1).equipment", issues[0].Subject)
}

func TestReverse_PointsAtOwner(t *testing.T) {
	child := vref("sp", "Child")
	assert.Empty(t, runReverse(t, reverseFixture(&child, schemaguard.DataTypeDirect)))
}

func TestReverse_PointsElsewhere(t *testing.T) {
	other := vref("sp", "Other")
	issues := runReverse(t, reverseFixture(&other, schemaguard.DataTypeDirect))
	require.Len(t, issues, 1)
	assert.Equal(t, CodeReverseTargetMismatch, issues[0].Code)
	assert.Equal(t, schemaguard.IssueKindConsistency, issues[0].Kind)
}

func TestReverse_DirectWithoutValueType(t *testing.T) {
	issues := runReverse(t, reverseFixture(nil, schemaguard.DataTypeDirect))
	assert.Equal(t, []string{CodeReverseTargetUnset}, codes(issues))
}

func TestReverse_StoredAsText(t *testing.T) {
	child := vref("sp", "Child")
	issues := runReverse(t, reverseFixture(&child, schemaguard.DataTypeText))
	assert.Equal(t, []string{CodeReverseContainerNotDirect}, codes(issues))
}

func TestReverse_BrokenThrough(t *testing.T) {
	owner := vref("sp", "Owner")
	target := vref("sp", "Target")
	ghost := vref("sp", "Ghost")
	local := &schemaguard.Schema{
		Containers: []schemaguard.Container{container("C", map[string]schemaguard.ContainerProperty{"name": typed(schemaguard.DataTypeText)})},
		Views: []schemaguard.View{
			viewOf(owner, map[string]schemaguard.ViewProperty{
				"missingView":     reverseConn(target, ghost, "x"),
				"missingProperty": reverseConn(target, target, "nope"),
				"notDirect":       reverseConn(target, target, "name"),
			}),
			viewOf(target, map[string]schemaguard.ViewProperty{"name": coreProp(cref("C"), "name")}),
		},
	}
	issues := runReverse(t, local)
	assert.ElementsMatch(t, []string{CodeReverseSourceMissing, CodeReverseThroughMissing, CodeReverseThroughNotDirect}, codes(issues))
}

func TestReverse_InheritedDirect(t *testing.T) {
	// The through view inherits the direct connection from its parent.
	child := vref("sp", "Child")
	local := reverseFixture(&child, schemaguard.DataTypeDirect)
	base := vref("sp", "EquipmentBase")
	for i, v := range local.Views {
		if v.Ref.ExternalID == "Equipment" {
			local.Views[i].Implements = []schemaguard.ViewRef{base}
			local.Views = append(local.Views, viewOf(base, v.Properties))
			local.Views[i].Properties = map[string]schemaguard.ViewProperty{"name": coreProp(cref("Asset"), "name")}
			break
		}
	}
	assert.Empty(t, runReverse(t, local))
}

// ---------------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------------

func TestContainers_Mapping(t *testing.T) {
	asset := cref("Asset")
	ghost := cref("Ghost")
	local := &schemaguard.Schema{
		Containers: []schemaguard.Container{container("Asset", map[string]schemaguard.ContainerProperty{
			"name":   typed(schemaguard.DataTypeText),
			"parent": typed(schemaguard.DataTypeText),
		})},
		Views: []schemaguard.View{viewOf(vref("sp", "V"), map[string]schemaguard.ViewProperty{
			"name":   coreProp(asset, "name"),
			"a":      coreProp(ghost, "a"),
			"b":      coreProp(ghost, "b"),
			"title":  coreProp(asset, "title"),
			"parent": directConn(asset, "parent", nil),
		})},
	}

	missing := runLocal(t, CodeContainerMissing, local)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "a, b")

	props := runLocal(t, CodeContainerPropertyMissing, local)
	require.Len(t, props, 1)
	assert.Equal(t, "sp:V(version=v1).title", props[0].Subject)

	direct := runLocal(t, CodeDirectTypeMismatch, local)
	require.Len(t, direct, 1)
	assert.Equal(t, "sp:V(version=v1).parent", direct[0].Subject)
}

func TestContainers_RequiresCycles(t *testing.T) {
	local := &schemaguard.Schema{Containers: []schemaguard.Container{
		container("A", nil, "B"),
		container("B", nil, "C"),
		container("C", nil, "A"),
		container("D", nil, "E"),
		container("E", nil, "D"),
		container("F", nil, "A"),
	}}
	issues := runLocal(t, CodeRequiresCycle, local)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "sp:A -> sp:B -> sp:C -> sp:A")
	assert.Contains(t, issues[1].Message, "sp:D -> sp:E -> sp:D")
}

func TestContainers_OverlappingRequiresCycles(t *testing.T) {
	local := &schemaguard.Schema{Containers: []schemaguard.Container{
		container("A", nil, "B", "C"),
		container("B", nil, "C"),
		container("C", nil, "A"),
	}}
	issues := runLocal(t, CodeRequiresCycle, local)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "sp:A -> sp:B -> sp:C -> sp:A")
	assert.Contains(t, issues[1].Message, "sp:A -> sp:C -> sp:A")
}

func TestContainers_RequiresTargetsAndIndexes(t *testing.T) {
	local := &schemaguard.Schema{Containers: []schemaguard.Container{{
		Ref:        cref("A"),
		Properties: map[string]schemaguard.ContainerProperty{"name": typed(schemaguard.DataTypeText)},
		Indexes: map[string]schemaguard.Index{
			"byName": {Kind: schemaguard.IndexKindBTree, Properties: []string{"name"}},
			"byCode": {Kind: schemaguard.IndexKindBTree, Properties: []string{"code"}},
		},
		Requires: crefs("Missing"),
	}}}

	requires := runLocal(t, CodeRequiresMissing, local)
	require.Len(t, requires, 1)
	assert.Contains(t, requires[0].Message, "sp:Missing")

	indexes := runLocal(t, CodeIndexPropertyMissing, local)
	require.Len(t, indexes, 1)
	assert.Equal(t, "sp:A.byCode", indexes[0].Subject)
}

func TestContainers_RebuildDoesNotSeeRemoteInLocalSpace(t *testing.T) {
	local := &schemaguard.Schema{Views: []schemaguard.View{
		viewOf(vref("sp", "V"), map[string]schemaguard.ViewProperty{"name": coreProp(cref("Old"), "name")}),
	}}
	remote := &schemaguard.Schema{Containers: []schemaguard.Container{
		container("Old", map[string]schemaguard.ContainerProperty{"name": typed(schemaguard.DataTypeText)}),
	}}

	assert.Empty(t, runValidatorCode(t, CodeContainerMissing, local, remote, schemaguard.DeploymentModeAdditive))
	assert.Len(t, runValidatorCode(t, CodeContainerMissing, local, remote, schemaguard.DeploymentModeRebuild), 1)
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func TestViews_Implements(t *testing.T) {
	c := cref("C")
	local := &schemaguard.Schema{Views: []schemaguard.View{
		viewOf(vref("sp", "A"), map[string]schemaguard.ViewProperty{"a": coreProp(c, "a")}, vref("sp", "B")),
		viewOf(vref("sp", "B"), nil, vref("sp", "A")),
		viewOf(vref("sp", "Orphan"), nil, vref("sp", "Ghost")),
		viewOf(vref("sp", "Empty"), nil),
	}}

	missing := runLocal(t, CodeImplementsMissing, local)
	require.Len(t, missing, 1)
	assert.Equal(t, "sp:Orphan(version=v1)", missing[0].Subject)

	empty := runLocal(t, CodeViewEmpty, local)
	require.Len(t, empty, 1)
	assert.Equal(t, "sp:Empty(version=v1)", empty[0].Subject)

	cycles := runLocal(t, CodeImplementsCycle, local)
	require.Len(t, cycles, 1)
	assert.Contains(t, cycles[0].Message, "sp:A(version=v1) -> sp:B(version=v1) -> sp:A(version=v1)")
}

func TestViews_DataModelViewRemovedByRebuild(t *testing.T) {
	props := map[string]schemaguard.ViewProperty{"p": coreProp(cref("C"), "p")}
	deployed := viewOf(vref("sp", "Deployed"), props)
	local := &schemaguard.Schema{
		DataModel: &schemaguard.DataModel{
			Ref:   schemaguard.DataModelRef{Space: "sp", ExternalID: "M", Version: "v1"},
			Views: []schemaguard.ViewRef{deployed.Ref},
		},
	}
	remote := &schemaguard.Schema{Views: []schemaguard.View{deployed}}

	assert.Empty(t, runValidatorCode(t, CodeDataModelViewGone, local, remote, schemaguard.DeploymentModeAdditive))

	gone := runValidatorCode(t, CodeDataModelViewGone, local, remote, schemaguard.DeploymentModeRebuild)
	require.Len(t, gone, 1)
	assert.Equal(t, "sp:M(version=v1)", gone[0].Subject)
	assert.Contains(t, gone[0].Message, deployed.Ref.String())

	assert.Empty(t, runValidatorCode(t, CodeViewVersionMismatch, local, remote, schemaguard.DeploymentModeRebuild))
}

// ---------------------------------------------------------------------------
// Consistency
// ---------------------------------------------------------------------------

func TestConsistency_SpaceAndVersion(t *testing.T) {
	c := cref("C")
	props := map[string]schemaguard.ViewProperty{"p": coreProp(c, "p")}
	wrongVersion := schemaguard.ViewRef{Space: "sp", ExternalID: "A", Version: "v2"}
	foreign := vref("other", "B")
	shared := vref("cdf_cdm", "CogniteAsset")
	local := &schemaguard.Schema{
		DataModel: &schemaguard.DataModel{
			Ref:   schemaguard.DataModelRef{Space: "sp", ExternalID: "M", Version: "v1"},
			Views: []schemaguard.ViewRef{wrongVersion, foreign, shared},
		},
		Views: []schemaguard.View{viewOf(wrongVersion, props), viewOf(foreign, props)},
	}
	remote := &schemaguard.Schema{Views: []schemaguard.View{viewOf(shared, props)}}

	spaces := runValidatorCode(t, CodeViewSpaceMismatch, local, remote, schemaguard.DeploymentModeAdditive)
	require.Len(t, spaces, 1)
	assert.Equal(t, foreign.String(), spaces[0].Subject)

	versions := runValidatorCode(t, CodeViewVersionMismatch, local, remote, schemaguard.DeploymentModeAdditive)
	require.Len(t, versions, 1)
	assert.Equal(t, wrongVersion.String(), versions[0].Subject)
}

// ---------------------------------------------------------------------------
// Limits
// ---------------------------------------------------------------------------

func TestLimits_ViewProperties(t *testing.T) {
	big := cref("Big")
	build := func(n int) *schemaguard.Schema {
		props := make(map[string]schemaguard.ViewProperty, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("p%d", i)
			props[id] = coreProp(big, id)
		}
		return &schemaguard.Schema{Views: []schemaguard.View{viewOf(vref("sp", "Wide"), props)}}
	}

	assert.Empty(t, runLocal(t, CodeLimitViewProperties, build(300)))

	issues := runLocal(t, CodeLimitViewProperties, build(301))
	require.Len(t, issues, 1)
	assert.Equal(t, schemaguard.IssueKindConsistency, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "301")
	assert.Contains(t, issues[0].Message, "300")
}

func TestLimits_ContainerCounts(t *testing.T) {
	props := make(map[string]schemaguard.ContainerProperty)
	for i := 0; i < 101; i++ {
		props[fmt.Sprintf("p%d", i)] = typed(schemaguard.DataTypeText)
	}
	indexes := make(map[string]schemaguard.Index)
	for i := 0; i < 11; i++ {
		indexes[fmt.Sprintf("i%d", i)] = schemaguard.Index{Kind: schemaguard.IndexKindBTree, Properties: []string{"p0"}}
	}
	values := make([]schemaguard.EnumValue, 33)
	for i := range values {
		values[i] = schemaguard.EnumValue{Key: fmt.Sprintf("v%d", i), Name: "n"}
	}
	props["p0"] = schemaguard.ContainerProperty{Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeEnum, Values: values}}

	local := &schemaguard.Schema{Containers: []schemaguard.Container{{Ref: cref("Huge"), Properties: props, Indexes: indexes}}}

	assert.Len(t, runLocal(t, CodeLimitContainerProps, local), 1)
	assert.Len(t, runLocal(t, CodeLimitContainerIndexes, local), 1)
	enum := runLocal(t, CodeLimitEnumValues, local)
	require.Len(t, enum, 1)
	assert.Equal(t, "sp:Huge.p0", enum[0].Subject)
}

func TestLimits_ViewCounts(t *testing.T) {
	implements := make([]schemaguard.ViewRef, 11)
	props := make(map[string]schemaguard.ViewProperty)
	for i := range implements {
		implements[i] = vref("sp", fmt.Sprintf("Base%d", i))
		c := cref(fmt.Sprintf("C%d", i))
		props[fmt.Sprintf("p%d", i)] = coreProp(c, "p")
	}
	local := &schemaguard.Schema{
		DataModel: &schemaguard.DataModel{
			Ref:   schemaguard.DataModelRef{Space: "sp", ExternalID: "M", Version: "v1"},
			Views: []schemaguard.ViewRef{vref("sp", "Wide")},
		},
		Views: []schemaguard.View{viewOf(vref("sp", "Wide"), props, implements...)},
	}
	assert.Len(t, runLocal(t, CodeLimitViewImplements, local), 1)
	assert.Len(t, runLocal(t, CodeLimitViewContainers, local), 1)
	assert.Empty(t, runLocal(t, CodeLimitDataModelViews, local))
}

func TestListSizeCeiling(t *testing.T) {
	limits := schemaguard.DefaultLimits()
	btree := []schemaguard.IndexKind{schemaguard.IndexKindBTree}
	inverted := []schemaguard.IndexKind{schemaguard.IndexKindInverted}

	tests := []struct {
		name    string
		kind    schemaguard.DataTypeKind
		indexes []schemaguard.IndexKind
		want    int
		limited bool
	}{
		{"enum is exempt", schemaguard.DataTypeEnum, btree, 0, false},
		{"direct with btree", schemaguard.DataTypeDirect, btree, 100, true},
		{"direct without index", schemaguard.DataTypeDirect, nil, 1000, true},
		{"int32 with btree", schemaguard.DataTypeInt32, btree, 600, true},
		{"int64 with btree", schemaguard.DataTypeInt64, btree, 300, true},
		{"int64 with inverted index", schemaguard.DataTypeInt64, inverted, 2000, true},
		{"text", schemaguard.DataTypeText, btree, 2000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, limited := ListSizeCeiling(limits, tt.kind, tt.indexes)
			assert.Equal(t, tt.limited, limited)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimits_ListSize(t *testing.T) {
	size := func(n int) *int { return &n }
	local := &schemaguard.Schema{Containers: []schemaguard.Container{{
		Ref: cref("L"),
		Properties: map[string]schemaguard.ContainerProperty{
			"ints":      {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeInt64}, IsList: true},
			"okInts":    {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeInt64}, IsList: true, MaxListSize: size(300)},
			"links":     {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeDirect}, IsList: true, MaxListSize: size(1001)},
			"texts":     {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeText}, IsList: true, MaxListSize: size(2000)},
			"longTexts": {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeText}, IsList: true, MaxListSize: size(2001)},
			"enums": {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeEnum,
				Values: []schemaguard.EnumValue{{Key: "a"}}}, IsList: true, MaxListSize: size(5000)},
		},
		Indexes: map[string]schemaguard.Index{
			"ints":   {Kind: schemaguard.IndexKindBTree, Properties: []string{"ints"}},
			"okInts": {Kind: schemaguard.IndexKindBTree, Properties: []string{"okInts"}},
		},
	}}}

	issues := runLocal(t, CodeLimitListSize, local)
	subjects := make([]string, len(issues))
	for i, issue := range issues {
		subjects[i] = issue.Subject
	}
	assert.Equal(t, []string{"sp:L.ints", "sp:L.links", "sp:L.longTexts"}, subjects)
	assert.Contains(t, issues[0].Message, "default size 1000")
}

// ---------------------------------------------------------------------------
// Performance
// ---------------------------------------------------------------------------

func performanceFixture(containers []schemaguard.Container) *schemaguard.Schema {
	props := make(map[string]schemaguard.ViewProperty)
	for _, c := range containers {
		props["p"+c.Ref.ExternalID] = coreProp(c.Ref, "p")
	}
	return &schemaguard.Schema{
		Containers: containers,
		Views:      []schemaguard.View{viewOf(vref("sp", "V"), props)},
	}
}

func TestPerformance_TwoUnconnectedContainers(t *testing.T) {
	issues := runLocal(t, CodeMissingRequiresHierarchy, performanceFixture([]schemaguard.Container{
		container("A", nil), container("B", nil),
	}))
	require.Len(t, issues, 1)
	assert.Equal(t, schemaguard.IssueKindRecommendation, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "sp:A")
	assert.Contains(t, issues[0].Message, "sp:B")
	assert.Equal(t, "Add sp:B to the requires of sp:A.", issues[0].Fix)
}

func TestPerformance_FullHierarchy(t *testing.T) {
	assert.Empty(t, runLocal(t, CodeMissingRequiresHierarchy, performanceFixture([]schemaguard.Container{
		container("A", nil, "B"), container("B", nil, "C"), container("C", nil),
	})))
	assert.Empty(t, runLocal(t, CodeMissingRequiresHierarchy, performanceFixture([]schemaguard.Container{
		container("Only", nil),
	})))
}

func TestPerformance_BridgeThroughChain(t *testing.T) {
	issues := runLocal(t, CodeMissingRequiresHierarchy, performanceFixture([]schemaguard.Container{
		container("O", nil, "M"), container("M", nil, "L"), container("L", nil), container("T", nil, "L"),
	}))
	require.Len(t, issues, 1)
	assert.Equal(t, "Add sp:T to the requires of sp:M.", issues[0].Fix)
}

func TestPerformance_NoCandidate(t *testing.T) {
	issues := runLocal(t, CodeMissingRequiresHierarchy, performanceFixture([]schemaguard.Container{
		container("A", nil), container("B", nil), container("C", nil),
	}))
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "sp:A, sp:B, sp:C")
}

func TestPerformance_MinimalRecommendations(t *testing.T) {
	// X requires Y, so only X needs to be attached to the outermost container.
	issues := runLocal(t, CodeMissingRequiresHierarchy, performanceFixture([]schemaguard.Container{
		container("A", nil, "B"), container("B", nil), container("X", nil, "Y"), container("Y", nil),
	}))
	require.Len(t, issues, 1)
	assert.Equal(t, "Add sp:X to the requires of sp:A.", issues[0].Fix)
}

// ---------------------------------------------------------------------------
// Documentation
// ---------------------------------------------------------------------------

func TestDocumentation(t *testing.T) {
	c := cref("C")
	local := &schemaguard.Schema{
		DataModel: &schemaguard.DataModel{
			Ref:   schemaguard.DataModelRef{Space: "sp", ExternalID: "M", Version: "v1"},
			Views: []schemaguard.ViewRef{vref("sp", "Bare")},
		},
		Containers: []schemaguard.Container{container("C", map[string]schemaguard.ContainerProperty{
			"status": {Type: schemaguard.PropertyType{Kind: schemaguard.DataTypeEnum, Values: []schemaguard.EnumValue{
				{Key: "open", Name: "Open"},
				{Key: "closed"},
			}}},
		})},
		Views: []schemaguard.View{{Ref: vref("sp", "Bare"), Properties: map[string]schemaguard.ViewProperty{"status": coreProp(c, "status")}}},
	}

	for _, code := range []string{CodeDataModelName, CodeDataModelDescription, CodeViewName, CodeViewDescription} {
		assert.Len(t, runLocal(t, code, local), 1, code)
	}
	enum := runLocal(t, CodeEnumValueUndocumented, local)
	require.Len(t, enum, 1)
	assert.Contains(t, enum[0].Message, `"closed"`)
}

func TestDocumentation_SkipsRemoteViews(t *testing.T) {
	remote := &schemaguard.Schema{Views: []schemaguard.View{{Ref: vref("cdf_cdm", "Undocumented")}}}
	assert.Empty(t, runValidatorCode(t, CodeViewName, &schemaguard.Schema{}, remote, schemaguard.DeploymentModeAdditive))
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry_CodesAreUnique(t *testing.T) {
	reg := AllValidators(schemaguard.DefaultConfig())
	require.NoError(t, CheckRegistry(reg))

	infos := reg.Infos(nil)
	seen := make(map[string]bool)
	for _, info := range infos {
		assert.False(t, seen[info.Code], info.Code)
		seen[info.Code] = true
	}
	assert.True(t, seen[CodeDocumentSchema])
}

func TestRegistry_DuplicateIsDefect(t *testing.T) {
	reg := AllValidators(schemaguard.DefaultConfig())
	reg.Validators = append(reg.Validators, &rule{code: CodeViewEmpty, kind: schemaguard.IssueKindConsistency})

	err := CheckRegistry(reg)
	require.Error(t, err)
	assert.True(t, schemaguard.IsDefect(err))
	assert.Contains(t, err.Error(), CodeViewEmpty)
}

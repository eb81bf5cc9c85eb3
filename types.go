package schemaguard

import (
	"cmp"
	"slices"
	"strings"
)

// DeploymentMode controls how the local draft is combined with the deployed schema.
type DeploymentMode string

const (
	// DeploymentModeAdditive merges the local draft on top of the deployed resources.
	DeploymentModeAdditive DeploymentMode = "additive"
	// DeploymentModeRebuild treats the local draft as the complete final state.
	DeploymentModeRebuild DeploymentMode = "rebuild"
)

// ParseDeploymentMode converts a user supplied string into a DeploymentMode.
func ParseDeploymentMode(s string) (DeploymentMode, bool) {
	switch DeploymentMode(strings.ToLower(strings.TrimSpace(s))) {
	case DeploymentModeAdditive:
		return DeploymentModeAdditive, true
	case DeploymentModeRebuild:
		return DeploymentModeRebuild, true
	default:
		return "", false
	}
}

// ContainerRef identifies a container.
type ContainerRef struct {
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
}

func (r ContainerRef) String() string {
	return r.Space + ":" + r.ExternalID
}

// ViewRef identifies a view.
type ViewRef struct {
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
	Version    string `json:"version"`
}

func (r ViewRef) String() string {
	return r.Space + ":" + r.ExternalID + "(version=" + r.Version + ")"
}

// DataModelRef identifies a data model.
type DataModelRef struct {
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
	Version    string `json:"version"`
}

func (r DataModelRef) String() string {
	return r.Space + ":" + r.ExternalID + "(version=" + r.Version + ")"
}

// ViewPropertyRef points at a single property of a view.
type ViewPropertyRef struct {
	View     ViewRef `json:"source"`
	Property string  `json:"identifier"`
}

func (r ViewPropertyRef) String() string {
	return r.View.String() + "." + r.Property
}

// NodeRef identifies an instance node, used as the type of edges.
type NodeRef struct {
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
}

func (r NodeRef) String() string {
	return r.Space + ":" + r.ExternalID
}

// CompareContainerRefs orders container refs by their canonical string form.
func CompareContainerRefs(a, b ContainerRef) int {
	return cmp.Compare(a.String(), b.String())
}

// CompareViewRefs orders view refs by their canonical string form.
func CompareViewRefs(a, b ViewRef) int {
	return cmp.Compare(a.String(), b.String())
}

// Space is a namespace for containers, views and data models.
type Space struct {
	Space       string `json:"space"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// DataTypeKind enumerates the container property data types.
type DataTypeKind string

const (
	DataTypeText       DataTypeKind = "text"
	DataTypeFloat32    DataTypeKind = "float32"
	DataTypeFloat64    DataTypeKind = "float64"
	DataTypeBoolean    DataTypeKind = "boolean"
	DataTypeInt32      DataTypeKind = "int32"
	DataTypeInt64      DataTypeKind = "int64"
	DataTypeTimestamp  DataTypeKind = "timestamp"
	DataTypeDate       DataTypeKind = "date"
	DataTypeJSON       DataTypeKind = "json"
	DataTypeTimeseries DataTypeKind = "timeseries"
	DataTypeFile       DataTypeKind = "file"
	DataTypeSequence   DataTypeKind = "sequence"
	DataTypeDirect     DataTypeKind = "direct"
	DataTypeEnum       DataTypeKind = "enum"
)

// Valid reports whether k is a known data type.
func (k DataTypeKind) Valid() bool {
	switch k {
	case DataTypeText, DataTypeFloat32, DataTypeFloat64, DataTypeBoolean, DataTypeInt32,
		DataTypeInt64, DataTypeTimestamp, DataTypeDate, DataTypeJSON, DataTypeTimeseries,
		DataTypeFile, DataTypeSequence, DataTypeDirect, DataTypeEnum:
		return true
	default:
		return false
	}
}

// EnumValue is one allowed value of an enum typed property.
type EnumValue struct {
	Key         string `json:"key"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// PropertyType is the data type of a container property.
// Container is an optional target hint for direct relations.
// Values and UnknownValue are only meaningful for enums.
type PropertyType struct {
	Kind         DataTypeKind  `json:"type"`
	Container    *ContainerRef `json:"container,omitempty"`
	Values       []EnumValue   `json:"values,omitempty"`
	UnknownValue string        `json:"unknownValue,omitempty"`
}

// ContainerProperty defines a stored property.
type ContainerProperty struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        PropertyType `json:"type"`
	Nullable    bool         `json:"nullable"`
	IsList      bool         `json:"list,omitempty"`
	MaxListSize *int         `json:"maxListSize,omitempty"`
}

// IndexKind enumerates container index kinds.
type IndexKind string

const (
	IndexKindBTree    IndexKind = "btree"
	IndexKindInverted IndexKind = "inverted"
)

// Index is a container index over one or more properties.
type Index struct {
	Kind       IndexKind `json:"indexType"`
	Properties []string  `json:"properties"`
	Cursorable bool      `json:"cursorable,omitempty"`
}

// Container is the storage level unit of the schema.
type Container struct {
	Ref         ContainerRef                 `json:"ref"`
	Name        string                       `json:"name,omitempty"`
	Description string                       `json:"description,omitempty"`
	UsedFor     string                       `json:"usedFor,omitempty"`
	Properties  map[string]ContainerProperty `json:"properties"`
	Indexes     map[string]Index             `json:"indexes,omitempty"`
	Requires    []ContainerRef               `json:"requires,omitempty"`
}

// IndexesOn returns the index kinds that cover the given property.
func (c Container) IndexesOn(property string) []IndexKind {
	var kinds []IndexKind
	for _, id := range sortedKeys(c.Indexes) {
		idx := c.Indexes[id]
		for _, p := range idx.Properties {
			if p == property {
				kinds = append(kinds, idx.Kind)
				break
			}
		}
	}
	return kinds
}

// ConnectionKind distinguishes the connection flavours of a view property.
// The zero value marks a plain core property.
type ConnectionKind string

const (
	ConnectionNone    ConnectionKind = ""
	ConnectionDirect  ConnectionKind = "direct"
	ConnectionReverse ConnectionKind = "reverse"
	ConnectionEdge    ConnectionKind = "edge"
)

// EdgeDirection is the traversal direction of an edge connection.
type EdgeDirection string

const (
	EdgeOutwards EdgeDirection = "outwards"
	EdgeInwards  EdgeDirection = "inwards"
)

// ViewProperty is either a core property mapped to a container property or a
// connection to other views.
type ViewProperty struct {
	Name              string           `json:"name,omitempty"`
	Description       string           `json:"description,omitempty"`
	Connection        ConnectionKind   `json:"connectionType,omitempty"`
	Container         *ContainerRef    `json:"container,omitempty"`
	ContainerProperty string           `json:"containerPropertyIdentifier,omitempty"`
	Source            *ViewRef         `json:"source,omitempty"`
	Through           *ViewPropertyRef `json:"through,omitempty"`
	EdgeType          *NodeRef         `json:"edgeType,omitempty"`
	Direction         EdgeDirection    `json:"direction,omitempty"`
}

// IsConnection reports whether the property connects to other views.
func (p ViewProperty) IsConnection() bool {
	return p.Connection != ConnectionNone
}

// MapsToContainer reports whether the property is stored in a container.
func (p ViewProperty) MapsToContainer() bool {
	return p.Container != nil
}

// View is the query level unit of the schema.
type View struct {
	Ref         ViewRef                 `json:"ref"`
	Name        string                  `json:"name,omitempty"`
	Description string                  `json:"description,omitempty"`
	Implements  []ViewRef               `json:"implements,omitempty"`
	Properties  map[string]ViewProperty `json:"properties"`
}

// DataModel is a named, versioned collection of views.
type DataModel struct {
	Ref         DataModelRef `json:"ref"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Views       []ViewRef    `json:"views"`
}

// Schema is a complete set of schema resources. It is used both for the local
// draft and for the snapshot of what is deployed remotely.
type Schema struct {
	Spaces     []Space     `json:"spaces,omitempty"`
	DataModel  *DataModel  `json:"dataModel,omitempty"`
	Containers []Container `json:"containers,omitempty"`
	Views      []View      `json:"views,omitempty"`
}

// SpaceSet returns every space the schema defines or places resources in.
func (s *Schema) SpaceSet() map[string]struct{} {
	out := make(map[string]struct{})
	if s == nil {
		return out
	}
	for _, sp := range s.Spaces {
		out[sp.Space] = struct{}{}
	}
	if s.DataModel != nil {
		out[s.DataModel.Ref.Space] = struct{}{}
	}
	for _, c := range s.Containers {
		out[c.Ref.Space] = struct{}{}
	}
	for _, v := range s.Views {
		out[v.Ref.Space] = struct{}{}
	}
	return out
}

// IsEmpty reports whether the schema holds no resources.
func (s *Schema) IsEmpty() bool {
	return s == nil || (len(s.Spaces) == 0 && s.DataModel == nil && len(s.Containers) == 0 && len(s.Views) == 0)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

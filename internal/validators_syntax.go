package internal

import (
	"regexp"

	"github.com/lychee-technology/schemaguard"
)

var (
	spacePattern      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,41}[a-zA-Z0-9]?$`)
	externalIDPattern = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9_]{0,253}[a-zA-Z0-9])?$`)
	versionPattern    = regexp.MustCompile(`^[a-zA-Z0-9]([.a-zA-Z0-9_-]{0,41}[a-zA-Z0-9])?$`)
	propertyPattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,253}[a-zA-Z0-9]?$`)

	reservedSpaces = NewSet("space", "cdf", "dms", "pg3", "shared", "system", "node", "edge")

	reservedPropertyIDs = NewSet("space", "externalId", "createdTime", "lastUpdatedTime",
		"deletedTime", "edge_id", "node_id", "project_id", "property_group", "seq",
		"tg_table_name", "extensions")
)

func syntaxChecks() []SyntaxCheck {
	return []SyntaxCheck{
		&syntaxRule{
			code:    CodeInvalidIdentifier,
			summary: "identifiers must match the platform naming rules",
			check:   checkIdentifiers,
		},
		&syntaxRule{
			code:    CodeDuplicateDefinition,
			summary: "a resource may only be defined once in the local draft",
			check:   checkDuplicates,
		},
		&syntaxRule{
			code:    CodeMalformedProperty,
			summary: "properties must carry the fields their kind requires",
			check:   checkPropertyShapes,
		},
	}
}

// identifierChecker reports invalid identifiers and quarantines their owner.
type identifierChecker struct {
	out        *issueSink
	quarantine Quarantine
	owner      string
	subject    string
}

const identifierFix = "Rename the identifier so that it matches the allowed pattern."

func (c *identifierChecker) space(what, value string) {
	switch {
	case !spacePattern.MatchString(value):
		c.fail("%s %q is not a valid space identifier", what, value)
	case reservedSpaces.Contains(value):
		c.fail("%s %q is a reserved space", what, value)
	}
}

func (c *identifierChecker) externalID(what, value string) {
	if !externalIDPattern.MatchString(value) {
		c.fail("%s %q is not a valid external id", what, value)
	}
}

func (c *identifierChecker) version(what, value string) {
	if !versionPattern.MatchString(value) {
		c.fail("%s %q is not a valid version", what, value)
	}
}

func (c *identifierChecker) property(value string) {
	switch {
	case !propertyPattern.MatchString(value):
		c.fail("property identifier %q is not valid", value)
	case reservedPropertyIDs.Contains(value):
		c.fail("property identifier %q is reserved", value)
	}
}

func (c *identifierChecker) containerRef(what string, ref schemaguard.ContainerRef) {
	c.space(what+" space", ref.Space)
	c.externalID(what+" external id", ref.ExternalID)
}

func (c *identifierChecker) viewRef(what string, ref schemaguard.ViewRef) {
	c.space(what+" space", ref.Space)
	c.externalID(what+" external id", ref.ExternalID)
	c.version(what+" version", ref.Version)
}

func (c *identifierChecker) fail(format string, args ...any) {
	c.out.add(c.subject, identifierFix, format, args...)
	c.quarantine[c.owner] = struct{}{}
}

func checkIdentifiers(local *schemaguard.Schema, out *issueSink, quarantine Quarantine) {
	for _, sp := range local.Spaces {
		c := &identifierChecker{out: out, quarantine: quarantine, owner: "space:" + sp.Space, subject: sp.Space}
		c.space("space", sp.Space)
	}

	if dm := local.DataModel; dm != nil {
		c := &identifierChecker{out: out, quarantine: quarantine, owner: DataModelKey(dm.Ref), subject: dm.Ref.String()}
		c.space("data model space", dm.Ref.Space)
		c.externalID("data model external id", dm.Ref.ExternalID)
		c.version("data model version", dm.Ref.Version)
		for _, ref := range dm.Views {
			c.viewRef("listed view", ref)
		}
	}

	for _, container := range local.Containers {
		c := &identifierChecker{out: out, quarantine: quarantine, owner: ContainerKey(container.Ref), subject: container.Ref.String()}
		c.containerRef("container", container.Ref)
		for _, id := range SortedKeys(container.Properties) {
			c.property(id)
			if hint := container.Properties[id].Type.Container; hint != nil {
				c.containerRef("direct relation target", *hint)
			}
		}
		for _, req := range container.Requires {
			c.containerRef("required container", req)
		}
	}

	for _, view := range local.Views {
		c := &identifierChecker{out: out, quarantine: quarantine, owner: ViewKey(view.Ref), subject: view.Ref.String()}
		c.viewRef("view", view.Ref)
		for _, parent := range view.Implements {
			c.viewRef("implemented view", parent)
		}
		for _, id := range SortedKeys(view.Properties) {
			p := view.Properties[id]
			c.property(id)
			if p.Container != nil {
				c.containerRef("mapped container", *p.Container)
			}
			if p.Source != nil {
				c.viewRef("value type", *p.Source)
			}
			if p.Through != nil {
				c.viewRef("through view", p.Through.View)
			}
		}
	}
}

func checkDuplicates(local *schemaguard.Schema, out *issueSink, _ Quarantine) {
	const fix = "Remove or rename all but one of the definitions."

	spaces := make(map[string]int)
	for _, sp := range local.Spaces {
		spaces[sp.Space]++
	}
	for _, id := range SortedKeys(spaces) {
		if n := spaces[id]; n > 1 {
			out.add(id, fix, "space %s is defined %d times", id, n)
		}
	}

	containers := make(map[schemaguard.ContainerRef]int)
	for _, c := range local.Containers {
		containers[c.Ref]++
	}
	for _, ref := range SortedKeysFunc(containers, schemaguard.CompareContainerRefs) {
		if n := containers[ref]; n > 1 {
			out.add(ref.String(), fix, "container %s is defined %d times; only the first definition is used", ref, n)
		}
	}

	views := make(map[schemaguard.ViewRef]int)
	for _, v := range local.Views {
		views[v.Ref]++
	}
	for _, ref := range SortedKeysFunc(views, schemaguard.CompareViewRefs) {
		if n := views[ref]; n > 1 {
			out.add(ref.String(), fix, "view %s is defined %d times; only the first definition is used", ref, n)
		}
	}
}

func checkPropertyShapes(local *schemaguard.Schema, out *issueSink, quarantine Quarantine) {
	for _, container := range local.Containers {
		owner := ContainerKey(container.Ref)
		fail := func(property, fix, format string, args ...any) {
			out.add(containerPropertySubject(container.Ref, property), fix, format, args...)
			quarantine[owner] = struct{}{}
		}
		for _, id := range SortedKeys(container.Properties) {
			p := container.Properties[id]
			switch {
			case !p.Type.Kind.Valid():
				fail(id, "Use one of the supported data types.", "unknown data type %q", p.Type.Kind)
			case p.Type.Kind == schemaguard.DataTypeEnum && len(p.Type.Values) == 0:
				fail(id, "Declare at least one enum value.", "enum property has no values")
			case p.Type.Kind != schemaguard.DataTypeEnum && len(p.Type.Values) > 0:
				fail(id, "Remove the enum values or change the type to enum.", "%s property declares enum values", p.Type.Kind)
			case p.MaxListSize != nil && !p.IsList:
				fail(id, "Remove maxListSize or mark the property as a list.", "maxListSize is set on a property that is not a list")
			case p.MaxListSize != nil && *p.MaxListSize < 1:
				fail(id, "Set maxListSize to a positive number.", "maxListSize %d is not positive", *p.MaxListSize)
			}
		}
		for _, id := range SortedKeys(container.Indexes) {
			idx := container.Indexes[id]
			switch {
			case idx.Kind != schemaguard.IndexKindBTree && idx.Kind != schemaguard.IndexKindInverted:
				fail(id, "Use a btree or inverted index.", "index %s has unknown type %q", id, idx.Kind)
			case len(idx.Properties) == 0:
				fail(id, "List the properties the index covers.", "index %s covers no properties", id)
			}
		}
	}

	for _, view := range local.Views {
		owner := ViewKey(view.Ref)
		fail := func(property, fix, format string, args ...any) {
			out.add(propertySubject(view.Ref, property), fix, format, args...)
			quarantine[owner] = struct{}{}
		}
		for _, id := range SortedKeys(view.Properties) {
			p := view.Properties[id]
			switch p.Connection {
			case schemaguard.ConnectionNone:
				if p.Container == nil || p.ContainerProperty == "" {
					fail(id, "Map the property to a container and container property.",
						"core property is not mapped to a container property")
				}
			case schemaguard.ConnectionDirect:
				if p.Container == nil || p.ContainerProperty == "" {
					fail(id, "Map the direct connection to a container property of type direct.",
						"direct connection is not mapped to a container property")
				}
			case schemaguard.ConnectionReverse:
				if p.Through == nil || p.Through.Property == "" {
					fail(id, "Set through to the direct connection this property reverses.",
						"reverse connection has no through property")
				}
			case schemaguard.ConnectionEdge:
				if p.EdgeType == nil {
					fail(id, "Set the edge type of the connection.", "edge connection has no edge type")
				} else if p.Direction != "" && p.Direction != schemaguard.EdgeOutwards && p.Direction != schemaguard.EdgeInwards {
					fail(id, "Use outwards or inwards as direction.", "edge direction %q is not valid", p.Direction)
				}
			default:
				fail(id, "Use direct, reverse or edge as connection type.", "unknown connection type %q", p.Connection)
			}
		}
	}
}

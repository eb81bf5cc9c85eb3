package loader

import (
	"context"
	_ "embed"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/lychee-technology/schemaguard"
	"github.com/lychee-technology/schemaguard/internal"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the document format from the file extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

//go:embed document_schema.json
var documentSchemaJSON []byte

var (
	documentSchemaOnce sync.Once
	documentSchema     *jsonschema.Resolved
	documentSchemaErr  error
)

func resolvedDocumentSchema() (*jsonschema.Resolved, error) {
	documentSchemaOnce.Do(func() {
		var schema jsonschema.Schema
		if err := json.Unmarshal(documentSchemaJSON, &schema); err != nil {
			documentSchemaErr = fmt.Errorf("failed to parse document schema: %w", err)
			return
		}
		documentSchema, documentSchemaErr = schema.Resolve(&jsonschema.ResolveOptions{})
	})
	if documentSchemaErr != nil {
		return nil, schemaguard.NewDefect(schemaguard.ErrCodeInvariantViolation, "embedded document schema is invalid").
			WithCause(documentSchemaErr)
	}
	return documentSchema, nil
}

// Document is one decoded schema document.
type Document struct {
	Name   string
	Schema *schemaguard.Schema
}

// DecodeDocument parses data and checks it against the document schema.
// A document that cannot be parsed or does not match is reported as issues
// and a nil schema; the error is reserved for defects.
func DecodeDocument(name string, format Format, data []byte) (*schemaguard.Schema, schemaguard.Issues, error) {
	canonical, err := canonicalJSON(format, data)
	if err != nil {
		return nil, schemaguard.Issues{documentIssue(name, "document is not valid %s: %v", format, err)}, nil
	}

	var instance any
	if err := json.Unmarshal(canonical, &instance); err != nil {
		return nil, schemaguard.Issues{documentIssue(name, "document is not valid %s: %v", format, err)}, nil
	}

	resolved, err := resolvedDocumentSchema()
	if err != nil {
		return nil, nil, err
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, schemaguard.Issues{documentIssue(name, "document does not match the schema document format: %v", err)}, nil
	}

	var schema schemaguard.Schema
	if err := json.Unmarshal(canonical, &schema); err != nil {
		return nil, schemaguard.Issues{documentIssue(name, "document could not be decoded: %v", err)}, nil
	}
	return &schema, nil, nil
}

// canonicalJSON returns the document as JSON so both formats share one
// validation and decoding path.
func canonicalJSON(format Format, data []byte) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return json.Marshal(normalizeYAML(raw))
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// normalizeYAML turns the generic yaml tree into one encodable as JSON.
// Non-string mapping keys are rendered with fmt.Sprint.
func normalizeYAML(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, value := range node {
			out[key] = normalizeYAML(value)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(node))
		for key, value := range node {
			out[fmt.Sprint(key)] = normalizeYAML(value)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, value := range node {
			out[i] = normalizeYAML(value)
		}
		return out
	default:
		return v
	}
}

func documentIssue(name, format string, args ...any) schemaguard.Issue {
	return schemaguard.Issue{
		Code:    internal.CodeDocumentSchema,
		Kind:    schemaguard.IssueKindSyntax,
		Subject: name,
		Message: fmt.Sprintf(format, args...),
		Fix:     "Correct the document so it matches the schema document format.",
	}
}

// Merge concatenates documents in order. Only one data model may be
// declared across a document set; later declarations are reported and dropped.
func Merge(docs []Document) (*schemaguard.Schema, schemaguard.Issues) {
	merged := &schemaguard.Schema{}
	var issues schemaguard.Issues
	dataModelFrom := ""
	for _, doc := range docs {
		if doc.Schema == nil {
			continue
		}
		merged.Spaces = append(merged.Spaces, doc.Schema.Spaces...)
		merged.Containers = append(merged.Containers, doc.Schema.Containers...)
		merged.Views = append(merged.Views, doc.Schema.Views...)
		if doc.Schema.DataModel == nil {
			continue
		}
		if merged.DataModel != nil {
			issues = append(issues, documentIssue(doc.Name,
				"data model %s is ignored, %s already declares data model %s",
				doc.Schema.DataModel.Ref, dataModelFrom, merged.DataModel.Ref))
			continue
		}
		dm := *doc.Schema.DataModel
		merged.DataModel = &dm
		dataModelFrom = doc.Name
	}
	return merged, issues
}

// readFunc returns the raw bytes of the named document.
type readFunc func(ctx context.Context, name string) ([]byte, error)

// decodeAll reads, decodes and merges the named documents in name order.
func decodeAll(ctx context.Context, names []string, read readFunc) (*schemaguard.Schema, schemaguard.Issues, error) {
	names = slices.Clone(names)
	slices.Sort(names)

	var (
		docs   []Document
		issues schemaguard.Issues
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		format, ok := FormatOf(name)
		if !ok {
			continue
		}
		data, err := read(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		schema, found, err := DecodeDocument(name, format, data)
		if err != nil {
			return nil, nil, err
		}
		issues = append(issues, found...)
		docs = append(docs, Document{Name: name, Schema: schema})
	}

	merged, mergeIssues := Merge(docs)
	return merged, append(issues, mergeIssues...), nil
}

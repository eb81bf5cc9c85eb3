package schemaguard

import "context"

// SchemaSource provides a schema snapshot.
// Implementations can load documents from files, directories, object storage or other sources.
type SchemaSource interface {
	// Load reads the schema. Malformed documents are reported as SyntaxError
	// issues; the returned error is reserved for sources that cannot be read at all.
	Load(ctx context.Context) (*Schema, Issues, error)
	// Describe returns a human readable location of the source, used in logs.
	Describe() string
}

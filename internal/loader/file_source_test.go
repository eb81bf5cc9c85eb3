package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/schemaguard"
	"github.com/lychee-technology/schemaguard/internal"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDirSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_pump.yaml", pumpYAML)
	writeFile(t, dir, "a_valve.json", `{"views": [{"ref": {"space": "plant", "externalId": "Valve", "version": "v1"}}]}`)
	writeFile(t, dir, "c_broken.json", `{"views": 1}`)
	writeFile(t, dir, "README.md", "not a schema")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	src := NewDirSource(dir, nil)
	assert.Equal(t, dir, src.Describe())

	schema, issues, err := src.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, schema.Views, 2)
	assert.Equal(t, "Valve", schema.Views[0].Ref.ExternalID, "documents are merged in file name order")
	assert.Equal(t, "Pump", schema.Views[1].Ref.ExternalID)
	require.NotNil(t, schema.DataModel)

	require.Len(t, issues, 1)
	assert.Equal(t, internal.CodeDocumentSchema, issues[0].Code)
	assert.Equal(t, filepath.Join(dir, "c_broken.json"), issues[0].Subject)
}

func TestDirSource_Missing(t *testing.T) {
	_, _, err := NewDirSource(filepath.Join(t.TempDir(), "nope"), nil).Load(context.Background())

	var sgErr *schemaguard.SchemaguardError
	require.ErrorAs(t, err, &sgErr)
	assert.Equal(t, schemaguard.ErrorTypeLoad, sgErr.Type)
	assert.Equal(t, schemaguard.ErrCodeSourceUnavailable, sgErr.Code)
}

func TestDirSource_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pump.json", pumpJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewDirSource(dir, nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_Load(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pump.json", pumpJSON)

	schema, issues, err := NewFileSource(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Len(t, schema.Containers, 1)
}

func TestFileSource_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pump.txt", pumpJSON)

	_, _, err := NewFileSource(path, nil).Load(context.Background())
	var sgErr *schemaguard.SchemaguardError
	require.ErrorAs(t, err, &sgErr)
	assert.Equal(t, schemaguard.ErrCodeDocumentInvalid, sgErr.Code)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "pump.yaml", pumpYAML)
	ctx := context.Background()

	src, err := Open(ctx, dir, schemaguard.SnapshotConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, src)

	src, err = Open(ctx, file, schemaguard.SnapshotConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	_, err = Open(ctx, filepath.Join(dir, "missing"), schemaguard.SnapshotConfig{}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, "s3:///prefix", schemaguard.SnapshotConfig{}, nil)
	assert.Error(t, err)
}

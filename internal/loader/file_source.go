package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lychee-technology/schemaguard"
)

// FileSource loads a single JSON or YAML schema document.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a source for the document at path.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) Describe() string {
	return s.path
}

func (s *FileSource) Load(ctx context.Context) (*schemaguard.Schema, schemaguard.Issues, error) {
	if _, ok := FormatOf(s.path); !ok {
		return nil, nil, schemaguard.NewLoadError(schemaguard.ErrCodeDocumentInvalid,
			"unsupported document extension, expected .json, .yaml or .yml", nil).WithSubject(s.path)
	}
	schema, issues, err := decodeAll(ctx, []string{s.path}, readFile)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Sugar().Debugw("loaded schema document", "path", s.path, "issues", len(issues))
	return schema, issues, nil
}

// DirSource loads every *.json, *.yaml and *.yml document directly inside
// a directory, merged in file name order.
type DirSource struct {
	dir    string
	logger *zap.Logger
}

// NewDirSource creates a source for the documents in dir.
func NewDirSource(dir string, logger *zap.Logger) *DirSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirSource{dir: dir, logger: logger}
}

func (s *DirSource) Describe() string {
	return s.dir
}

func (s *DirSource) Load(ctx context.Context) (*schemaguard.Schema, schemaguard.Issues, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, schemaguard.NewLoadError(schemaguard.ErrCodeSourceUnavailable,
			"failed to read schema directory", err).WithSubject(s.dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := FormatOf(entry.Name()); ok {
			names = append(names, filepath.Join(s.dir, entry.Name()))
		}
	}

	schema, issues, err := decodeAll(ctx, names, readFile)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Sugar().Debugw("loaded schema documents", "dir", s.dir, "documents", len(names), "issues", len(issues))
	return schema, issues, nil
}

func readFile(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, schemaguard.NewLoadError(schemaguard.ErrCodeSourceUnavailable,
			fmt.Sprintf("failed to read %s", name), err).WithSubject(name)
	}
	return data, nil
}

// Open picks a source for location: s3://bucket/prefix reads from S3,
// a directory reads every document in it, anything else is a single file.
func Open(ctx context.Context, location string, snapshot schemaguard.SnapshotConfig, logger *zap.Logger) (schemaguard.SchemaSource, error) {
	if strings.HasPrefix(location, s3Scheme) {
		bucket, prefix, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		return NewS3Source(ctx, snapshot, bucket, prefix, logger)
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, schemaguard.NewLoadError(schemaguard.ErrCodeSourceUnavailable,
			"schema location is not accessible", err).WithSubject(location)
	}
	if info.IsDir() {
		return NewDirSource(location, logger), nil
	}
	return NewFileSource(location, logger), nil
}

package strategies

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
)

//go:embed strategies.json
var bundledDocument []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store loads the strategy document.
type Store interface {
	Load(ctx context.Context) (*Document, error)
}

// NewStore returns the bundled store for an empty path and a file store
// otherwise.
func NewStore(path string) Store {
	if path == "" {
		return NewBundledStore()
	}
	return NewFileStore(path)
}

// BundledStore serves the document compiled into the binary. It is parsed
// once; the result is shared read-only by all callers.
type BundledStore struct {
	data []byte

	once sync.Once
	doc  *Document
	err  error
}

func NewBundledStore() *BundledStore {
	return &BundledStore{data: bundledDocument}
}

func (s *BundledStore) Load(context.Context) (*Document, error) {
	s.once.Do(func() {
		s.doc, s.err = ParseDocument(s.data)
	})
	return s.doc, s.err
}

// FileStore re-reads its file on every Load, so edits are picked up without a
// restart.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read strategies: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return doc, nil
}

// ParseDocument decodes and validates a strategy document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode strategies: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("validate strategies: %w", err)
	}
	return &doc, nil
}

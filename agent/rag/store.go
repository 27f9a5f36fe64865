package rag

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrIndexNotFound = errors.New("vector index not found")

const indexFileName = "index.json"

type Chunk struct {
	ID      string    `json:"id"`
	Source  string    `json:"source"`
	Content string    `json:"content"`
	Vector  []float64 `json:"vector"`
}

type Index struct {
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Chunks    []Chunk   `json:"chunks"`
}

// IndexStore persists the vector index as a single JSON document on
// disk. The index is small enough for support knowledge bases that a
// full load per process is fine.
type IndexStore struct {
	dir string
}

func NewIndexStore(dir string) *IndexStore {
	return &IndexStore{dir: dir}
}

func (s *IndexStore) Load() (*Index, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &index, nil
}

func (s *IndexStore) Save(index *Index) error {
	if index == nil {
		return errors.New("nil index")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	path := filepath.Join(s.dir, indexFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

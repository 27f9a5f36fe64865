package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type IngestConfig struct {
	KBPath         string `envconfig:"KB_PATH" split_words:"true" default:"./kb"`
	VectorStoreDir string `envconfig:"VECTORSTORE_PATH" split_words:"true" default:"./data/vectorstore"`
	ChunkSize      int    `envconfig:"CHUNK_SIZE" split_words:"true" default:"1000"`
	ChunkOverlap   int    `envconfig:"CHUNK_OVERLAP" split_words:"true" default:"200"`
	BatchSize      int    `envconfig:"BATCH_SIZE" split_words:"true" default:"64"`
}

// Ingestor builds the vector index from the markdown knowledge base.
type Ingestor struct {
	embedder Embedder
	store    *IndexStore
	cfg      IngestConfig
}

func NewIngestor(embedder Embedder, store *IndexStore, cfg IngestConfig) *Ingestor {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 200
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	return &Ingestor{embedder: embedder, store: store, cfg: cfg}
}

// Ingest loads every markdown file under kbPath, splits it into
// overlapping chunks, embeds them, and replaces the persisted index.
// An empty kbPath means the configured knowledge base. It returns the
// number of chunks indexed.
func (i *Ingestor) Ingest(ctx context.Context, kbPath string) (int, error) {
	if strings.TrimSpace(kbPath) == "" {
		kbPath = i.cfg.KBPath
	}
	documents, err := loadMarkdown(kbPath)
	if err != nil {
		return 0, err
	}
	if len(documents) == 0 {
		log.Warn().Str("kb_path", kbPath).Msg("no markdown documents found")
		return 0, nil
	}

	var chunks []Chunk
	for _, doc := range documents {
		pieces := SplitText(doc.content, i.cfg.ChunkSize, i.cfg.ChunkOverlap)
		for n, piece := range pieces {
			chunks = append(chunks, Chunk{
				ID:      fmt.Sprintf("%s#%d", doc.source, n),
				Source:  doc.source,
				Content: piece,
			})
		}
	}
	log.Info().Int("documents", len(documents)).Int("chunks", len(chunks)).Msg("knowledge base split")

	for start := 0; start < len(chunks); start += i.cfg.BatchSize {
		end := start + i.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}
		vectors, err := i.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		for n, vector := range vectors {
			chunks[start+n].Vector = vector
		}
	}

	index := &Index{CreatedAt: time.Now().UTC(), Chunks: chunks}
	if err := i.store.Save(index); err != nil {
		return 0, err
	}

	log.Info().Int("chunks", len(chunks)).Msg("vector index rebuilt")
	return len(chunks), nil
}

type document struct {
	source  string
	content string
}

func loadMarkdown(root string) ([]document, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("knowledge base directory not found: %s", root)
	}

	var documents []document
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		documents = append(documents, document{source: rel, content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}

var splitSeparators = []string{"\n\n", "\n", " ", ""}

// SplitText breaks text into chunks of at most chunkSize characters,
// preferring paragraph then line then word boundaries, with the tail
// of each chunk repeated at the head of the next one.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	parts := splitBySeparators(text, chunkSize, 0)

	var chunks []string
	var current strings.Builder
	for _, part := range parts {
		if current.Len() > 0 && current.Len()+len(part) > chunkSize {
			chunk := strings.TrimSpace(current.String())
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			tail := chunk
			if len(tail) > overlap {
				tail = tail[len(tail)-overlap:]
			}
			current.Reset()
			current.WriteString(tail)
		}
		current.WriteString(part)
	}
	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func splitBySeparators(text string, chunkSize int, level int) []string {
	if len(text) <= chunkSize || level >= len(splitSeparators) {
		return []string{text}
	}

	separator := splitSeparators[level]
	if separator == "" {
		var parts []string
		for len(text) > chunkSize {
			parts = append(parts, text[:chunkSize])
			text = text[chunkSize:]
		}
		if text != "" {
			parts = append(parts, text)
		}
		return parts
	}

	var parts []string
	for _, piece := range strings.SplitAfter(text, separator) {
		if piece == "" {
			continue
		}
		if len(piece) > chunkSize {
			parts = append(parts, splitBySeparators(piece, chunkSize, level+1)...)
			continue
		}
		parts = append(parts, piece)
	}
	return parts
}

package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CorpusStore holds the shared reference documents: one plain-text file per
// document on disk, mirrored by an in-memory snapshot. The corpus is small,
// so additions trigger a full synchronous reload rather than an incremental
// update.
type CorpusStore struct {
	dir string

	mu   sync.RWMutex
	docs []CorpusDocument
}

func NewCorpusStore(dir string) *CorpusStore {
	s := &CorpusStore{dir: dir}
	s.Load()
	return s
}

// Load reads every .txt file in the corpus directory into memory. An
// unreadable directory degrades to an empty corpus: retrieval then simply
// finds no context, it is not a hard failure.
func (s *CorpusStore) Load() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("Corpus directory %s unreadable, starting with empty corpus: %v", s.dir, err)
		s.mu.Lock()
		s.docs = nil
		s.mu.Unlock()
		return
	}

	var docs []CorpusDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			log.Printf("Skipping unreadable corpus document %s: %v", entry.Name(), err)
			continue
		}
		docs = append(docs, CorpusDocument{Name: entry.Name(), Text: string(data)})
	}

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
	log.Printf("Corpus loaded with %d documents from %s", len(docs), s.dir)
}

// Add writes a new document to durable storage and reloads the whole corpus
// before returning, so the in-memory snapshot always reflects disk. A
// document with the same base name overwrites the previous one.
func (s *CorpusStore) Add(name, text string) error {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write corpus document %s: %w", base, err)
	}

	s.Load()
	return nil
}

// Documents returns the in-memory snapshot. Callers must not mutate it.
func (s *CorpusStore) Documents() []CorpusDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs
}

package store

import (
	"database/sql"
	"fmt"
	"time"
)

// EmbeddingCacheEntry stores a cached embedding keyed by content hash.
type EmbeddingCacheEntry struct {
	ContentHash string
	Embedding   []byte
	Dimension   int
	Model       string
	UpdatedAt   int64
}

// EmbeddingCacheStore caches embeddings in SQLite so repeated content never
// hits the embedding service twice.
type EmbeddingCacheStore struct {
	db *DB
}

func NewEmbeddingCacheStore(db *DB) *EmbeddingCacheStore {
	return &EmbeddingCacheStore{db: db}
}

// Get returns the cached entry for a content hash, or nil if absent.
func (s *EmbeddingCacheStore) Get(contentHash string) (*EmbeddingCacheEntry, error) {
	var e EmbeddingCacheEntry
	err := s.db.QueryRow(`
		SELECT content_hash, embedding, dimension, model, updated_at
		FROM embedding_cache WHERE content_hash = ?
	`, contentHash).Scan(&e.ContentHash, &e.Embedding, &e.Dimension, &e.Model, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached embedding: %w", err)
	}
	return &e, nil
}

// Put inserts or replaces a cache entry.
func (s *EmbeddingCacheStore) Put(e *EmbeddingCacheEntry) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO embedding_cache (content_hash, embedding, dimension, model, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ContentHash, e.Embedding, e.Dimension, e.Model, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put cached embedding: %w", err)
	}
	return nil
}

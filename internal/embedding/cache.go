package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rootedlabs/trellis/internal/store"
)

// Embedder turns text into a vector. Implemented by CachedEmbedder; tests
// substitute deterministic fakes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder wraps an OllamaClient with content-hash caching via SQLite.
type CachedEmbedder struct {
	client *OllamaClient
	cache  *store.EmbeddingCacheStore
	model  string
	dim    int
}

func NewCachedEmbedder(client *OllamaClient, cache *store.EmbeddingCacheStore, model string, dim int) *CachedEmbedder {
	return &CachedEmbedder{
		client: client,
		cache:  cache,
		model:  model,
		dim:    dim,
	}
}

// Embed returns the embedding for text, using cache when available.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(text)

	entry, err := e.cache.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if entry != nil {
		return BytesToFloat32(entry.Embedding), nil
	}

	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Cache write failure is non-fatal; the embedding is still usable.
	_ = e.cache.Put(&store.EmbeddingCacheEntry{
		ContentHash: hash,
		Embedding:   Float32ToBytes(vec),
		Dimension:   e.dim,
		Model:       e.model,
	})

	return vec, nil
}

// ContentHash computes a SHA-256 hash of text content.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}

// Float32ToBytes encodes a vector as a little-endian BLOB (4 bytes per value).
func Float32ToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// BytesToFloat32 decodes a BLOB produced by Float32ToBytes.
func BytesToFloat32(buf []byte) []float32 {
	n := len(buf) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

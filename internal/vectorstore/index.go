package vectorstore

import (
	"context"
	"fmt"

	"github.com/rootedlabs/trellis/internal/embedding"
	"github.com/rootedlabs/trellis/internal/models"
)

// Neighbor is one nearest-neighbor hit. Distance is cosine distance:
// lower means more similar.
type Neighbor struct {
	ID       string
	Distance float64
	Content  string
}

// Index is the engine-facing vector index: text in, neighbors out. It pairs
// an embedder with a single Qdrant collection whose payload carries the
// per-node metadata projection used for filtering.
type Index struct {
	embedder   embedding.Embedder
	client     *QdrantClient
	collection string
}

func NewIndex(embedder embedding.Embedder, client *QdrantClient, collection string) *Index {
	return &Index{
		embedder:   embedder,
		client:     client,
		collection: collection,
	}
}

// Init makes sure the backing collection exists.
func (ix *Index) Init() error {
	return ix.client.EnsureCollection(ix.collection)
}

// Add embeds the text and upserts a point whose ID matches the relational
// node ID, carrying the metadata projection as payload.
func (ix *Index) Add(ctx context.Context, id, text string, meta models.VectorMeta) error {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed content: %w", err)
	}

	point := Point{
		ID:     id,
		Vector: vec,
		Payload: map[string]any{
			"user_id":        meta.UserID,
			"domain":         meta.Domain,
			"priority":       string(meta.Priority),
			"type":           string(meta.Type),
			"root_alignment": string(meta.RootAlignment),
			"content":        text,
		},
	}
	if err := ix.client.Upsert(ctx, ix.collection, []Point{point}); err != nil {
		return fmt.Errorf("upsert point: %w", err)
	}
	return nil
}

// Query embeds the text and returns up to k nearest neighbors matching the
// payload filter. Qdrant scores cosine similarity (higher = closer); the
// engine reasons in distance, so convert.
func (ix *Index) Query(ctx context.Context, text string, k int, filter map[string]any) ([]Neighbor, error) {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := ix.client.Search(ctx, ix.collection, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	neighbors := make([]Neighbor, len(points))
	for i, p := range points {
		content, _ := p.Payload["content"].(string)
		neighbors[i] = Neighbor{
			ID:       p.ID,
			Distance: 1.0 - p.Score,
			Content:  content,
		}
	}
	return neighbors, nil
}

// Delete removes the points for the given node IDs.
func (ix *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return ix.client.DeletePoints(ctx, ix.collection, ids)
}

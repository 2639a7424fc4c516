package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// VectorIndex is an in-memory vector index over a session's documents.
// It is built once at upload time and read-only afterwards, so concurrent
// searches need no locking.
type VectorIndex struct {
	documents  []Document
	embeddings [][]float32
	embedder   Embedder
}

// NewVectorIndex creates an empty index that embeds added documents with
// the given embedder.
func NewVectorIndex(embedder Embedder) *VectorIndex {
	return &VectorIndex{embedder: embedder}
}

// Add embeds and stores documents. Documents keep their insertion order.
func (idx *VectorIndex) Add(ctx context.Context, documents []Document) error {
	if len(documents) == 0 {
		return nil
	}
	if idx.embedder == nil {
		return fmt.Errorf("no embedder configured")
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.Content
	}

	embeddings, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(embeddings) != len(documents) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(embeddings), len(documents))
	}

	idx.documents = append(idx.documents, documents...)
	idx.embeddings = append(idx.embeddings, embeddings...)
	return nil
}

// AddWithEmbeddings stores documents with precomputed embeddings.
func (idx *VectorIndex) AddWithEmbeddings(documents []Document, embeddings [][]float32) error {
	if len(documents) != len(embeddings) {
		return fmt.Errorf("documents and embeddings must have same length")
	}
	idx.documents = append(idx.documents, documents...)
	idx.embeddings = append(idx.embeddings, embeddings...)
	return nil
}

// Len returns the number of indexed documents.
func (idx *VectorIndex) Len() int {
	return len(idx.documents)
}

// Search returns the k documents most similar to the query embedding,
// similarity-descending. Ties keep insertion order.
func (idx *VectorIndex) Search(ctx context.Context, queryEmbedding []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if len(idx.documents) == 0 {
		return []SearchResult{}, nil
	}

	scores := make([]SearchResult, len(idx.documents))
	for i, emb := range idx.embeddings {
		scores[i] = SearchResult{
			Document: idx.documents[i],
			Score:    cosineSimilarity(queryEmbedding, emb),
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// cosineSimilarity calculates cosine similarity between two float32 vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

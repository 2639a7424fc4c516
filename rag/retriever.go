package rag

import (
	"context"
	"fmt"
)

// VectorRetriever retrieves the top-k most similar passages from a
// session's vector index.
type VectorRetriever struct {
	index    *VectorIndex
	embedder Embedder
	k        int
}

var _ Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever binds a retriever to an index. k <= 0 defaults to 5.
func NewVectorRetriever(index *VectorIndex, embedder Embedder, k int) *VectorRetriever {
	if k <= 0 {
		k = 5
	}
	return &VectorRetriever{
		index:    index,
		embedder: embedder,
		k:        k,
	}
}

// Retrieve embeds the query and returns up to k documents,
// similarity-descending.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.index.Search(ctx, queryEmbedding, r.k)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	docs := make([]Document, len(results))
	for i, result := range results {
		docs[i] = result.Document
	}
	return docs, nil
}

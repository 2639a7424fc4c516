// Package rag provides the per-session vector index: documents, embeddings,
// similarity search and the top-k retriever the query pipeline consumes.
package rag

import "context"

// Document is one indexed passage with provenance metadata.
// Documents are immutable once created.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document
	Score    float64
}

// Embedder turns text into embedding vectors.
type Embedder interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedDocuments embeds a batch of document texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever finds the passages most similar to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

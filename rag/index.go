package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Table is a raw extracted table as rows of cells.
type Table [][]string

// BuildSessionIndex embeds text passages and flattened tables into a fresh
// vector index and returns a retriever bound to it. It fails when there is
// nothing to index, so a session never ends up with an empty retriever.
func BuildSessionIndex(ctx context.Context, embedder Embedder, passages []Document, tables []Table, k int) (*VectorRetriever, error) {
	docs := make([]Document, 0, len(passages)+len(tables))

	for _, doc := range passages {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		docs = append(docs, doc)
	}

	for i, table := range tables {
		content := flattenTable(table)
		if content == "" {
			continue
		}
		docs = append(docs, Document{
			ID:      uuid.NewString(),
			Content: content,
			Metadata: map[string]any{
				"type":     "table",
				"table_id": i + 1,
			},
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no texts or tables provided")
	}

	index := NewVectorIndex(embedder)
	if err := index.Add(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to build session index: %w", err)
	}

	return NewVectorRetriever(index, embedder, k), nil
}

// flattenTable renders a table one row per line with comma-joined cells.
func flattenTable(table Table) string {
	rows := make([]string, 0, len(table))
	for _, row := range table {
		rows = append(rows, strings.Join(row, ", "))
	}
	return strings.TrimSpace(strings.Join(rows, "\n"))
}

package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSessionIndex(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float32{}}

	t.Run("indexes passages and tables", func(t *testing.T) {
		passages := []Document{
			{Content: "Chunk one", Metadata: map[string]any{"source": "a.txt"}},
			{Content: "   "}, // blank content is skipped
		}
		tables := []Table{
			{{"name", "count"}, {"widgets", "3"}},
		}

		retriever, err := BuildSessionIndex(ctx, embedder, passages, tables, 5)
		require.NoError(t, err)
		require.NotNil(t, retriever)
		assert.Equal(t, 2, retriever.index.Len())

		docs, err := retriever.Retrieve(ctx, "widgets")
		require.NoError(t, err)
		require.Len(t, docs, 2)

		var tableDoc *Document
		for i := range docs {
			if docs[i].Metadata["type"] == "table" {
				tableDoc = &docs[i]
			}
		}
		require.NotNil(t, tableDoc)
		assert.Equal(t, "name, count\nwidgets, 3", tableDoc.Content)
		assert.Equal(t, 1, tableDoc.Metadata["table_id"])
		assert.NotEmpty(t, tableDoc.ID)
	})

	t.Run("assigns IDs to passages without one", func(t *testing.T) {
		retriever, err := BuildSessionIndex(ctx, embedder, []Document{{Content: "text"}}, nil, 5)
		require.NoError(t, err)

		docs, err := retriever.Retrieve(ctx, "text")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.NotEmpty(t, docs[0].ID)
	})

	t.Run("nothing to index is an error", func(t *testing.T) {
		_, err := BuildSessionIndex(ctx, embedder, nil, nil, 5)
		assert.Error(t, err)
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		_, err := BuildSessionIndex(ctx, failingEmbedder{}, []Document{{Content: "text"}}, nil, 5)
		assert.Error(t, err)
	})
}

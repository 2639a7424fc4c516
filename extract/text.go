package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mergeParagraphs is how many paragraphs are joined into one chunk.
const mergeParagraphs = 2

// extractText splits a plain-text or markdown file on blank lines and merges
// adjacent paragraphs into chunks with chunk_id metadata.
func extractText(path string, result *Result) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return fmt.Errorf("file is empty")
	}

	chunks := splitAndMerge(content, mergeParagraphs)
	name := filepath.Base(path)

	for i, chunk := range chunks {
		result.Chunks = append(result.Chunks, Chunk{
			Content: chunk,
			Metadata: map[string]any{
				"source":   name,
				"type":     "text",
				"chunk_id": i + 1,
			},
		})
	}

	result.Files = append(result.Files, FileInfo{
		FileName:    name,
		FilePath:    path,
		Type:        "text",
		SizeKB:      fileSizeKB(path),
		TotalChunks: len(chunks),
	})
	return nil
}

// splitAndMerge splits content into paragraphs on blank lines and joins
// groups of n paragraphs with single spaces.
func splitAndMerge(content string, n int) []string {
	var paragraphs []string
	for _, p := range strings.Split(content, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	var merged []string
	for i := 0; i < len(paragraphs); i += n {
		end := i + n
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		merged = append(merged, strings.Join(paragraphs[i:end], " "))
	}
	return merged
}

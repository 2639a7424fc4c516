package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// extractPDF loads a PDF page by page and records one chunk per non-empty
// page with page_number metadata.
func extractPDF(ctx context.Context, path string, result *Result) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	loader := documentloaders.NewPDF(f, info.Size())
	pages, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to parse pdf: %w", err)
	}

	name := filepath.Base(path)
	extracted := 0

	for i, page := range pages {
		content := strings.TrimSpace(page.PageContent)
		if content == "" {
			continue
		}
		result.Chunks = append(result.Chunks, Chunk{
			Content: content,
			Metadata: map[string]any{
				"source":      name,
				"type":        "pdf",
				"page_number": i + 1,
			},
		})
		extracted++
	}

	result.Files = append(result.Files, FileInfo{
		FileName:   name,
		FilePath:   path,
		Type:       "pdf",
		SizeKB:     fileSizeKB(path),
		TotalPages: len(pages),
	})

	if extracted == 0 {
		return fmt.Errorf("no text extracted from %d pages", len(pages))
	}
	return nil
}

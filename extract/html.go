package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// htmlPolicy strips scripts, styles and other active content before text
// extraction. UGCPolicy keeps the structural elements goquery walks.
var htmlPolicy = bluemonday.UGCPolicy()

// extractHTML sanitizes an HTML file and extracts the visible text of its
// block-level elements as chunks.
func extractHTML(path string, result *Result) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sanitized := htmlPolicy.SanitizeBytes(data)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(sanitized)))
	if err != nil {
		return fmt.Errorf("failed to parse html: %w", err)
	}

	name := filepath.Base(path)
	chunkID := 0

	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		chunkID++
		result.Chunks = append(result.Chunks, Chunk{
			Content: text,
			Metadata: map[string]any{
				"source":   name,
				"type":     "html",
				"chunk_id": chunkID,
			},
		})
	})

	if chunkID == 0 {
		// Fall back to whole-document text for pages without block markup.
		if text := strings.TrimSpace(doc.Text()); text != "" {
			chunkID = 1
			result.Chunks = append(result.Chunks, Chunk{
				Content: text,
				Metadata: map[string]any{
					"source":   name,
					"type":     "html",
					"chunk_id": 1,
				},
			})
		}
	}

	result.Files = append(result.Files, FileInfo{
		FileName:    name,
		FilePath:    path,
		Type:        "html",
		SizeKB:      fileSizeKB(path),
		TotalChunks: chunkID,
	})

	if chunkID == 0 {
		return fmt.Errorf("no text extracted")
	}
	return nil
}

// Package extract pulls text chunks, tables and file-level metadata out of
// a session's uploaded documents.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RawatRahul14/ragpipe/log"
)

// Chunk is one extracted text passage with provenance metadata.
type Chunk struct {
	Content  string
	Metadata map[string]any
}

// FileInfo is file-level metadata for one processed document.
type FileInfo struct {
	FileName    string  `json:"file_name" bson:"file_name"`
	FilePath    string  `json:"file_path" bson:"file_path"`
	Type        string  `json:"type" bson:"type"`
	SizeKB      float64 `json:"size_kb" bson:"size_kb"`
	TotalPages  int     `json:"total_pages,omitempty" bson:"total_pages,omitempty"`
	TotalChunks int     `json:"total_chunks,omitempty" bson:"total_chunks,omitempty"`
	TotalTables int     `json:"total_tables,omitempty" bson:"total_tables,omitempty"`
}

// Result aggregates everything extracted from a session folder.
type Result struct {
	Chunks []Chunk
	Tables [][][]string
	Files  []FileInfo
}

// FromFolder extracts text, tables and metadata from every supported file in
// the folder. Unsupported extensions are skipped; a file that fails to parse
// is logged and skipped rather than failing the whole upload.
func FromFolder(ctx context.Context, folder string) (*Result, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read session folder: %w", err)
	}

	result := &Result{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		ext := strings.ToLower(filepath.Ext(entry.Name()))

		var ferr error
		switch ext {
		case ".pdf":
			ferr = extractPDF(ctx, path, result)
		case ".txt", ".md":
			ferr = extractText(path, result)
		case ".html", ".htm":
			ferr = extractHTML(path, result)
		case ".csv":
			ferr = extractCSV(path, result)
		default:
			log.Debug("skipping unsupported file: %s", entry.Name())
			continue
		}

		if ferr != nil {
			log.Warn("failed to extract %s: %v", entry.Name(), ferr)
		}
	}

	log.Info("extracted %d chunks and %d tables from %d files in %s",
		len(result.Chunks), len(result.Tables), len(result.Files), folder)
	return result, nil
}

// fileSizeKB returns the file size in kilobytes rounded to two decimals.
func fileSizeKB(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(int(float64(info.Size())/1024*100+0.5)) / 100
}

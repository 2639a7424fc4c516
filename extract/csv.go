package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// extractCSV reads a CSV file as a single table.
func extractCSV(path string, result *Result) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are common in exported sheets

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("file is empty")
	}

	result.Tables = append(result.Tables, rows)

	result.Files = append(result.Files, FileInfo{
		FileName:    filepath.Base(path),
		FilePath:    path,
		Type:        "table",
		SizeKB:      fileSizeKB(path),
		TotalTables: 1,
	})
	return nil
}

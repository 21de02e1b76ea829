package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ReviewScanner/internal/domain"
	"ReviewScanner/pkg/fingerprint"
)

var csvHeader = []string{"business_name", "username", "rating", "review_text", "source", "scraping_date"}

// writeCSV exports extracted records to a file auto-named from the target URL
// fingerprint. Returns the written path.
func writeCSV(records []domain.ReviewRecord, dir, targetURL string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create csv dir: %w", err)
	}

	name := fmt.Sprintf("reviews_%s.csv", fingerprint.Key(targetURL)[:8])
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.BusinessName,
			record.Username,
			strconv.FormatFloat(record.Rating, 'f', -1, 64),
			record.ReviewText,
			record.Source,
			record.ScrapingDate,
		}
		if err := writer.Write(row); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("flush csv: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close csv file: %w", err)
	}

	return path, nil
}

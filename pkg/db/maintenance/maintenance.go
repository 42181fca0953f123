// Package maintenance holds batch jobs around the facts database: reading identifier
// lists for bulk fetches and pruning rows that have not been refreshed.
package maintenance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"dbpediafacts/pkg/db"
)

// IdentifierColumn is the CSV header read by ReadIdentifiers.
const IdentifierColumn = "identifier"

// ErrNoIdentifierColumn is returned when a CSV file has no identifier column.
var ErrNoIdentifierColumn = errors.New("csv has no identifier column")

// ReadIdentifiers reads the identifier column of a CSV file with a header row.
// Blank cells are skipped. A leading UTF-8 BOM is tolerated.
func ReadIdentifiers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	return readIdentifiers(f)
}

func readIdentifiers(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoIdentifierColumn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// UTF-8 BOM
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	col := -1
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), IdentifierColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoIdentifierColumn
	}

	var ids []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ids, fmt.Errorf("csv read error: %w", err)
		}
		if col >= len(record) {
			continue
		}
		if id := strings.TrimSpace(record[col]); id != "" {
			ids = append(ids, id)
		}
	}

	slog.Debug("Identifiers read from CSV", "count", len(ids))
	return ids, nil
}

// Prune removes facts not refreshed within maxAge. A zero maxAge is a no-op.
func Prune(d *db.DB, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	n, err := d.PruneFacts(maxAge)
	if err != nil {
		return 0, fmt.Errorf("failed to prune facts: %w", err)
	}
	slog.Info("Facts pruned", "removed", n, "max_age", maxAge)
	return n, nil
}

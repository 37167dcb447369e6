package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/syngenta/meteobe/internal/domain"
)

// WriteWide writes result rows as one wide CSV. Columns are the union of
// all row keys: identityCols first (in the given order, when present), the
// rest sorted, so output is deterministic regardless of row order. Duplicate
// rows are dropped.
func WriteWide(path string, rows []domain.ResultRow, identityCols []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	columns := wideColumns(rows, identityCols)

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatValue(row[col])
		}
		key := strings.Join(record, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteFailed writes the failed-records table.
func WriteFailed(path string, failed []domain.FailedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create failed-records file: %w", err)
	}
	defer f.Close()

	return gocsv.MarshalFile(&failed, f)
}

func wideColumns(rows []domain.ResultRow, identityCols []string) []string {
	present := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			present[col] = struct{}{}
		}
	}

	columns := make([]string, 0, len(present))
	for _, col := range identityCols {
		if _, ok := present[col]; ok {
			columns = append(columns, col)
			delete(present, col)
		}
	}

	rest := make([]string, 0, len(present))
	for col := range present {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Package csvfile loads the trial/field input table, from CSV or from a
// spreadsheet workbook, and writes the wide result and failed-record
// tables as CSV.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/syngenta/meteobe/internal/domain"
)

// dateLayouts are tried in order when parsing user date columns.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02.01.2006",
}

// Loader reads trial records from a CSV file or spreadsheet workbook using
// the configured column bindings. Rows with an unparseable coordinate or
// date are skipped and reported, never aborting the batch.
type Loader struct {
	IDCol          string
	LatCol         string
	LonCol         string
	CountryCol     string // empty when CountryDefault is set
	CountryDefault string
	DateCols       []string
	SheetName      string // spreadsheet inputs only; empty means first sheet
	Logger         *slog.Logger
}

// Load parses the input table. A `.csv` extension selects CSV parsing;
// anything else is opened as a spreadsheet workbook. It returns the valid
// records plus one FailedRecord per skipped row.
func (l *Loader) Load(path string) ([]domain.TrialRecord, []domain.FailedRecord, error) {
	rows, err := l.readRows(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: input file %s has no header row", domain.ErrInput, path)
	}

	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	idx, err := l.columnIndexes(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		records []domain.TrialRecord
		skipped []domain.FailedRecord
	)
	for i, row := range rows[1:] {
		line := i + 2

		rec, parseErr := l.parseRow(row, idx)
		if parseErr != nil {
			l.Logger.Warn("skipping input row", "line", line, "error", parseErr)
			skipped = append(skipped, domain.FailedRecord{
				ID:          cell(row, idx.id),
				Latitude:    parseFloatOrZero(cell(row, idx.lat)),
				Longitude:   parseFloatOrZero(cell(row, idx.lon)),
				CountryCode: l.countryOf(row, idx),
				Reason:      parseErr.Error(),
			})
			continue
		}
		records = append(records, rec)
	}

	l.Logger.Info("input table loaded",
		"path", path,
		"records", len(records),
		"skipped", len(skipped),
	)
	return records, skipped, nil
}

func (l *Loader) readRows(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSVRows(path)
	}
	return readSheetRows(path, l.SheetName)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open input file: %w", domain.ErrInput, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read input file: %w", domain.ErrInput, err)
	}
	return rows, nil
}

func readSheetRows(path, sheet string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", domain.ErrInput, err)
	}
	defer wb.Close()

	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", domain.ErrInput, sheet, err)
	}
	return rows, nil
}

type columnIndexes struct {
	id, lat, lon, country int
	dates                 map[string]int
}

// columnIndexes validates that every bound column exists in the header. A
// missing column is fatal for the whole batch.
func (l *Loader) columnIndexes(header []string) (columnIndexes, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}

	required := []string{l.IDCol, l.LatCol, l.LonCol}
	if l.CountryCol != "" {
		required = append(required, l.CountryCol)
	}
	required = append(required, l.DateCols...)
	for _, name := range required {
		if _, ok := pos[name]; !ok {
			return columnIndexes{}, fmt.Errorf("%w: column %q not found in input file", domain.ErrInput, name)
		}
	}

	idx := columnIndexes{
		id:      pos[l.IDCol],
		lat:     pos[l.LatCol],
		lon:     pos[l.LonCol],
		country: -1,
		dates:   make(map[string]int, len(l.DateCols)),
	}
	if l.CountryCol != "" {
		idx.country = pos[l.CountryCol]
	}
	for _, name := range l.DateCols {
		idx.dates[name] = pos[name]
	}
	return idx, nil
}

func (l *Loader) parseRow(row []string, idx columnIndexes) (domain.TrialRecord, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(cell(row, idx.lat)), 64)
	if err != nil {
		return domain.TrialRecord{}, fmt.Errorf("latitude %q is not numeric", cell(row, idx.lat))
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(cell(row, idx.lon)), 64)
	if err != nil {
		return domain.TrialRecord{}, fmt.Errorf("longitude %q is not numeric", cell(row, idx.lon))
	}

	dates := make(map[string]time.Time, len(idx.dates))
	for name, i := range idx.dates {
		d, err := parseDate(cell(row, i))
		if err != nil {
			return domain.TrialRecord{}, fmt.Errorf("date column %q: %w", name, err)
		}
		dates[name] = d
	}

	return domain.TrialRecord{
		ID:          cell(row, idx.id),
		Lat:         lat,
		Lon:         lon,
		CountryCode: l.countryOf(row, idx),
		Dates:       dates,
	}, nil
}

func (l *Loader) countryOf(row []string, idx columnIndexes) string {
	if idx.country >= 0 {
		return cell(row, idx.country)
	}
	return l.CountryDefault
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

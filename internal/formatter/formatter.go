// package formatter exports the winner ledger to files (CSV, Markdown, plain text) and reads roster imports
package formatter

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/raffle/internal/ledger"
	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/gocarina/gocsv"
)

const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the supported export formats.
var Formats = []string{FormatCSV, FormatMarkdown, FormatText}

type winnerRow struct {
	Prize string `csv:"prize"`
	Name  string `csv:"name"`
	WonAt string `csv:"won_at"`
	ID    string `csv:"id"`
}

type rosterRow struct {
	Name string `csv:"name"`
}

// ExportToCSV converts winner records to CSV with columns: prize, name, won_at, id. Rows keep ledger order.
func ExportToCSV(records []models.WinnerRecord) ([]byte, error) {
	rows := make([]winnerRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, winnerRow{
			Prize: rec.Prize,
			Name:  rec.Name,
			WonAt: rec.Timestamp.UTC().Format(time.RFC3339),
			ID:    rec.ID,
		})
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return data, nil
}

// ExportToMarkdown renders the winners grouped by prize, latest winner first
func ExportToMarkdown(records []models.WinnerRecord) ([]byte, error) {
	var buf bytes.Buffer
	groups := ledger.GroupByPrize(records)

	buf.WriteString("# Winners\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n", len(records)))

	for prize, names := range groups.All() {
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", prize))
		for i, name := range names {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the winners grouped by prize as plain text
func ExportToText(records []models.WinnerRecord) ([]byte, error) {
	var buf bytes.Buffer
	groups := ledger.GroupByPrize(records)

	buf.WriteString(fmt.Sprintf("Winners: %d\n", len(records)))
	for prize, names := range groups.All() {
		buf.WriteString(fmt.Sprintf("\n%s\n", prize))
		for _, name := range names {
			buf.WriteString(fmt.Sprintf("  - %s\n", name))
		}
	}

	return buf.Bytes(), nil
}

// Export renders records in format.
func Export(format string, records []models.WinnerRecord) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown, "md":
		return ExportToMarkdown(records)
	case FormatText, "text":
		return ExportToText(records)
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", shared.ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
	}
}

// DefaultFilename returns winners.{ext} for format.
func DefaultFilename(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return "winners.md"
	case FormatText, "text":
		return "winners.txt"
	default:
		return "winners." + strings.ToLower(format)
	}
}

// WriteExport renders records in format and writes them to path, creating parent directories.
//
// Defaults to [DefaultFilename] in the working directory.
func WriteExport(format string, records []models.WinnerRecord, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(format)
	}

	data, err := Export(format, records)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// ParseRoster extracts participant names from an import file.
//
// Files ending in .csv must have a "name" column. Anything else is read as one name per line; blank lines and
// lines starting with # are skipped. Names are trimmed but otherwise kept verbatim; deduplication is left to
// the roster.
func ParseRoster(filename string, data []byte) ([]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return parseRosterCSV(data)
	}

	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	return names, nil
}

func parseRosterCSV(data []byte) ([]string, error) {
	var rows []rosterRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV: %w", shared.ErrInvalidInput, err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := strings.TrimSpace(row.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 && len(rows) > 0 {
		return nil, fmt.Errorf("%w: CSV has no values in a name column", shared.ErrInvalidInput)
	}
	return names, nil
}

// ReadRoster reads and parses the import file at path.
func ReadRoster(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(path, data)
}

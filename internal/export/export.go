// Package export contains the per-format parsers for supervisory controller
// export files: N2 and BACnet driver exports, station resource exports,
// free-text platform details, and Niagara network exports.
//
// Every parser follows the same contract: the input is preprocessed (BOM
// stripped, line endings normalized), a *ParseError is returned only for
// truly unrecoverable input (empty content, all required headers absent, or
// no row surviving validation), and every other malformed row is skipped
// with a logged warning. Parse output is immutable and carries a summary
// plus a deterministic health analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/pkg/models"
)

// ParseError is the fatal per-file parse failure. It aborts one file's
// parse; the batch processor converts it into an error string and moves on.
type ParseError struct {
	Format models.Format
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse: %s", e.Format, e.Reason)
}

// Preprocess strips a leading UTF-8 byte-order mark and normalizes CRLF and
// bare CR line endings to LF. Every parser runs it before anything else.
func Preprocess(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return content
}

// readRows reads CSV records one at a time so a single corrupt row cannot
// abort the remaining rows. Rows that fail CSV parsing are counted and
// logged, not returned.
func readRows(content string, logger *zap.Logger) [][]string {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed CSV row", zap.Error(err))
			continue
		}
		rows = append(rows, record)
	}
	return rows
}

// headerIndex maps trimmed header names to their column positions. Header
// names are matched exactly as the source ecosystem writes them.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// field returns the trimmed cell at the named column, or "" when the column
// is absent or the row is short.
func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// anyHeaderPresent reports whether at least one of the required column
// names is present. A CSV export missing every required header is
// unrecoverable.
func anyHeaderPresent(idx map[string]int, required []string) bool {
	for _, name := range required {
		if _, ok := idx[name]; ok {
			return true
		}
	}
	return false
}

// missingHeaders lists required columns absent from the header row.
func missingHeaders(idx map[string]int, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

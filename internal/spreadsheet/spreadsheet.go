// Package spreadsheet reads uploaded workbook and CSV files into a uniform
// header + rows form for the import pipeline.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/inkwellapp/inkwell-server/internal/errors"
)

// MaxUploadBytes is the default cap on uploaded file size.
const MaxUploadBytes = 10 << 20 // 10MB

// allowedExtensions are the file types the wizard accepts at selection
// time. Legacy .xls passes the gate but is rejected at parse with a
// pointed message; the binary BIFF format is not worth carrying a second
// workbook library for.
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// CheckFile validates name and size before any byte is read or uploaded.
// A failure here is local: no server round-trip happens for a file that
// cannot be imported.
func CheckFile(filename string, size int64, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return errors.Validationf("unsupported file type %q; expected .xlsx, .xls or .csv", ext)
	}
	if size > maxBytes {
		return errors.TooLarge(fmt.Sprintf("file exceeds the %d byte limit", maxBytes))
	}
	return nil
}

// Sheet is the parsed form of one uploaded file: the header row plus data
// rows, every cell a string.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// RowMap returns row i keyed by header. Rows shorter than the header row
// yield empty strings for the missing cells.
func (s *Sheet) RowMap(i int) map[string]string {
	row := s.Rows[i]
	out := make(map[string]string, len(s.Headers))
	for j, h := range s.Headers {
		if j < len(row) {
			out[h] = strings.TrimSpace(row[j])
		} else {
			out[h] = ""
		}
	}
	return out
}

// Parse reads an uploaded file into a Sheet, dispatching on extension.
func Parse(r io.Reader, filename string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(r)
	case ".xls":
		return nil, errors.Validationf("legacy .xls workbooks are not supported; re-save the file as .xlsx")
	case ".csv":
		return parseCSV(r)
	default:
		return nil, errors.Validationf("unsupported file type for %q", filename)
	}
}

// parseXLSX reads the first worksheet of an xlsx workbook.
func parseXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Validationf("could not read workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Validationf("workbook contains no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "read worksheet")
	}
	return fromRows(rows)
}

// parseCSV reads a comma-separated file. Ragged rows are tolerated; cells
// past the header row are dropped by RowMap.
func parseCSV(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Validationf("could not read csv: %v", err)
	}
	return fromRows(records)
}

// fromRows splits raw rows into headers and data, validating the header row.
func fromRows(rows [][]string) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, errors.Validationf("file is empty")
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h == "" {
			return nil, errors.Validationf("header row contains an empty column name")
		}
		if seen[h] {
			return nil, errors.Validationf("duplicate column %q in header row", h)
		}
		seen[h] = true
	}

	return &Sheet{Headers: headers, Rows: rows[1:]}, nil
}

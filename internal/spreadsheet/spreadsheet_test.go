package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCheckFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"xlsx ok", "catalog.xlsx", 1024, false},
		{"xls passes the gate", "catalog.xls", 1024, false},
		{"csv ok", "catalog.csv", 1024, false},
		{"pdf rejected", "catalog.pdf", 1024, true},
		{"no extension rejected", "catalog", 1024, true},
		{"over size limit", "catalog.xlsx", MaxUploadBytes + 1, true},
		{"exactly at limit ok", "catalog.xlsx", MaxUploadBytes, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFile(tt.filename, tt.size, MaxUploadBytes)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	in := "Title,Writer,Price\nPale Fire,Nabokov,24.99\nDune,Herbert,9.99\n"

	sheet, err := Parse(strings.NewReader(in), "catalog.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "Writer", "Price"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)

	row := sheet.RowMap(0)
	assert.Equal(t, "Pale Fire", row["Title"])
	assert.Equal(t, "24.99", row["Price"])
}

func TestParseCSV_RaggedRows(t *testing.T) {
	in := "Title,Writer,Price\nPale Fire,Nabokov\n"

	sheet, err := Parse(strings.NewReader(in), "catalog.csv")
	require.NoError(t, err)

	row := sheet.RowMap(0)
	assert.Equal(t, "Nabokov", row["Writer"])
	assert.Equal(t, "", row["Price"])
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]any{"Title", "Writer", "Price"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]any{"Pale Fire", "Nabokov", 24.99}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	sheet, err := Parse(&buf, "catalog.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "Writer", "Price"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Pale Fire", sheet.RowMap(0)["Title"])
}

func TestParse_LegacyXLSRejected(t *testing.T) {
	_, err := Parse(strings.NewReader("not really xls"), "catalog.xls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".xlsx")
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "catalog.csv")
	assert.Error(t, err)
}

func TestParse_HeaderProblems(t *testing.T) {
	_, err := Parse(strings.NewReader("Title,,Price\nx,y,z\n"), "catalog.csv")
	assert.Error(t, err, "empty column name")

	_, err = Parse(strings.NewReader("Title,Title,Price\nx,y,z\n"), "catalog.csv")
	assert.Error(t, err, "duplicate column name")
}

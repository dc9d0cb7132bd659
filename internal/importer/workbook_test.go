package importer

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestValidateUpload(t *testing.T) {
	xlsxMIME := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	assert.NoError(t, ValidateUpload("students.xlsx", xlsxMIME, 1024))
	assert.NoError(t, ValidateUpload("students.csv", "text/csv; charset=utf-8", 1024))
	assert.NoError(t, ValidateUpload("students.xls", "application/vnd.ms-excel", 1024))
	assert.NoError(t, ValidateUpload("students.csv", "", 1024), "missing content type is tolerated")

	assert.ErrorIs(t, ValidateUpload("students.pdf", "application/pdf", 1024), ErrUnsupportedType)
	assert.ErrorIs(t, ValidateUpload("students.xlsx", "application/zip", 1024), ErrUnsupportedType)
	assert.ErrorIs(t, ValidateUpload("students.xlsx", xlsxMIME, MaxFileSize+1), ErrFileTooLarge)
}

func TestReadCSV(t *testing.T) {
	data := []byte("Roll No,Name,Year,Section\nCS01,Anita,I,A\n,,,\nCS02,Bharat,I,B\n")

	wb, err := Read("roster.csv", data)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, "roster", sheet.Descriptor.Name)
	assert.Equal(t, []string{"Roll No", "Name", "Year", "Section"}, sheet.Header)
	require.Len(t, sheet.Rows, 2, "blank rows dropped")
	assert.Equal(t, []string{"CS01", "Anita", "I", "A"}, sheet.Rows[0])
	assert.Equal(t, 2, sheet.Descriptor.RowCount)
	assert.Equal(t, 0, sheet.Descriptor.StartRow)
}

func TestReadCSVSheetNameInference(t *testing.T) {
	data := []byte("Roll No,Name\nCS01,Anita\n")

	wb, err := Read("II B.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "II", wb.Sheets[0].Descriptor.Year)
	assert.Equal(t, "B", wb.Sheets[0].Descriptor.Section)
}

func TestReadCSVNoData(t *testing.T) {
	_, err := Read("empty.csv", []byte("Roll No,Name\n"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReadCSVTooManyRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("Roll No,Name\n")
	for i := 0; i < MaxDataRows+1; i++ {
		fmt.Fprintf(&b, "R%d,Student %d\n", i, i)
	}

	_, err := Read("big.csv", []byte(b.String()))
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestReadTooLarge(t *testing.T) {
	_, err := Read("big.csv", make([]byte, MaxFileSize+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestReadUnsupportedExtension(t *testing.T) {
	_, err := Read("students.txt", []byte("a,b\n1,2\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestReadExcel(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"II B": {
			{"Roll No", "Name"},
			{"CS01", "Anita"},
			{"CS02", "Bharat"},
		},
	})

	wb, err := Read("students.xlsx", data)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, "II B", sheet.Descriptor.Name)
	assert.Equal(t, "II", sheet.Descriptor.Year)
	assert.Equal(t, "B", sheet.Descriptor.Section)
	assert.Equal(t, []string{"Roll No", "Name"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"CS01", "Anita"}, sheet.Rows[0])
}

func TestReadExcelNormalizesPhonesAndDates(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"I A": {
			{"Roll No", "Student Mobile", "Date of Birth"},
			{"CS01", "+91-98765-43210", "45000"},
		},
	})

	wb, err := Read("students.xlsx", data)
	require.NoError(t, err)

	row := wb.Sheets[0].Rows[0]
	assert.Equal(t, "91987654321", row[1])
	assert.Equal(t, "2023-03-15", row[2])
}

func TestCombine(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"I A": {
			{"Roll No", "Name"},
			{"CS01", "Anita"},
		},
		"I B": {
			{"Roll Number", "Full Name"},
			{"CS02", "Bharat"},
			{"CS03", "Chitra"},
		},
	})

	wb, err := Read("students.xlsx", data)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	header, rows, descs := wb.Combine()

	assert.Equal(t, []string{"Roll No", "Name"}, header, "first sheet's header wins")
	require.Len(t, rows, 3)
	require.Len(t, descs, 2)
	assert.Equal(t, 0, descs[0].StartRow)
	assert.Equal(t, 1, descs[0].RowCount)
	assert.Equal(t, 1, descs[1].StartRow)
	assert.Equal(t, 2, descs[1].RowCount)
}

// buildWorkbook writes an in-memory .xlsx with one block of cells per sheet.
// Sheet iteration order follows the order sheets were added, so callers that
// care about order should use a single sheet or assert by name.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	names := sortedSheetNames(sheets)
	for i, name := range names {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, value))
			}
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func sortedSheetNames(sheets map[string][][]interface{}) []string {
	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Upload limits. Oversized or over-long files are rejected before parsing.
const (
	MaxFileSize = 10 * 1024 * 1024
	MaxDataRows = 1000
)

var (
	ErrNoData          = errors.New("no data found in file")
	ErrFileTooLarge    = errors.New("file size exceeds maximum limit")
	ErrTooManyRows     = errors.New("file exceeds maximum row count")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
	"text/csv":                                                         true,
}

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// SheetDescriptor summarizes one sheet of a parsed workbook. Year and
// Section are inferred from the sheet name and serve as a fallback source
// for rows missing that data.
type SheetDescriptor struct {
	Name     string `json:"name"`
	Year     string `json:"year"`
	Section  string `json:"section"`
	RowCount int    `json:"row_count"`
	StartRow int    `json:"start_row"` // offset into the combined row list
}

// Sheet holds one parsed sheet: a header row plus the data rows that have
// at least one non-empty cell. Rows are padded to header width.
type Sheet struct {
	Descriptor SheetDescriptor
	Header     []string
	Rows       [][]string
}

// Workbook is the full parse result in workbook order.
type Workbook struct {
	Sheets []Sheet
}

// ValidateUpload rejects a file by extension, declared MIME type or size
// before any parsing happens.
func ValidateUpload(filename, contentType string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if contentType != "" {
		// Strip any "; charset=..." suffix browsers attach.
		if i := strings.Index(contentType, ";"); i >= 0 {
			contentType = strings.TrimSpace(contentType[:i])
		}
		if !allowedMIMETypes[contentType] {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
		}
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Read decodes a spreadsheet payload (.xlsx, .xls or .csv) into sheets of
// raw string cells. Date-like columns are rewritten to ISO YYYY-MM-DD where
// the value is unambiguous. Returns ErrNoData when no sheet carries a
// single usable row.
func Read(filename string, data []byte) (*Workbook, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var wb *Workbook
	var err error
	switch ext {
	case ".csv":
		wb, err = readCSV(filename, data)
	case ".xlsx", ".xls":
		wb, err = readExcel(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return nil, err
	}

	total := 0
	offset := 0
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		sheet.Descriptor.RowCount = len(sheet.Rows)
		sheet.Descriptor.StartRow = offset
		offset += len(sheet.Rows)
		total += len(sheet.Rows)

		// Pre-format unambiguous date cells as ISO strings.
		NormalizeCells(sheet.Header, sheet.Rows)
	}
	if total == 0 {
		return nil, ErrNoData
	}
	if total > MaxDataRows {
		return nil, fmt.Errorf("%w: %d rows (max %d)", ErrTooManyRows, total, MaxDataRows)
	}

	return wb, nil
}

// Combine flattens the workbook into a single header, row list and
// descriptor list. The first sheet's header wins; every sheet's rows are
// appended in workbook order.
func (wb *Workbook) Combine() (header []string, rows [][]string, descs []SheetDescriptor) {
	for _, sheet := range wb.Sheets {
		if header == nil && len(sheet.Header) > 0 {
			header = sheet.Header
		}
		rows = append(rows, sheet.Rows...)
		descs = append(descs, sheet.Descriptor)
	}
	return header, rows, descs
}

func readExcel(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}

	wb := &Workbook{}
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, buildSheet(name, rows))
	}
	return wb, nil
}

func readCSV(filename string, data []byte) (*Workbook, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}

	// A CSV is a single synthetic sheet named after the file.
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return &Workbook{Sheets: []Sheet{buildSheet(base, rows)}}, nil
}

func buildSheet(name string, raw [][]string) Sheet {
	year, section := ParseYearAndSection(name)

	sheet := Sheet{
		Descriptor: SheetDescriptor{Name: name, Year: year, Section: section},
	}
	if len(raw) == 0 {
		return sheet
	}

	sheet.Header = trimRight(raw[0])
	width := len(sheet.Header)
	for _, row := range raw[1:] {
		if !hasData(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet
}

func hasData(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

func trimRight(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

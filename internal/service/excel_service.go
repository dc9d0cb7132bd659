package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"campus-admin/internal/catalog"
	"campus-admin/internal/importer"
	"campus-admin/internal/models"
)

type ExcelService struct {
	catalog catalog.Catalog
}

func NewExcelService(cat catalog.Catalog) *ExcelService {
	return &ExcelService{catalog: cat}
}

// GenerateTemplate creates the import template workbook: one header cell
// per catalog field label, plus a single reference row stating
// "Required: {type}" or "Optional: {type}" for each column.
func (s *ExcelService) GenerateTemplate(outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Students"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	for i, field := range s.catalog.Fields {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, field.Label)

		hint := "Optional"
		if field.Required {
			hint = "Required"
		}
		cell = fmt.Sprintf("%s2", getColumnName(i))
		f.SetCellValue(sheetName, cell, fmt.Sprintf("%s: %s", hint, field.Type))

		width := float64(len(field.Label)) + 6
		if width < 15 {
			width = 15
		}
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, width)
	}

	// Set header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(s.catalog.Fields)-1)), headerStyle)

	// Add select options as reference below the data row
	noteRow := 4
	for _, field := range s.catalog.Fields {
		if field.Type != catalog.TypeSelect {
			continue
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", noteRow),
			fmt.Sprintf("%s options: %s", field.Label, strings.Join(field.Options, ", ")))
		noteRow++
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// GenerateErrorReport creates an Excel report with the session's mapping
// and validation errors plus a summary block.
func (s *ExcelService) GenerateErrorReport(session *models.ImportSession, errs []importer.ValidationError, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Set headers
	headers := []string{
		"Row Number", "Kind", "Field", "Error Message", "Invalid Value",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	// Set header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	// Write error data
	errorStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFFFCC"}, Pattern: 1},
	})
	for rowIdx, verr := range errs {
		row := rowIdx + 2
		rowNumber := interface{}(verr.Row)
		if verr.Row == 0 {
			rowNumber = "-"
		}
		values := []interface{}{
			rowNumber,
			verr.Kind,
			verr.Field,
			verr.Message,
			verr.Value,
		}

		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", getColumnName(len(headers)-1), row), errorStyle)
	}

	// Set column widths
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 20)
	f.SetColWidth(sheetName, "D", "D", 50)
	f.SetColWidth(sheetName, "E", "E", 25)

	// Add summary section
	summaryStartRow := len(errs) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "File:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), session.Filename)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Total Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), session.TotalRows)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Errors Found:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), len(errs))

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}

package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Generates a multi-sheet workbook that exercises the header and
// year/section heuristics: explicit Year/Section columns, a "Class" column
// holding section letters, and a sheet whose name carries the year/section.
func main() {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	// Sheet 1: clean explicit columns, mixed year formats.
	sheet1 := "Students"
	index, err := f.NewSheet(sheet1)
	if err != nil {
		fmt.Printf("Error creating sheet: %v\n", err)
		return
	}
	writeSheet(f, sheet1, headerStyle,
		[]string{"Roll Number", "First Name", "Year", "Section", "Email", "Student Mobile"},
		[][]interface{}{
			{"CS001", "Anita", "II", "B", "anita@example.edu", "9876543210"},
			{"CS002", "Bharat", "2nd Year", "B", "bharat@example.edu", "9123456780"},
			{"CS003", "Chitra", "Second Year", "B", "chitra@example.edu", "+91-98765-43211"},
			{"CS004", "Deepak", "2", "B", "deepak@example.edu", "9988776655"},
		})

	// Sheet 2: "Class" column holding section letters, year from sheet name.
	sheet2 := "III A"
	if _, err := f.NewSheet(sheet2); err != nil {
		fmt.Printf("Error creating sheet: %v\n", err)
		return
	}
	writeSheet(f, sheet2, headerStyle,
		[]string{"Admission Number", "Full Name", "Class", "Date of Birth"},
		[][]interface{}{
			{"EC101", "Esha", "A", "2004-06-12"},
			{"EC102", "Farhan", "A", "2004-09-30"},
			{"EC103", "Gita", "A", "2005-01-18"},
		})

	// Sheet 3: no year/section columns at all; sheet name carries both.
	sheet3 := "First Year C"
	if _, err := f.NewSheet(sheet3); err != nil {
		fmt.Printf("Error creating sheet: %v\n", err)
		return
	}
	writeSheet(f, sheet3, headerStyle,
		[]string{"Roll No", "Name", "Father Name"},
		[][]interface{}{
			{"ME201", "Hari", "Mohan"},
			{"ME202", "Indira", "Prakash"},
		})

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	outputPath := "test_student_import.xlsx"
	if err := f.SaveAs(outputPath); err != nil {
		fmt.Printf("Error saving file: %v\n", err)
		return
	}

	fmt.Printf("Test file generated: %s\n", outputPath)
	fmt.Println("Sheets: Students (explicit columns), III A (class column), First Year C (sheet-name fallback)")
}

func writeSheet(f *excelize.File, sheetName string, headerStyle int, headers []string, rows [][]interface{}) {
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, rowData := range rows {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 18)
	}
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}

package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-admin/internal/catalog"
)

func TestValidateRowsMappingError(t *testing.T) {
	cat := catalog.Student()
	header := []string{"Full Name"}
	rows := [][]string{{"Anita"}}
	mapping := Mapping{"first_name": 0}

	errs := ValidateRows(cat, mapping, header, rows)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrorKindMapping, errs[0].Kind)
	assert.Equal(t, "Roll Number", errs[0].Field)
	assert.Equal(t, 0, errs[0].Row, "mapping errors carry no row")
	assert.Contains(t, errs[0].Message, "no column is mapped")
}

func TestValidateRowsRequiredCell(t *testing.T) {
	cat := catalog.Student()
	header := []string{"Roll Number", "First Name"}
	rows := [][]string{
		{"CS01", "Anita"},
		{"", "Bharat"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1}

	errs := ValidateRows(cat, mapping, header, rows)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrorKindValidation, errs[0].Kind)
	assert.Equal(t, 2, errs[0].Row, "rows are 1-based")
	assert.Equal(t, "Roll Number", errs[0].Field)
}

func TestValidateRowsAadhaarDigits(t *testing.T) {
	cat := catalog.Student()
	mapping := Mapping{"roll_number": 0, "first_name": 1, "aadhar_number": 2}
	header := []string{"Roll Number", "First Name", "Aadhar Number"}
	rows := [][]string{
		{"CS01", "Anita", "1234 5678 9012"},
		{"CS02", "Bharat", "1234"},
	}

	errs := ValidateRows(cat, mapping, header, rows)

	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Contains(t, errs[0].Message, "exactly 12 digits")
	assert.Equal(t, "1234", errs[0].Value)
}

func TestValidateRowsEmail(t *testing.T) {
	cat := catalog.Student()
	mapping := Mapping{"roll_number": 0, "first_name": 1, "email": 2}
	header := []string{"Roll Number", "First Name", "Email"}
	rows := [][]string{
		{"CS01", "Anita", "anita@example.edu"},
		{"CS02", "Bharat", "broken@nodot"},
		{"CS03", "Chitra", "not an address"}, // no "@", left alone
	}

	errs := ValidateRows(cat, mapping, header, rows)

	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Contains(t, errs[0].Message, "email")
}

func TestValidateRowsPhone(t *testing.T) {
	cat := catalog.Student()
	mapping := Mapping{"roll_number": 0, "first_name": 1, "student_mobile": 2}
	header := []string{"Roll Number", "First Name", "Student Mobile"}
	rows := [][]string{
		{"CS01", "Anita", "9876543210"},
		{"CS02", "Bharat", "12345"},
		{"CS03", "Chitra", "1234567890"}, // 10 digits, bad leading digit
		{"CS04", "Deepak", "919876543210"},
	}

	errs := ValidateRows(cat, mapping, header, rows)

	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Row)
	assert.Contains(t, errs[0].Message, "9-11 digits")
	assert.Equal(t, 3, errs[1].Row)
	assert.Contains(t, errs[1].Message, "start with 6-9")
}

func TestValidateRowsSelect(t *testing.T) {
	cat := catalog.Student()
	mapping := Mapping{"roll_number": 0, "first_name": 1, "gender": 2}
	header := []string{"Roll Number", "First Name", "Gender"}
	rows := [][]string{
		{"CS01", "Anita", "female"}, // options match case-insensitively
		{"CS02", "Bharat", "Gender"}, // stray header row, skipped
		{"CS03", "Chitra", "Maybe"},
	}

	errs := ValidateRows(cat, mapping, header, rows)

	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Row)
	assert.Contains(t, errs[0].Message, "must be one of")
}

func TestValidateRowsNumberAndDate(t *testing.T) {
	cat := catalog.Student()
	mapping := Mapping{"roll_number": 0, "first_name": 1, "tuition_fee": 2, "date_of_birth": 3}
	header := []string{"Roll Number", "First Name", "Tuition Fee", "Date of Birth"}
	rows := [][]string{
		{"CS01", "Anita", "1500.50", "2004-06-12"},
		{"CS02", "Bharat", "-5", "45000"},
		{"CS03", "Chitra", "abc", "not-a-date"},
	}

	errs := ValidateRows(cat, mapping, header, rows)

	// Errors come back in catalog field order, then row order.
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Message, "not a valid date")
	assert.Equal(t, 3, errs[0].Row)
	assert.Contains(t, errs[1].Message, "non-negative number")
	assert.Equal(t, 2, errs[1].Row)
	assert.Contains(t, errs[2].Message, "non-negative number")
	assert.Equal(t, 3, errs[2].Row)
}

func TestValidateRowsCleanFile(t *testing.T) {
	cat := catalog.Student()
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}
	header := []string{"Admission Number", "Full Name", "Year", "Section"}
	rows := [][]string{
		{"CS01", "Anita", "I", "A"},
		{"CS02", "Bharat", "I", "A"},
	}

	errs := ValidateRows(cat, mapping, header, rows)
	assert.Empty(t, errs)
}

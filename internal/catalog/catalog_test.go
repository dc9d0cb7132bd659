package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Roll Number", "roll number"},
		{"Roll_No.", "roll no"},
		{"  ROLL-NO  ", "roll no"},
		{"Date of Birth*", "date of birth"},
		{"Email (ID)", "email id"},
		{"", ""},
		{"***", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.input), "input %q", tt.input)
	}
}

func TestMatchHeader(t *testing.T) {
	cat := Student()

	tests := []struct {
		header string
		field  string
	}{
		{"Roll Number", "roll_number"},
		{"Admission No", "roll_number"},
		{"Reg_No", "roll_number"},
		{"Full Name", "first_name"},
		{"DOB", "date_of_birth"},
		{"Aadhaar", "aadhar_number"},
		{"Phone Number", "student_mobile"},
		{"Branch", "department"},
		{"Date of Joining", "enrollment_date"},
		{"Random Column", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.field, cat.MatchHeader(tt.header), "header %q", tt.header)
	}
}

func TestStudentCatalog(t *testing.T) {
	cat := Student()
	require.NotEmpty(t, cat.Fields)

	roll, ok := cat.FieldByName("roll_number")
	require.True(t, ok)
	assert.True(t, roll.Required)

	first, ok := cat.FieldByName("first_name")
	require.True(t, ok)
	assert.True(t, first.Required)

	aadhar, ok := cat.FieldByName("aadhar_number")
	require.True(t, ok)
	assert.Equal(t, 12, aadhar.ExactDigits)

	gender, ok := cat.FieldByName("gender")
	require.True(t, ok)
	assert.Equal(t, TypeSelect, gender.Type)
	assert.Equal(t, []string{"Male", "Female", "Other"}, gender.Options)

	_, ok = cat.FieldByName("missing")
	assert.False(t, ok)

	// Only the two identity fields are mandatory.
	var required []string
	for _, f := range cat.Fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	assert.Equal(t, []string{"roll_number", "first_name"}, required)
}

package catalog

import "strings"

// Field types understood by the validator.
const (
	TypeText     = "text"
	TypeDate     = "date"
	TypeSelect   = "select"
	TypeTel      = "tel"
	TypeEmail    = "email"
	TypeNumber   = "number"
	TypeTextarea = "textarea"
)

// Field describes one logical column of the student record schema.
type Field struct {
	Name        string
	Label       string
	Type        string
	Required    bool
	Options     []string
	ExactDigits int // non-zero for fixed-length numeric identifiers (aadhaar)
}

// Catalog is the fixed student field schema plus the header-synonym table the
// auto-mapper matches uploaded headers against. Built once, never mutated.
type Catalog struct {
	Fields   []Field
	synonyms map[string]string // normalized header -> field name
	byName   map[string]Field
}

// Student returns the student import catalog.
func Student() Catalog {
	fields := []Field{
		{Name: "roll_number", Label: "Roll Number", Type: TypeText, Required: true},
		{Name: "first_name", Label: "First Name", Type: TypeText, Required: true},
		{Name: "last_name", Label: "Last Name", Type: TypeText},
		{Name: "date_of_birth", Label: "Date of Birth", Type: TypeDate},
		{Name: "gender", Label: "Gender", Type: TypeSelect, Options: []string{"Male", "Female", "Other"}},
		{Name: "year_of_study", Label: "Year", Type: TypeText},
		{Name: "section", Label: "Section", Type: TypeText},
		{Name: "academic_year", Label: "Academic Year", Type: TypeText},
		{Name: "department", Label: "Department", Type: TypeText},
		{Name: "email", Label: "Email", Type: TypeEmail},
		{Name: "student_mobile", Label: "Student Mobile", Type: TypeTel},
		{Name: "father_name", Label: "Father Name", Type: TypeText},
		{Name: "father_mobile", Label: "Father Mobile", Type: TypeTel},
		{Name: "mother_name", Label: "Mother Name", Type: TypeText},
		{Name: "address", Label: "Address", Type: TypeTextarea},
		{Name: "city", Label: "City", Type: TypeText},
		{Name: "state", Label: "State", Type: TypeText},
		{Name: "pincode", Label: "Pincode", Type: TypeText},
		{Name: "aadhar_number", Label: "Aadhar Number", Type: TypeText, ExactDigits: 12},
		{Name: "religion", Label: "Religion", Type: TypeText},
		{Name: "caste", Label: "Caste", Type: TypeText},
		{Name: "guardian_name", Label: "Guardian Name", Type: TypeText},
		{Name: "guardian_mobile", Label: "Guardian Mobile", Type: TypeTel},
		{Name: "guardian_relation", Label: "Guardian Relation", Type: TypeText},
		{Name: "admission_fee", Label: "Admission Fee", Type: TypeNumber},
		{Name: "tuition_fee", Label: "Tuition Fee", Type: TypeNumber},
		{Name: "status", Label: "Status", Type: TypeSelect, Options: []string{"Active", "Inactive", "Alumni"}},
		{Name: "enrollment_date", Label: "Enrollment Date", Type: TypeDate},
	}

	synonyms := map[string]string{
		"roll number":       "roll_number",
		"roll no":           "roll_number",
		"rollno":            "roll_number",
		"admission number":  "roll_number",
		"admission no":      "roll_number",
		"adm no":            "roll_number",
		"reg no":            "roll_number",
		"registration no":   "roll_number",
		"first name":        "first_name",
		"name":              "first_name",
		"full name":         "first_name",
		"student name":      "first_name",
		"last name":         "last_name",
		"surname":           "last_name",
		"date of birth":     "date_of_birth",
		"dob":               "date_of_birth",
		"birth date":        "date_of_birth",
		"gender":            "gender",
		"sex":               "gender",
		"year":              "year_of_study",
		"year of study":     "year_of_study",
		"study year":        "year_of_study",
		"section":           "section",
		"div":               "section",
		"division":          "section",
		"academic year":     "academic_year",
		"department":        "department",
		"dept":              "department",
		"branch":            "department",
		"email":             "email",
		"email id":          "email",
		"mail":              "email",
		"student mobile":    "student_mobile",
		"mobile":            "student_mobile",
		"phone":             "student_mobile",
		"phone number":      "student_mobile",
		"mobile number":     "student_mobile",
		"contact":           "student_mobile",
		"father name":       "father_name",
		"fathers name":      "father_name",
		"father mobile":     "father_mobile",
		"father phone":      "father_mobile",
		"mother name":       "mother_name",
		"mothers name":      "mother_name",
		"address":           "address",
		"city":              "city",
		"state":             "state",
		"pincode":           "pincode",
		"pin code":          "pincode",
		"zip":               "pincode",
		"aadhar number":     "aadhar_number",
		"aadhar":            "aadhar_number",
		"aadhaar":           "aadhar_number",
		"aadhaar number":    "aadhar_number",
		"religion":          "religion",
		"caste":             "caste",
		"guardian name":     "guardian_name",
		"guardian mobile":   "guardian_mobile",
		"guardian relation": "guardian_relation",
		"admission fee":     "admission_fee",
		"tuition fee":       "tuition_fee",
		"fee":               "tuition_fee",
		"status":            "status",
		"enrollment date":   "enrollment_date",
		"admission date":    "enrollment_date",
		"date of joining":   "enrollment_date",
	}

	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	return Catalog{Fields: fields, synonyms: synonyms, byName: byName}
}

// FieldByName looks up a field definition by its logical name.
func (c Catalog) FieldByName(name string) (Field, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// MatchHeader resolves an uploaded header cell to a field name via the
// synonym table. Returns "" when no synonym matches.
func (c Catalog) MatchHeader(header string) string {
	return c.synonyms[NormalizeHeader(header)]
}

// NormalizeHeader lowercases a header cell and strips the punctuation noise
// spreadsheets accumulate, so "Roll_No." and "roll no" compare equal.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"campus-admin/internal/catalog"
)

// ErrValidationPending blocks processing while a session still carries
// unresolved validation errors.
var ErrValidationPending = errors.New("validation errors must be resolved before import")

// Error kinds. Mapping errors mean a required field has no column at all;
// validation errors are per-row rule violations. Both block import.
const (
	ErrorKindMapping    = "mapping"
	ErrorKindValidation = "validation"
)

// ValidationError is a single mapping or row-level problem. Row is 1-based
// relative to the header row, 0 for mapping errors.
type ValidationError struct {
	Kind    string `json:"kind"`
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRows applies the catalog's field rules to every mapped column and
// returns the full error list. The result replaces any previous list
// wholesale; callers must not merge.
func ValidateRows(cat catalog.Catalog, mapping Mapping, header []string, rows [][]string) []ValidationError {
	var errs []ValidationError

	for _, field := range cat.Fields {
		idx := mapping.Index(field.Name)

		if idx < 0 {
			if field.Required {
				errs = append(errs, ValidationError{
					Kind:    ErrorKindMapping,
					Field:   field.Label,
					Message: fmt.Sprintf("%s is required but no column is mapped", field.Label),
				})
			}
			continue
		}

		for i, row := range rows {
			value := cellAt(row, idx)
			if err := validateCell(field, value); err != "" {
				errs = append(errs, ValidationError{
					Kind:    ErrorKindValidation,
					Row:     i + 1,
					Field:   field.Label,
					Message: err,
					Value:   value,
				})
			}
		}
	}

	return errs
}

// validateCell returns an error message, or "" when the value passes.
func validateCell(field catalog.Field, value string) string {
	if value == "" {
		if field.Required {
			return fmt.Sprintf("%s is required", field.Label)
		}
		return ""
	}

	// A cell equal to the field's own label is a stray header row repeated
	// in the data; skip it silently.
	if strings.EqualFold(value, field.Label) {
		return ""
	}

	if field.ExactDigits > 0 {
		digits := stripNonDigits(value)
		if len(digits) != field.ExactDigits {
			return fmt.Sprintf("%s must have exactly %d digits", field.Label, field.ExactDigits)
		}
		return ""
	}

	switch field.Type {
	case catalog.TypeEmail:
		if strings.Contains(value, "@") && !emailPattern.MatchString(value) {
			return fmt.Sprintf("%s is not a valid email address", field.Label)
		}
	case catalog.TypeTel:
		phone := CleanPhone(value)
		if !phone.ValidLength {
			return fmt.Sprintf("%s must have 9-11 digits", field.Label)
		}
		if phone.Digits == 10 && (phone.Cleaned[0] < '6' || phone.Cleaned[0] > '9') {
			return fmt.Sprintf("%s must start with 6-9", field.Label)
		}
	case catalog.TypeSelect:
		for _, opt := range field.Options {
			if strings.EqualFold(value, opt) {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", field.Label, strings.Join(field.Options, ", "))
	case catalog.TypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || n < 0 {
			return fmt.Sprintf("%s must be a non-negative number", field.Label)
		}
	case catalog.TypeDate:
		if _, ok := NormalizeDate(value); !ok {
			return fmt.Sprintf("%s is not a valid date", field.Label)
		}
	}

	return ""
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// UnknownToken is the sentinel for a year or section that could not be
// resolved by any heuristic.
const UnknownToken = "U"

// Hidden columns appended to every normalized sheet. They carry the
// year/section inferred from the sheet name verbatim and act as the
// highest-priority source at import time.
const (
	SheetYearColumn    = "SheetYear"
	SheetSectionColumn = "SheetSection"
)

var romanOfYear = map[int]string{
	1: "I", 2: "II", 3: "III", 4: "IV", 5: "V", 6: "VI",
	7: "VII", 8: "VIII", 9: "IX", 10: "X", 11: "XI", 12: "XII",
}

var yearOfRoman = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6,
	"VII": 7, "VIII": 8, "IX": 9, "X": 10, "XI": 11, "XII": 12,
}

var yearOfWritten = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5, "sixth": 6,
	"seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10, "eleventh": 11, "twelfth": 12,
}

// greekSections lists the accepted section names beyond A-Z, in classical
// order. The order doubles as the sort rank after the latin letters.
var greekSections = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta",
	"Iota", "Kappa", "Lambda", "Mu", "Nu", "Xi", "Omicron", "Pi", "Rho",
	"Sigma", "Tau", "Upsilon", "Phi", "Chi", "Psi", "Omega",
}

var greekSectionRank = func() map[string]int {
	m := make(map[string]int, len(greekSections))
	for i, name := range greekSections {
		m[strings.ToLower(name)] = 27 + i
	}
	return m
}()

var writtenAlt = "first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth"

// Grammar patterns, matched in order. First match wins.
var (
	reRomanLetter   = regexp.MustCompile(`^([IVXivx]+)[\s\-]+([A-Za-z])$`)
	reLetterRoman   = regexp.MustCompile(`^([A-Za-z])[\s\-]+([IVXivx]+)$`)
	reLetterNumber  = regexp.MustCompile(`^([A-Za-z])[\s\-]+(\d{1,2})$`)
	reOrdinalLetter = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)[\s\-]*(?:year|yr)?[\s\-]*([A-Za-z])?$`)
	reWrittenLetter = regexp.MustCompile(`(?i)^(` + writtenAlt + `)[\s\-]+(?:year|yr)[\s\-]*([A-Za-z])?$`)
	reYearPrefixed  = regexp.MustCompile(`(?i)^year[\s\-]+([IVXivx]+|\d{1,2})[\s\-]*([A-Za-z])?$`)
	reBareRoman     = regexp.MustCompile(`^[IVXivx]+$`)
	reBareNumber    = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?(?:[\s\-]+(?:year|yr))?$`)
	reBareWritten   = regexp.MustCompile(`(?i)^(` + writtenAlt + `)(?:[\s\-]+(?:year|yr))?$`)
	reBareLetter    = regexp.MustCompile(`^[A-Za-z]$`)
)

// ParseYearAndSection splits a free-form year/section token ("III A", "A-II",
// "2nd Year B", "Second Year C", "Year IV D", "alpha", ...) into its
// canonical parts. Either part may come back empty; an unrecognized string
// yields both empty. It never fails.
func ParseYearAndSection(s string) (year, section string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}

	if m := reRomanLetter.FindStringSubmatch(s); m != nil {
		if y, ok := yearOfRoman[strings.ToUpper(m[1])]; ok {
			return romanOfYear[y], strings.ToUpper(m[2])
		}
	}
	if m := reLetterRoman.FindStringSubmatch(s); m != nil {
		if y, ok := yearOfRoman[strings.ToUpper(m[2])]; ok {
			return romanOfYear[y], strings.ToUpper(m[1])
		}
	}
	if m := reLetterNumber.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			if r, ok := romanOfYear[n]; ok {
				return r, strings.ToUpper(m[1])
			}
		}
	}
	if m := reOrdinalLetter.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if r, ok := romanOfYear[n]; ok {
				return r, strings.ToUpper(m[2])
			}
		}
	}
	if m := reWrittenLetter.FindStringSubmatch(s); m != nil {
		n := yearOfWritten[strings.ToLower(m[1])]
		return romanOfYear[n], strings.ToUpper(m[2])
	}
	if m := reYearPrefixed.FindStringSubmatch(s); m != nil {
		tok := strings.ToUpper(m[1])
		if y, ok := yearOfRoman[tok]; ok {
			return romanOfYear[y], strings.ToUpper(m[2])
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			if r, ok := romanOfYear[n]; ok {
				return r, strings.ToUpper(m[2])
			}
		}
	}
	if reBareRoman.MatchString(s) {
		if y, ok := yearOfRoman[strings.ToUpper(s)]; ok {
			return romanOfYear[y], ""
		}
	}
	if m := reBareNumber.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if r, ok := romanOfYear[n]; ok {
				return r, ""
			}
		}
	}
	if m := reBareWritten.FindStringSubmatch(s); m != nil {
		return romanOfYear[yearOfWritten[strings.ToLower(m[1])]], ""
	}
	if reBareLetter.MatchString(s) {
		return "", strings.ToUpper(s)
	}
	if rank, ok := greekSectionRank[strings.ToLower(s)]; ok {
		return "", greekSections[rank-27]
	}

	return "", ""
}

// ToRomanYear canonicalizes a year token to a Roman numeral I-XII. Numeric
// ("2"), ordinal ("2nd Year") and written ("Second Year") forms are
// converted; already-Roman input is uppercased; anything unrecognized passes
// through unchanged.
func ToRomanYear(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return s
	}
	if y, ok := yearOfRoman[strings.ToUpper(t)]; ok {
		return romanOfYear[y]
	}
	if m := reBareNumber.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if r, ok := romanOfYear[n]; ok {
				return r
			}
		}
	}
	if m := reBareWritten.FindStringSubmatch(t); m != nil {
		return romanOfYear[yearOfWritten[strings.ToLower(m[1])]]
	}
	return s
}

// CanonicalSection uppercases a single-letter section and capitalizes a
// Greek section name. Unrecognized input passes through unchanged.
func CanonicalSection(s string) string {
	t := strings.TrimSpace(s)
	if reBareLetter.MatchString(t) {
		return strings.ToUpper(t)
	}
	if rank, ok := greekSectionRank[strings.ToLower(t)]; ok {
		return greekSections[rank-27]
	}
	return s
}

var placeholders = map[string]bool{
	"": true, "-": true, "—": true, "na": true, "n/a": true, "unknown": true,
}

// IsPlaceholder reports whether a cell holds filler rather than data.
func IsPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// Phone is the result of scrubbing a phone-like value.
type Phone struct {
	Cleaned     string
	Digits      int
	ValidLength bool
}

// CleanPhone strips everything but digits and truncates to 11 digits.
// 9-11 digits is a valid length; shorter or longer input is kept (cleaned)
// but flagged.
func CleanPhone(s string) Phone {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 11 {
		digits = digits[:11]
	}
	return Phone{
		Cleaned:     digits,
		Digits:      len(digits),
		ValidLength: len(digits) >= 9 && len(digits) <= 11,
	}
}

// excelEpochOffset is the number of days between the spreadsheet serial
// epoch (1899-12-30) and the Unix epoch.
const excelEpochOffset = 25569

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"01-02-06",
	"01/02/06",
	"2006-01-02 15:04:05",
	"01/02/2006 3:04:05 PM",
	"Jan 02, 2006",
	"02 Jan 2006",
	"02-Jan-2006",
}

// NormalizeDate converts a cell to an ISO YYYY-MM-DD string. It accepts ISO
// input, spreadsheet serial numbers and the usual written layouts. The
// second return is false when the value cannot be read as a date.
func NormalizeDate(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", false
	}

	if ts, err := time.Parse("2006-01-02", t); err == nil {
		return ts.Format("2006-01-02"), true
	}

	// Spreadsheet serial date: days since 1899-12-30.
	if serial, err := strconv.ParseFloat(t, 64); err == nil {
		if serial > 0 && serial < 200000 {
			sec := int64((serial - excelEpochOffset) * 86400)
			return time.Unix(sec, 0).UTC().Format("2006-01-02"), true
		}
		return "", false
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, t); err == nil {
			return ts.Format("2006-01-02"), true
		}
	}

	return "", false
}

// EnrichRows appends sheet-derived year/section data to the combined row
// set and returns a new header and rows; the inputs are not mutated.
//
// When the sheet has no year/section columns at all, explicit "Year" and
// "Section" columns are appended, filled from each row's sheet descriptor.
// When the columns exist, placeholder cells are backfilled from the sheet
// value. The hidden SheetYear/SheetSection columns are always appended.
func EnrichRows(header []string, rows [][]string, descs []SheetDescriptor) ([]string, [][]string) {
	yearIdx, sectionIdx := DetectYearAndSectionIndexes(header, rows)

	newHeader := append([]string{}, header...)
	appendYear := yearIdx < 0
	appendSection := sectionIdx < 0
	if appendYear {
		yearIdx = len(newHeader)
		newHeader = append(newHeader, "Year")
	}
	if appendSection {
		sectionIdx = len(newHeader)
		newHeader = append(newHeader, "Section")
	}
	sheetYearIdx := len(newHeader)
	newHeader = append(newHeader, SheetYearColumn, SheetSectionColumn)

	newRows := make([][]string, len(rows))
	for i, row := range rows {
		desc := descriptorFor(descs, i)
		cells := make([]string, len(newHeader))
		copy(cells, row)

		if appendYear || IsPlaceholder(cells[yearIdx]) {
			cells[yearIdx] = desc.Year
		}
		if appendSection || IsPlaceholder(cells[sectionIdx]) {
			cells[sectionIdx] = desc.Section
		}
		cells[sheetYearIdx] = desc.Year
		cells[sheetYearIdx+1] = desc.Section

		newRows[i] = cells
	}

	return newHeader, newRows
}

// NormalizeCells rewrites phone-like and date-like cells in place. Phone
// columns (header containing "phone" or "mobile") are digit-stripped; date
// columns (header containing "date" or "dob") are ISO-formatted when the
// value is readable as a date.
func NormalizeCells(header []string, rows [][]string) {
	for col, name := range header {
		lower := strings.ToLower(name)
		isPhone := strings.Contains(lower, "phone") || strings.Contains(lower, "mobile")
		isDate := strings.Contains(lower, "date") || strings.Contains(lower, "dob")
		if !isPhone && !isDate {
			continue
		}
		for _, row := range rows {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			if isPhone {
				row[col] = CleanPhone(row[col]).Cleaned
			} else if iso, ok := NormalizeDate(row[col]); ok {
				row[col] = iso
			}
		}
	}
}

func descriptorFor(descs []SheetDescriptor, rowIdx int) SheetDescriptor {
	for _, d := range descs {
		if rowIdx >= d.StartRow && rowIdx < d.StartRow+d.RowCount {
			return d
		}
	}
	return SheetDescriptor{}
}

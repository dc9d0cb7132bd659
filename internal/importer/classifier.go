package importer

import (
	"strings"

	"campus-admin/internal/catalog"
)

// classifierSampleSize caps how many rows the majority-vote heuristics look
// at. Real sheets rarely need more to settle "Class" vs "Section".
const classifierSampleSize = 25

// Mapping assigns each logical field name a zero-based column index.
type Mapping map[string]int

// Index returns the mapped column for a field, or -1 when unmapped.
func (m Mapping) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return -1
}

// DetectYearAndSectionIndexes locates the "year of study" and "section"
// columns in a header row, sampling up to 25 data rows to break ties.
// Returns -1 for a column that cannot be found.
//
// Heuristics are tried in priority order, first match wins:
//  1. exact header "year" / "section"
//  2. a "class" header, classified by majority vote over its sampled
//     values: mostly single letters means section, otherwise year
//  3. substring match: "year" / "section", "div", "division"
//  4. a found year column whose samples are mostly single letters is
//     reassigned to section, and the exact search for "year" reruns
func DetectYearAndSectionIndexes(header []string, rows [][]string) (yearIdx, sectionIdx int) {
	yearIdx, sectionIdx = -1, -1
	sample := rows
	if len(sample) > classifierSampleSize {
		sample = sample[:classifierSampleSize]
	}

	// Stage 1: exact match.
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if yearIdx < 0 && name == "year" {
			yearIdx = i
		}
		if sectionIdx < 0 && name == "section" {
			sectionIdx = i
		}
	}

	// Stage 2: a literal "class" header means year or section depending on
	// what actually sits in the column.
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) != "class" {
			continue
		}
		if mostlySingleLetters(sample, i, false) {
			if sectionIdx < 0 {
				sectionIdx = i
			}
		} else if yearIdx < 0 {
			yearIdx = i
		}
		break
	}

	// Stage 3: substring fallback.
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if yearIdx < 0 && strings.Contains(name, "year") {
			yearIdx = i
		}
		if sectionIdx < 0 && (strings.Contains(name, "section") ||
			strings.Contains(name, "division") || strings.Contains(name, "div")) {
			sectionIdx = i
		}
	}

	// Stage 4: a "year" column that actually holds section letters.
	if yearIdx >= 0 && sectionIdx < 0 && mostlySingleLetters(sample, yearIdx, true) {
		sectionIdx = yearIdx
		yearIdx = -1
		for i, h := range header {
			if i != sectionIdx && strings.ToLower(strings.TrimSpace(h)) == "year" {
				yearIdx = i
				break
			}
		}
	}

	return yearIdx, sectionIdx
}

// mostlySingleLetters reports whether a majority of the non-empty sampled
// values in a column are single alphabetic letters. With excludeRoman set,
// single-letter Roman numerals (I, V, X) do not count as letters.
func mostlySingleLetters(sample [][]string, col int, excludeRoman bool) bool {
	letters, nonEmpty := 0, 0
	for _, row := range sample {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		nonEmpty++
		if len(v) == 1 && isLetter(v[0]) {
			if excludeRoman {
				if _, roman := yearOfRoman[strings.ToUpper(v)]; roman {
					continue
				}
			}
			letters++
		}
	}
	return nonEmpty > 0 && letters*2 > nonEmpty
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// BuildColumnMapping auto-maps header columns to catalog fields. It is a
// pure function over (catalog, header, rows): synonym matches are folded
// left to right, the first match per field and per column wins, and the
// year/section columns come from DetectYearAndSectionIndexes so the two
// never land on the same column.
func BuildColumnMapping(cat catalog.Catalog, header []string, rows [][]string) Mapping {
	mapping := Mapping{}
	claimed := map[int]bool{}

	if yearIdx, sectionIdx := DetectYearAndSectionIndexes(header, rows); true {
		if yearIdx >= 0 {
			mapping["year_of_study"] = yearIdx
			claimed[yearIdx] = true
		}
		if sectionIdx >= 0 && !claimed[sectionIdx] {
			mapping["section"] = sectionIdx
			claimed[sectionIdx] = true
		}
	}

	for i, h := range header {
		if claimed[i] {
			continue
		}
		field := cat.MatchHeader(h)
		if field == "" {
			continue
		}
		if _, taken := mapping[field]; taken {
			continue
		}
		mapping[field] = i
		claimed[i] = true
	}

	return mapping
}

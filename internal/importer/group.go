package importer

import (
	"fmt"
	"sort"
	"strings"
)

// AllStudentsGroup is the bucket used when a sheet carries no year/section
// information at all.
const AllStudentsGroup = "All Students"

// unknownSectionRank sorts unrecognized sections after every known one.
const unknownSectionRank = 999

// YearRank maps a canonical year to its sort position. Unrecognized years
// rank 0 and sort first.
func YearRank(year string) int {
	if n, ok := yearOfRoman[strings.ToUpper(strings.TrimSpace(year))]; ok {
		return n
	}
	return 0
}

// SectionRank maps a canonical section to its sort position: A-Z first,
// then the Greek names, unrecognized last.
func SectionRank(section string) int {
	s := strings.TrimSpace(section)
	if len(s) == 1 && isLetter(s[0]) {
		return int(strings.ToUpper(s)[0]-'A') + 1
	}
	if rank, ok := greekSectionRank[strings.ToLower(s)]; ok {
		return rank
	}
	return unknownSectionRank
}

// SortRowsByYearAndSection orders rows by year rank, then section rank,
// then the roll-number (or name) column lexically. The sort is stable and
// returns a new slice.
func SortRowsByYearAndSection(header []string, rows [][]string, mapping Mapping) [][]string {
	yearIdx, sectionIdx := DetectYearAndSectionIndexes(header, rows)

	tieIdx := mapping.Index("roll_number")
	if tieIdx < 0 {
		tieIdx = mapping.Index("first_name")
	}

	sorted := append([][]string{}, rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi := YearRank(ToRomanYear(cellAt(sorted[i], yearIdx)))
		yj := YearRank(ToRomanYear(cellAt(sorted[j], yearIdx)))
		if yi != yj {
			return yi < yj
		}
		si := SectionRank(cellAt(sorted[i], sectionIdx))
		sj := SectionRank(cellAt(sorted[j], sectionIdx))
		if si != sj {
			return si < sj
		}
		return cellAt(sorted[i], tieIdx) < cellAt(sorted[j], tieIdx)
	})
	return sorted
}

// RowGroup is one year/section bucket of rows, in original row order.
type RowGroup struct {
	Key  string     `json:"key"`
	Rows [][]string `json:"rows"`
}

// GroupRowsByYearAndSection partitions rows into "{year}-{section}" buckets
// keyed by canonical forms, falling back to the raw cell value when
// canonicalization produces nothing. Sheets with no year/section columns
// collapse into the single "All Students" bucket. Groups come back ordered
// by year then section rank.
func GroupRowsByYearAndSection(header []string, rows [][]string) []RowGroup {
	yearIdx, sectionIdx := DetectYearAndSectionIndexes(header, rows)
	if yearIdx < 0 && sectionIdx < 0 {
		return []RowGroup{{Key: AllStudentsGroup, Rows: rows}}
	}

	buckets := map[string]*RowGroup{}
	var order []string
	for _, row := range rows {
		rawYear := cellAt(row, yearIdx)
		rawSection := cellAt(row, sectionIdx)
		year := ToRomanYear(rawYear)
		if strings.TrimSpace(year) == "" {
			year = rawYear
		}
		section := CanonicalSection(rawSection)
		if strings.TrimSpace(section) == "" {
			section = rawSection
		}
		key := fmt.Sprintf("%s-%s", year, section)

		group, ok := buckets[key]
		if !ok {
			group = &RowGroup{Key: key}
			buckets[key] = group
			order = append(order, key)
		}
		group.Rows = append(group.Rows, row)
	}

	sort.SliceStable(order, func(i, j int) bool {
		yi, si := splitGroupKey(order[i])
		yj, sj := splitGroupKey(order[j])
		if YearRank(yi) != YearRank(yj) {
			return YearRank(yi) < YearRank(yj)
		}
		return SectionRank(si) < SectionRank(sj)
	})

	groups := make([]RowGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *buckets[key])
	}
	return groups
}

func splitGroupKey(key string) (year, section string) {
	if i := strings.Index(key, "-"); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}

func cellAt(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

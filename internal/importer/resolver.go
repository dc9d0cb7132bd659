package importer

import (
	"sort"
	"strings"
)

// SheetStats is the membership set used by the last resolver stage: the
// (year, section) pairs actually observed across sheet names, plus the most
// frequent sheet year.
type SheetStats struct {
	Sections map[string][]string // canonical year -> sorted sections
	TopYear  string
}

// CollectSheetStats builds the membership set from the parsed sheet
// descriptors.
func CollectSheetStats(descs []SheetDescriptor) SheetStats {
	stats := SheetStats{Sections: map[string][]string{}}
	counts := map[string]int{}

	for _, d := range descs {
		year := ToRomanYear(d.Year)
		if strings.TrimSpace(year) == "" {
			continue
		}
		counts[year]++
		if counts[year] > counts[stats.TopYear] {
			stats.TopYear = year
		}
		section := CanonicalSection(d.Section)
		if strings.TrimSpace(section) != "" && !containsString(stats.Sections[year], section) {
			stats.Sections[year] = append(stats.Sections[year], section)
			sort.Strings(stats.Sections[year])
		}
	}

	return stats
}

// ResolveInput carries everything one row's year/section resolution needs.
type ResolveInput struct {
	Header     []string
	Row        []string
	Mapping    Mapping
	YearIdx    int // column found by DetectYearAndSectionIndexes, -1 if none
	SectionIdx int
}

// yearSectionResolver yields a candidate year and/or section for a row.
// Either value may be empty.
type yearSectionResolver func(in ResolveInput) (year, section string)

// resolverChain is the commit-time precedence order: hidden sheet-derived
// columns, then explicitly mapped columns, then heuristically detected
// columns, then a full-row rescan with the year/section grammar.
var resolverChain = []yearSectionResolver{
	resolveHiddenColumns,
	resolveMappedColumns,
	resolveDetectedColumns,
	resolveRowRescan,
}

// ResolveYearAndSection runs the resolver chain for one row, taking the
// first non-empty year and section independently, then corrects the result
// against the sheet-name membership set. Anything still unresolved becomes
// the "U" sentinel.
func ResolveYearAndSection(in ResolveInput, stats SheetStats) (year, section string) {
	for _, resolve := range resolverChain {
		y, s := resolve(in)
		if year == "" && !IsPlaceholder(y) {
			year = y
		}
		if section == "" && !IsPlaceholder(s) {
			section = s
		}
		if year != "" && section != "" {
			break
		}
	}

	year = ToRomanYear(year)
	section = CanonicalSection(section)

	// Membership correction: a year never seen in any sheet name gives way
	// to the most frequent sheet year; an unrecognizable section becomes
	// the lexically-first section allowed for that year.
	if len(stats.Sections) > 0 {
		if _, known := stats.Sections[year]; !known && stats.TopYear != "" {
			year = stats.TopYear
		}
		if section == "" || SectionRank(section) == unknownSectionRank {
			if allowed := stats.Sections[year]; len(allowed) > 0 {
				section = allowed[0]
			}
		}
	}

	if strings.TrimSpace(year) == "" {
		year = UnknownToken
	}
	if strings.TrimSpace(section) == "" {
		section = UnknownToken
	}
	return year, section
}

func resolveHiddenColumns(in ResolveInput) (string, string) {
	var year, section string
	for i, h := range in.Header {
		switch h {
		case SheetYearColumn:
			year = cellAt(in.Row, i)
		case SheetSectionColumn:
			section = cellAt(in.Row, i)
		}
	}
	return year, section
}

func resolveMappedColumns(in ResolveInput) (string, string) {
	return cellAt(in.Row, in.Mapping.Index("year_of_study")),
		cellAt(in.Row, in.Mapping.Index("section"))
}

func resolveDetectedColumns(in ResolveInput) (string, string) {
	return cellAt(in.Row, in.YearIdx), cellAt(in.Row, in.SectionIdx)
}

func resolveRowRescan(in ResolveInput) (string, string) {
	var year, section string
	for i := range in.Row {
		// Hidden columns were already consulted by the first resolver.
		if i < len(in.Header) && (in.Header[i] == SheetYearColumn || in.Header[i] == SheetSectionColumn) {
			continue
		}
		y, s := ParseYearAndSection(in.Row[i])
		if year == "" {
			year = y
		}
		if section == "" {
			section = s
		}
		if year != "" && section != "" {
			break
		}
	}
	return year, section
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

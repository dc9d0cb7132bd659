package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSheetStats(t *testing.T) {
	descs := []SheetDescriptor{
		{Name: "I A", Year: "I", Section: "A"},
		{Name: "I B", Year: "I", Section: "B"},
		{Name: "2 A", Year: "2", Section: "A"},
		{Name: "Notes"}, // no year, ignored
	}

	stats := CollectSheetStats(descs)

	assert.Equal(t, "I", stats.TopYear)
	require.Len(t, stats.Sections, 2)
	assert.Equal(t, []string{"A", "B"}, stats.Sections["I"])
	assert.Equal(t, []string{"A"}, stats.Sections["II"], "sheet years are canonicalized")
}

func TestResolveHiddenColumnsWin(t *testing.T) {
	in := ResolveInput{
		Header:  []string{"Roll Number", "Year", SheetYearColumn, SheetSectionColumn},
		Row:     []string{"R1", "III", "II", "B"},
		Mapping: Mapping{"year_of_study": 1},
		YearIdx: 1, SectionIdx: -1,
	}

	year, section := ResolveYearAndSection(in, SheetStats{})

	assert.Equal(t, "II", year, "hidden sheet column outranks the mapped column")
	assert.Equal(t, "B", section)
}

func TestResolveMappedColumns(t *testing.T) {
	in := ResolveInput{
		Header:  []string{"Roll Number", "Study Year", "Div"},
		Row:     []string{"R1", "3", "b"},
		Mapping: Mapping{"year_of_study": 1, "section": 2},
		YearIdx: 1, SectionIdx: 2,
	}

	year, section := ResolveYearAndSection(in, SheetStats{})

	assert.Equal(t, "III", year)
	assert.Equal(t, "B", section)
}

func TestResolvePlaceholdersFallThrough(t *testing.T) {
	// A placeholder in the mapped column falls through to the detected
	// column, then to the row rescan.
	in := ResolveInput{
		Header:     []string{"Roll Number", "Year", "Remarks"},
		Row:        []string{"R1", "N/A", "II A"},
		Mapping:    Mapping{"year_of_study": 1},
		YearIdx:    1,
		SectionIdx: -1,
	}

	year, section := ResolveYearAndSection(in, SheetStats{})

	assert.Equal(t, "II", year)
	assert.Equal(t, "A", section)
}

func TestResolveRowRescan(t *testing.T) {
	in := ResolveInput{
		Header:  []string{"Roll Number", "Name", "Batch"},
		Row:     []string{"R1", "Anita", "Second Year C"},
		Mapping: Mapping{},
		YearIdx: -1, SectionIdx: -1,
	}

	year, section := ResolveYearAndSection(in, SheetStats{})

	assert.Equal(t, "II", year)
	assert.Equal(t, "C", section)
}

func TestResolveUnknownSentinel(t *testing.T) {
	in := ResolveInput{
		Header:  []string{"Roll Number", "Name"},
		Row:     []string{"R1", "Anita"},
		Mapping: Mapping{},
		YearIdx: -1, SectionIdx: -1,
	}

	year, section := ResolveYearAndSection(in, SheetStats{})

	assert.Equal(t, UnknownToken, year)
	assert.Equal(t, UnknownToken, section)
}

func TestResolveMembershipCorrection(t *testing.T) {
	stats := SheetStats{
		Sections: map[string][]string{"I": {"A", "B"}},
		TopYear:  "I",
	}

	// A year no sheet name ever produced gives way to the dominant year,
	// and the unresolvable section becomes the first allowed one.
	in := ResolveInput{
		Header:  []string{"Roll Number", "Year"},
		Row:     []string{"R1", "V"},
		Mapping: Mapping{"year_of_study": 1},
		YearIdx: 1, SectionIdx: -1,
	}

	year, section := ResolveYearAndSection(in, stats)

	assert.Equal(t, "I", year)
	assert.Equal(t, "A", section)
}

func TestResolveMembershipKeepsKnownPair(t *testing.T) {
	stats := SheetStats{
		Sections: map[string][]string{"I": {"A"}, "II": {"B"}},
		TopYear:  "I",
	}
	in := ResolveInput{
		Header:  []string{"Roll Number", "Year", "Section"},
		Row:     []string{"R1", "II", "B"},
		Mapping: Mapping{"year_of_study": 1, "section": 2},
		YearIdx: 1, SectionIdx: 2,
	}

	year, section := ResolveYearAndSection(in, stats)

	assert.Equal(t, "II", year)
	assert.Equal(t, "B", section)
}

package importer

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"

	"campus-admin/internal/catalog"
)

// RecordCreator is the downstream creation endpoint: one flat record at a
// time, field name -> value.
type RecordCreator interface {
	Create(ctx context.Context, record map[string]string) error
}

// Options controls duplicate handling for a run.
type Options struct {
	SkipDuplicateCheck bool `json:"skip_duplicate_check"`
	ConfirmDuplicates  bool `json:"confirm_duplicates"`
}

// Row outcome statuses.
const (
	StatusCreated = "created"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Outcome is the per-row commit result.
type Outcome struct {
	Row    int    `json:"row"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Result aggregates a commit run. Aborted is set when a network-class
// failure cut the batch short; the counts then cover only the rows reached.
type Result struct {
	Total    int       `json:"total"`
	Created  int       `json:"created"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Aborted  bool      `json:"aborted"`
	Outcomes []Outcome `json:"outcomes"`
}

// Duplicate flags a row whose roll number was already seen within its
// (department, year, section) group.
type Duplicate struct {
	Row        int    `json:"row"`
	RollNumber string `json:"roll_number"`
	GroupKey   string `json:"group_key"`
}

// ProgressFunc is called after every committed row.
type ProgressFunc func(done, total int, percent float64)

// Runner drives the sequential commit loop against a RecordCreator.
type Runner struct {
	Creator RecordCreator
	Catalog catalog.Catalog
	Log     *logrus.Logger
}

// FindDuplicates scans the rows for repeated roll numbers per (department,
// year, section) group, without committing anything. The result feeds the
// confirmation step; duplicates never block an import on their own.
func FindDuplicates(cat catalog.Catalog, header []string, rows [][]string, mapping Mapping, descs []SheetDescriptor) []Duplicate {
	yearIdx, sectionIdx := DetectYearAndSectionIndexes(header, rows)
	stats := CollectSheetStats(descs)
	deptIdx := mapping.Index("department")
	rollIdx := mapping.Index("roll_number")

	var dups []Duplicate
	seen := map[string]bool{}
	for i, row := range rows {
		roll := cellAt(row, rollIdx)
		if roll == "" {
			continue
		}
		year, section := ResolveYearAndSection(ResolveInput{
			Header: header, Row: row, Mapping: mapping,
			YearIdx: yearIdx, SectionIdx: sectionIdx,
		}, stats)
		key := fmt.Sprintf("%s|%s|%s|%s", cellAt(row, deptIdx), year, section, roll)
		if seen[key] {
			dups = append(dups, Duplicate{
				Row:        i + 1,
				RollNumber: roll,
				GroupKey:   fmt.Sprintf("%s-%s-%s", cellAt(row, deptIdx), year, section),
			})
		}
		seen[key] = true
	}
	return dups
}

// Run commits rows one at a time, in order. A failed row is recorded and
// the loop continues; a network-class failure aborts the remainder and the
// partial counts stand. There is no rollback of committed rows.
func (r *Runner) Run(ctx context.Context, header []string, rows [][]string, mapping Mapping, descs []SheetDescriptor, opts Options, progress ProgressFunc) (*Result, error) {
	yearIdx, sectionIdx := DetectYearAndSectionIndexes(header, rows)
	stats := CollectSheetStats(descs)

	result := &Result{Total: len(rows)}
	dupCount := map[string]int{}

	for i, row := range rows {
		record := r.buildRecord(header, row, mapping, yearIdx, sectionIdx, stats)

		if !opts.SkipDuplicateCheck {
			key := fmt.Sprintf("%s|%s|%s|%s",
				record["department"], record["year_of_study"], record["section"], record["roll_number"])
			dupCount[key]++
			if n := dupCount[key]; n > 1 && record["roll_number"] != "" {
				if !opts.ConfirmDuplicates {
					result.Skipped++
					result.Outcomes = append(result.Outcomes, Outcome{
						Row: i + 1, Status: StatusSkipped,
						Reason: fmt.Sprintf("duplicate roll number %s", record["roll_number"]),
					})
					r.report(progress, i+1, result.Total)
					continue
				}
				// Confirmed duplicate: suffix the internal identifier, keep
				// the visible roll number untouched.
				record["student_code"] = fmt.Sprintf("%s-%d", record["roll_number"], n)
			}
		}

		err := r.Creator.Create(ctx, record)
		if err == nil {
			result.Created++
			result.Outcomes = append(result.Outcomes, Outcome{Row: i + 1, Status: StatusCreated})
			r.report(progress, i+1, result.Total)
			continue
		}

		// A reference-path defect in the backing store is worth telling
		// apart in the logs, but the row is handled like any other failure.
		msg := err.Error()
		if strings.Contains(msg, "collection reference") || strings.Contains(msg, "document reference") {
			r.log().WithField("row", i+1).Warnf("record path defect: %v", err)
		} else {
			r.log().WithField("row", i+1).Warnf("record creation failed: %v", err)
		}

		result.Failed++
		result.Outcomes = append(result.Outcomes, Outcome{Row: i + 1, Status: StatusFailed, Reason: msg})
		r.report(progress, i+1, result.Total)

		if isNetworkError(err) {
			result.Aborted = true
			return result, fmt.Errorf("import aborted after row %d: %w", i+1, err)
		}
	}

	return result, nil
}

// buildRecord maps one row into the downstream record, resolving
// year/section through the fallback chain.
func (r *Runner) buildRecord(header, row []string, mapping Mapping, yearIdx, sectionIdx int, stats SheetStats) map[string]string {
	record := map[string]string{}
	for _, field := range r.Catalog.Fields {
		if idx := mapping.Index(field.Name); idx >= 0 {
			record[field.Name] = cellAt(row, idx)
		}
	}

	year, section := ResolveYearAndSection(ResolveInput{
		Header: header, Row: row, Mapping: mapping,
		YearIdx: yearIdx, SectionIdx: sectionIdx,
	}, stats)
	record["year_of_study"] = year
	record["section"] = section
	record["student_code"] = record["roll_number"]

	return record
}

func (r *Runner) report(progress ProgressFunc, done, total int) {
	if progress == nil {
		return
	}
	percent := 0.0
	if total > 0 {
		percent = float64(done) / float64(total) * 100
	}
	progress(done, total, percent)
}

func (r *Runner) log() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}

// isNetworkError classifies connectivity loss, which aborts the batch.
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

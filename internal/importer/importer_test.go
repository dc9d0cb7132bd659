package importer

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-admin/internal/catalog"
)

type fakeCreator struct {
	records []map[string]string
	failOn  map[int]error // 1-based call number -> error to return
	calls   int
}

func (f *fakeCreator) Create(_ context.Context, record map[string]string) error {
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return err
	}
	copied := make(map[string]string, len(record))
	for k, v := range record {
		copied[k] = v
	}
	f.records = append(f.records, copied)
	return nil
}

func studentRunner(creator RecordCreator) *Runner {
	return &Runner{Creator: creator, Catalog: catalog.Student()}
}

func TestRunnerCreatesRows(t *testing.T) {
	creator := &fakeCreator{}
	runner := studentRunner(creator)

	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"CS01", "Anita", "I", "A"},
		{"CS02", "Bharat", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	var lastDone int
	var lastPercent float64
	result, err := runner.Run(context.Background(), header, rows, mapping, nil, Options{},
		func(done, total int, percent float64) {
			lastDone = done
			lastPercent = percent
		})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.False(t, result.Aborted)
	assert.Equal(t, 2, lastDone)
	assert.Equal(t, 100.0, lastPercent)

	require.Len(t, creator.records, 2)
	assert.Equal(t, "CS01", creator.records[0]["roll_number"])
	assert.Equal(t, "CS01", creator.records[0]["student_code"])
	assert.Equal(t, "I", creator.records[0]["year_of_study"])
	assert.Equal(t, "A", creator.records[0]["section"])
}

func TestRunnerSkipsUnconfirmedDuplicates(t *testing.T) {
	creator := &fakeCreator{}
	runner := studentRunner(creator)

	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"T1", "Anita", "I", "A"},
		{"T1", "Anu", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	result, err := runner.Run(context.Background(), header, rows, mapping, nil, Options{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, StatusSkipped, result.Outcomes[1].Status)
	assert.Contains(t, result.Outcomes[1].Reason, "duplicate roll number T1")
	require.Len(t, creator.records, 1)
}

func TestRunnerConfirmedDuplicatesGetSuffix(t *testing.T) {
	creator := &fakeCreator{}
	runner := studentRunner(creator)

	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"T1", "Anita", "I", "A"},
		{"T1", "Anu", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	result, err := runner.Run(context.Background(), header, rows, mapping, nil,
		Options{ConfirmDuplicates: true}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, creator.records, 2)
	assert.Equal(t, "T1", creator.records[0]["student_code"])
	assert.Equal(t, "T1-2", creator.records[1]["student_code"], "internal code suffixed")
	assert.Equal(t, "T1", creator.records[1]["roll_number"], "visible roll unchanged")
}

func TestRunnerSkipDuplicateCheck(t *testing.T) {
	creator := &fakeCreator{}
	runner := studentRunner(creator)

	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"T1", "Anita", "I", "A"},
		{"T1", "Anu", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	result, err := runner.Run(context.Background(), header, rows, mapping, nil,
		Options{SkipDuplicateCheck: true}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, "T1", creator.records[1]["student_code"], "no suffixing when the check is off")
}

func TestRunnerContinuesPastRowFailure(t *testing.T) {
	creator := &fakeCreator{failOn: map[int]error{2: errors.New("constraint violation")}}
	runner := studentRunner(creator)

	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"CS01", "Anita", "I", "A"},
		{"CS02", "Bharat", "I", "A"},
		{"CS03", "Chitra", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	result, err := runner.Run(context.Background(), header, rows, mapping, nil, Options{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.Aborted)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, StatusFailed, result.Outcomes[1].Status)
	assert.Equal(t, "constraint violation", result.Outcomes[1].Reason)
	assert.Equal(t, StatusCreated, result.Outcomes[2].Status)
}

func TestRunnerAbortsOnNetworkError(t *testing.T) {
	creator := &fakeCreator{failOn: map[int]error{2: driver.ErrBadConn}}
	runner := studentRunner(creator)

	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"CS01", "Anita", "I", "A"},
		{"CS02", "Bharat", "I", "A"},
		{"CS03", "Chitra", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	result, err := runner.Run(context.Background(), header, rows, mapping, nil, Options{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.True(t, result.Aborted)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Outcomes, 2, "third row never attempted")
	assert.Equal(t, 2, creator.calls)
}

func TestFindDuplicates(t *testing.T) {
	cat := catalog.Student()
	header := []string{"Roll Number", "First Name", "Department", "Year", "Section"}
	rows := [][]string{
		{"T1", "Anita", "CSE", "I", "A"},
		{"T1", "Anu", "CSE", "I", "A"},
		{"T1", "Bharat", "CSE", "II", "A"}, // different year, not a duplicate
		{"T2", "Chitra", "CSE", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "department": 2, "year_of_study": 3, "section": 4}

	dups := FindDuplicates(cat, header, rows, mapping, nil)

	require.Len(t, dups, 1)
	assert.Equal(t, 2, dups[0].Row)
	assert.Equal(t, "T1", dups[0].RollNumber)
	assert.Equal(t, "CSE-I-A", dups[0].GroupKey)
}

func TestFindDuplicatesEmptyRollIgnored(t *testing.T) {
	cat := catalog.Student()
	header := []string{"Roll Number", "First Name", "Year", "Section"}
	rows := [][]string{
		{"", "Anita", "I", "A"},
		{"", "Bharat", "I", "A"},
	}
	mapping := Mapping{"roll_number": 0, "first_name": 1, "year_of_study": 2, "section": 3}

	dups := FindDuplicates(cat, header, rows, mapping, nil)
	assert.Empty(t, dups)
}

func TestIsNetworkError(t *testing.T) {
	assert.True(t, isNetworkError(driver.ErrBadConn))
	assert.True(t, isNetworkError(context.Canceled))
	assert.True(t, isNetworkError(context.DeadlineExceeded))
	assert.False(t, isNetworkError(errors.New("duplicate key")))
}

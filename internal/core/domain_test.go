package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"food", Food, true},
		{" Health ", Health, true},
		{"HOUSING", Housing, true},
		{"sport", Sport, true},
		{"education", Education, true},
		{"travel", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrValidation, tc.in)
		}
	}
}

func TestCostValidate(t *testing.T) {
	good := Cost{Description: "lunch", Category: Food, UserID: 1, Sum: 20, Date: time.Now()}
	require.NoError(t, good.Validate())

	zeroSum := good
	zeroSum.Sum = 0
	assert.NoError(t, zeroSum.Validate(), "zero sums are valid")

	negative := good
	negative.Sum = -5
	assert.NoError(t, negative.Validate(), "no sign constraint")

	bads := []Cost{
		{Description: "", Category: Food, UserID: 1, Sum: 1, Date: time.Now()},
		{Description: "   ", Category: Food, UserID: 1, Sum: 1, Date: time.Now()},
		{Description: "a", Category: "travel", UserID: 1, Sum: 1, Date: time.Now()},
		{Description: "a", Category: Food, UserID: 1, Sum: 1},
	}
	for i, c := range bads {
		assert.ErrorIs(t, c.Validate(), ErrValidation, "case %d", i)
	}
}

func TestMonthWindow(t *testing.T) {
	cases := []struct {
		name    string
		year    int
		month   int
		lastDay int
	}{
		{"january", 2024, 1, 31},
		{"february leap", 2024, 2, 29},
		{"february", 2023, 2, 28},
		{"century non leap", 1900, 2, 28},
		{"april", 2024, 4, 30},
		{"december", 2024, 12, 31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := MonthWindow(tc.year, tc.month, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, time.Date(tc.year, time.Month(tc.month), 1, 0, 0, 0, 0, time.UTC), w.Start)
			assert.Equal(t, time.Date(tc.year, time.Month(tc.month), tc.lastDay, 23, 59, 59, 0, time.UTC), w.End)
		})
	}
}

func TestMonthWindowBoundaries(t *testing.T) {
	w, err := MonthWindow(2024, 3, time.UTC)
	require.NoError(t, err)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}

func TestMonthWindowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	w, err := MonthWindow(2024, 3, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 22, 0, 0, 0, time.UTC), w.Start.UTC())
}

func TestMonthWindowInvalid(t *testing.T) {
	for _, ym := range [][2]int{{2024, 0}, {2024, 13}, {0, 5}, {10000, 1}} {
		_, err := MonthWindow(ym[0], ym[1], time.UTC)
		assert.ErrorIs(t, err, ErrValidation, "%v", ym)
	}
}

func TestBuildMonthlyReport(t *testing.T) {
	costs := []Cost{
		{ID: "1", Description: "lunch", Category: Food, UserID: 1, Sum: 20, Date: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		{ID: "2", Description: "gym", Category: Sport, UserID: 1, Sum: 35.5, Date: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)},
		{ID: "3", Description: "dinner", Category: Food, UserID: 1, Sum: 12, Date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
	}

	report, err := BuildMonthlyReport(1, 2024, 3, costs, time.UTC)
	require.NoError(t, err)

	require.Len(t, report.Costs, 5)
	for i, c := range Categories {
		assert.Equal(t, c, report.Costs[i].Category)
	}
	assert.Equal(t, []ReportEntry{
		{Sum: 20, Description: "lunch", Day: 15},
		{Sum: 12, Description: "dinner", Day: 31},
	}, report.Bucket(Food))
	assert.Equal(t, []ReportEntry{{Sum: 35.5, Description: "gym", Day: 2}}, report.Bucket(Sport))
	assert.Empty(t, report.Bucket(Health))
	assert.NotNil(t, report.Bucket(Health))
	assert.InDelta(t, 67.5, report.Total(), 1e-9)
}

func TestBuildMonthlyReportEmpty(t *testing.T) {
	report, err := BuildMonthlyReport(7, 2025, 5, nil, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(7), report.UserID)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, 5, report.Month)
	require.Len(t, report.Costs, 5)
	for _, b := range report.Costs {
		assert.NotNil(t, b.Entries)
		assert.Empty(t, b.Entries)
	}
}

func TestBuildMonthlyReportUnrecognizedCategory(t *testing.T) {
	costs := []Cost{{ID: "abc", Description: "x", Category: "travel", Sum: 1, Date: time.Now()}}
	_, err := BuildMonthlyReport(1, 2024, 3, costs, time.UTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedCategory)

	var uce *UnrecognizedCategoryError
	require.True(t, errors.As(err, &uce))
	assert.Equal(t, "abc", uce.CostID)
}

func TestBuildMonthlyReportDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	costs := []Cost{{ID: "1", Description: "late", Category: Health, Sum: 3, Date: time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC)}}
	report, err := BuildMonthlyReport(1, 2024, 3, costs, loc)
	require.NoError(t, err)
	assert.Equal(t, 15, report.Bucket(Health)[0].Day)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00.250+01:00", time.Date(2024, 3, 15, 9, 30, 0, 250e6, time.UTC)},
		{"2024-03-15T10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, loc)},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in, loc)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %v", tc.in, got)
	}

	for _, bad := range []string{"", "  ", "15/03/2024", "yesterday"} {
		_, err := ParseDate(bad, loc)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

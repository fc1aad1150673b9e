package core

import (
	"fmt"
	"time"
)

type (
	// ReportEntry is the projection of a cost inside a report bucket.
	ReportEntry struct {
		Sum         float64
		Description string
		Day         int
	}

	// CategoryBucket holds the entries of one category.
	CategoryBucket struct {
		Category Category
		Entries  []ReportEntry
	}

	// MonthlyReport groups a user's costs for one month. Costs always holds
	// one bucket per category, in Categories order.
	MonthlyReport struct {
		UserID int64
		Year   int
		Month  int // 1-12
		Costs  []CategoryBucket
	}
)

// UnrecognizedCategoryError reports a stored cost whose category is outside
// the closed set. It unwraps to ErrUnrecognizedCategory.
type UnrecognizedCategoryError struct {
	CostID   string
	Category Category
}

func (e *UnrecognizedCategoryError) Error() string {
	return fmt.Sprintf("cost %s has unrecognized category %q", e.CostID, e.Category)
}

func (e *UnrecognizedCategoryError) Unwrap() error {
	return ErrUnrecognizedCategory
}

// EmptyMonthlyReport returns a report with every bucket present and empty.
func EmptyMonthlyReport(userID int64, year, month int) MonthlyReport {
	buckets := make([]CategoryBucket, len(Categories))
	for i, c := range Categories {
		buckets[i] = CategoryBucket{Category: c, Entries: []ReportEntry{}}
	}
	return MonthlyReport{UserID: userID, Year: year, Month: month, Costs: buckets}
}

// BuildMonthlyReport groups costs into the fixed buckets, keeping the input
// order inside each bucket. The day of month is read in loc. A cost with a
// category outside the closed set fails the whole report.
func BuildMonthlyReport(userID int64, year, month int, costs []Cost, loc *time.Location) (MonthlyReport, error) {
	if loc == nil {
		loc = time.UTC
	}
	report := EmptyMonthlyReport(userID, year, month)
	index := make(map[Category]int, len(report.Costs))
	for i, b := range report.Costs {
		index[b.Category] = i
	}

	for _, c := range costs {
		i, ok := index[c.Category]
		if !ok {
			return MonthlyReport{}, &UnrecognizedCategoryError{CostID: c.ID, Category: c.Category}
		}
		report.Costs[i].Entries = append(report.Costs[i].Entries, ReportEntry{
			Sum:         c.Sum,
			Description: c.Description,
			Day:         c.Date.In(loc).Day(),
		})
	}
	return report, nil
}

// Bucket returns the entries of category c, or nil if c is unknown.
func (r MonthlyReport) Bucket(c Category) []ReportEntry {
	for _, b := range r.Costs {
		if b.Category == c {
			return b.Entries
		}
	}
	return nil
}

// Total sums every entry of the report.
func (r MonthlyReport) Total() float64 {
	var total float64
	for _, b := range r.Costs {
		for _, e := range b.Entries {
			total += e.Sum
		}
	}
	return total
}

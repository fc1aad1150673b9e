package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"costs/internal/cache"
	"costs/internal/core"
	applog "costs/internal/log"
	"costs/internal/metrics"
	"costs/internal/storage"
)

// ReportKey is the cache key of a user's monthly report.
func ReportKey(userID int64, year, month int) string {
	return fmt.Sprintf("report:%d:%d:%d", userID, year, month)
}

// ReportService builds monthly reports, optionally through a cache.
//
// A report read concurrently with an ingestion can be cached just after the
// ingestion invalidated it; the entry then lags until its TTL expires.
type ReportService struct {
	records storage.RecordStore
	cache   cache.Cache[core.MonthlyReport]
	loc     *time.Location
}

// NewReportService wires the service. reports may be nil to disable caching.
func NewReportService(records storage.RecordStore, reports cache.Cache[core.MonthlyReport], loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{records: records, cache: reports, loc: loc}
}

// MonthlyReport returns the user's costs of the month grouped by category.
func (s *ReportService) MonthlyReport(ctx context.Context, userID int64, year, month int) (core.MonthlyReport, error) {
	window, err := core.MonthWindow(year, month, s.loc)
	if err != nil {
		return core.MonthlyReport{}, err
	}

	key := ReportKey(userID, year, month)
	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			metrics.ReportCacheLookup(true)
			metrics.ReportBuilt(true)
			return report, nil
		}
		metrics.ReportCacheLookup(false)
	}

	costs, err := s.records.ListCosts(ctx, userID, window)
	if err != nil {
		metrics.ReportBuilt(false)
		return core.MonthlyReport{}, fmt.Errorf("list costs: %w", err)
	}

	report, err := core.BuildMonthlyReport(userID, year, month, costs, s.loc)
	if err != nil {
		var uce *core.UnrecognizedCategoryError
		if errors.As(err, &uce) {
			fields := applog.NewFields().WithOperation(applog.OpReport).WithReport(userID, year, month).ToSlice()
			applog.FromContext(ctx).WithComponent(applog.ComponentReport).ErrorContext(ctx,
				"Stored cost has an unrecognized category",
				append(fields, applog.FieldCostID, uce.CostID, applog.FieldCategory, string(uce.Category))...)
		}
		metrics.ReportBuilt(false)
		return core.MonthlyReport{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, report)
	}
	metrics.ReportBuilt(true)
	applog.FromContext(ctx).WithComponent(applog.ComponentReport).DebugContext(ctx, "Report built",
		append(applog.NewFields().WithOperation(applog.OpReport).WithReport(userID, year, month).ToSlice(),
			"records", len(costs),
			"total", report.Total())...)
	return report, nil
}

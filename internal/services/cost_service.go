package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"costs/internal/cache"
	"costs/internal/core"
	applog "costs/internal/log"
	"costs/internal/metrics"
	"costs/internal/storage"
)

// CostPublisher announces persisted costs. Implemented by amqp.Client.
type CostPublisher interface {
	PublishCostAdded(ctx context.Context, c core.Cost) error
}

// AddCostRequest is a decoded ingestion request. A zero Date means now.
type AddCostRequest struct {
	Description string
	Category    string
	UserID      int64
	Sum         float64
	Date        time.Time
}

// CostService persists costs and keeps the derived state in step: the
// user's running total, the cached report of the month and the event stream.
type CostService struct {
	records   storage.RecordStore
	users     storage.UserStore
	reports   cache.Cache[core.MonthlyReport]
	publisher CostPublisher
	loc       *time.Location
	now       func() time.Time
}

// NewCostService wires the service. reports and publisher may be nil.
func NewCostService(records storage.RecordStore, users storage.UserStore, reports cache.Cache[core.MonthlyReport], publisher CostPublisher, loc *time.Location) *CostService {
	if loc == nil {
		loc = time.UTC
	}
	return &CostService{
		records:   records,
		users:     users,
		reports:   reports,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// AddCost validates req, inserts the record and increments the user's total.
// The two writes are not atomic: when the increment fails the record stays
// and the error is returned.
func (s *CostService) AddCost(ctx context.Context, req AddCostRequest) (core.Cost, error) {
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.Cost{}, err
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	c := core.Cost{
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		UserID:      req.UserID,
		Sum:         req.Sum,
		Date:        date,
	}
	if err := c.Validate(); err != nil {
		return core.Cost{}, err
	}

	saved, err := s.records.InsertCost(ctx, c)
	if err != nil {
		return core.Cost{}, fmt.Errorf("insert cost: %w", err)
	}

	// The record is visible from here on, whatever happens to the total.
	s.invalidateReport(saved)

	logger := applog.FromContext(ctx).WithComponent(applog.ComponentCost)
	fields := applog.NewFields().WithOperation(applog.OpCreate).WithCost(saved)

	if err := s.users.IncrementTotal(ctx, saved.UserID, saved.Sum); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return core.Cost{}, fmt.Errorf("increment total of user %d: %w", saved.UserID, err)
		}
		logger.WarnContext(ctx, "Cost stored for unknown user, total not updated", fields.ToSlice()...)
	}

	metrics.CostAdded(string(saved.Category))

	if s.publisher != nil {
		if err := s.publisher.PublishCostAdded(ctx, saved); err != nil {
			logger.ErrorContext(ctx, "Failed to publish cost.added", append(fields.ToSlice(), applog.FieldError, err.Error())...)
		}
	}

	logger.InfoContext(ctx, "Cost added", fields.ToSlice()...)
	return saved, nil
}

func (s *CostService) invalidateReport(c core.Cost) {
	if s.reports == nil {
		return
	}
	local := c.Date.In(s.loc)
	s.reports.Delete(ReportKey(c.UserID, local.Year(), int(local.Month())))
}

// Package reconcile recomputes the denormalized user totals from the cost
// records and repairs the ones that drifted.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/robfig/cron/v3"

	"costs/internal/core"
	applog "costs/internal/log"
	"costs/internal/metrics"
	"costs/internal/storage"
)

// tolerance is the largest difference between a stored total and the sum of
// records that is not treated as drift.
const tolerance = 1e-9

// Store is what the reconciler reads and repairs.
type Store interface {
	storage.TotalsStore
	GetUser(ctx context.Context, id int64) (core.User, error)
}

// Result summarizes one pass.
type Result struct {
	Checked int
	Fixed   int
}

type Reconciler struct {
	store  Store
	logger *applog.Logger

	mu   sync.Mutex // serializes passes
	cron *cron.Cron
}

func NewReconciler(store Store, logger *applog.Logger) *Reconciler {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Reconciler{
		store:  store,
		logger: logger.WithComponent(applog.ComponentReconcile),
	}
}

// RunOnce checks every user. Failures on single users are logged and joined
// into the returned error; the pass still visits the remaining users.
func (r *Reconciler) RunOnce(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res Result
	ids, err := r.store.ListUserIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		fixed, err := r.reconcileUser(ctx, id)
		if err != nil {
			r.logger.ErrorContext(ctx, "Reconcile user failed",
				applog.FieldUserID, id,
				applog.FieldError, err.Error())
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
			continue
		}
		res.Checked++
		if fixed {
			res.Fixed++
		}
	}

	metrics.TotalsFixed(res.Fixed)
	return res, errors.Join(errs...)
}

func (r *Reconciler) reconcileUser(ctx context.Context, id int64) (bool, error) {
	user, err := r.store.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	sum, err := r.store.SumCosts(ctx, id)
	if err != nil {
		return false, err
	}
	if math.Abs(user.Total-sum) <= tolerance {
		return false, nil
	}

	if err := r.store.SetTotal(ctx, id, sum); err != nil {
		return false, err
	}
	r.logger.InfoContext(ctx, "Total repaired",
		applog.FieldUserID, id,
		"stored_total", user.Total,
		"records_sum", sum)
	return true, nil
}

// Start runs a pass immediately and then on schedule (standard 5-field cron
// syntax) until Stop is called or ctx is done.
func (r *Reconciler) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.runLogged(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	r.runLogged(ctx)

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()
	c.Start()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (r *Reconciler) runLogged(ctx context.Context) {
	res, err := r.RunOnce(ctx)
	fields := []any{applog.FieldOperation, applog.OpReconcile, "checked", res.Checked, "fixed", res.Fixed}
	if err != nil {
		r.logger.ErrorContext(ctx, "Reconcile pass finished with errors", append(fields, applog.FieldError, err.Error())...)
		return
	}
	r.logger.InfoContext(ctx, "Reconcile pass complete", fields...)
}

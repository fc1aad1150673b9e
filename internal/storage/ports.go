package storage

import (
	"context"

	"costs/internal/core"
)

// Ports implemented by every backend (memory, sqlstore, mongostore).
type (
	// RecordStore persists costs and answers month-window queries.
	RecordStore interface {
		// InsertCost stores c and returns it with its storage-assigned ID.
		InsertCost(ctx context.Context, c core.Cost) (core.Cost, error)
		// ListCosts returns the user's costs with Date inside w, boundaries
		// included, ordered by date then insertion.
		ListCosts(ctx context.Context, userID int64, w core.Window) ([]core.Cost, error)
	}

	// UserStore reads users and maintains their running totals.
	UserStore interface {
		// GetUser returns core.ErrNotFound when no user has the business id.
		GetUser(ctx context.Context, id int64) (core.User, error)
		// IncrementTotal atomically adds delta to the user's total. It returns
		// core.ErrNotFound when no user matched.
		IncrementTotal(ctx context.Context, id int64, delta float64) error
	}

	// UserProvisioner inserts users provisioned out of band. Existing users
	// keep their running total.
	UserProvisioner interface {
		UpsertUser(ctx context.Context, u core.User) error
	}

	// TotalsStore supports recomputing running totals from the record set.
	TotalsStore interface {
		ListUserIDs(ctx context.Context) ([]int64, error)
		SumCosts(ctx context.Context, userID int64) (float64, error)
		SetTotal(ctx context.Context, userID int64, total float64) error
	}

	// Store is the full surface a backend provides.
	Store interface {
		RecordStore
		UserStore
		UserProvisioner
		TotalsStore
		Ping(ctx context.Context) error
		Close(ctx context.Context) error
	}
)

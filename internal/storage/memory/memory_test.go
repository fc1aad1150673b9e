package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costs/internal/core"
	"costs/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func march(t *testing.T) core.Window {
	t.Helper()
	w, err := core.MonthWindow(2024, 3, time.UTC)
	require.NoError(t, err)
	return w
}

func TestInsertAndListCosts(t *testing.T) {
	ctx := context.Background()
	s := New(core.User{ID: 1, FirstName: "Ada"})

	day := func(d int) time.Time { return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC) }
	for _, c := range []core.Cost{
		{Description: "late", Category: core.Food, UserID: 1, Sum: 1, Date: day(20)},
		{Description: "early", Category: core.Food, UserID: 1, Sum: 2, Date: day(3)},
		{Description: "tie", Category: core.Sport, UserID: 1, Sum: 3, Date: day(20)},
		{Description: "other user", Category: core.Food, UserID: 2, Sum: 4, Date: day(5)},
		{Description: "april", Category: core.Food, UserID: 1, Sum: 5, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := s.InsertCost(ctx, c)
		require.NoError(t, err)
	}

	got, err := s.ListCosts(ctx, 1, march(t))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "early", got[0].Description)
	assert.Equal(t, "late", got[1].Description)
	assert.Equal(t, "tie", got[2].Description)
}

func TestInsertAssignsIDs(t *testing.T) {
	s := New()
	c := core.Cost{Description: "a", Category: core.Health, UserID: 9, Sum: 0, Date: time.Now()}
	first, err := s.InsertCost(context.Background(), c)
	require.NoError(t, err)
	second, err := s.InsertCost(context.Background(), c)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestInsertRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.InsertCost(context.Background(), core.Cost{Description: "a", Category: "travel", Date: time.Now()})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestUsersAndTotals(t *testing.T) {
	ctx := context.Background()
	s := New(core.User{ID: 1, FirstName: "Ada", LastName: "Lovelace"})

	require.NoError(t, s.IncrementTotal(ctx, 1, 10.5))
	require.NoError(t, s.IncrementTotal(ctx, 1, -0.5))
	u, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, u.Total, 1e-9)

	assert.ErrorIs(t, s.IncrementTotal(ctx, 2, 1), core.ErrNotFound)
	_, err = s.GetUser(ctx, 2)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.UpsertUser(ctx, core.User{ID: 1, FirstName: "Augusta", LastName: "King"}))
	u, err = s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", u.FirstName)
	assert.InDelta(t, 10.0, u.Total, 1e-9, "upsert keeps the running total")
}

func TestTotalsHelpers(t *testing.T) {
	ctx := context.Background()
	s := New(core.User{ID: 2}, core.User{ID: 1})
	for _, sum := range []float64{1.25, 2.5} {
		_, err := s.InsertCost(ctx, core.Cost{Description: "x", Category: core.Housing, UserID: 1, Sum: sum, Date: time.Now()})
		require.NoError(t, err)
	}

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	sum, err := s.SumCosts(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.75, sum, 1e-9)

	require.NoError(t, s.SetTotal(ctx, 1, sum))
	u, _ := s.GetUser(ctx, 1)
	assert.InDelta(t, 3.75, u.Total, 1e-9)
	assert.ErrorIs(t, s.SetTotal(ctx, 42, 1), core.ErrNotFound)
}

func TestConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	s := New(core.User{ID: 1})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.IncrementTotal(ctx, 1, 2)
		}()
	}
	wg.Wait()

	u, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, u.Total, 1e-9)
}

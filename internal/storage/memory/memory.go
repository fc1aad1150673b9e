package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"costs/internal/core"
)

type record struct {
	seq  int64
	cost core.Cost
}

// Store keeps costs and users in process memory. It backs tests and local
// runs with DATA_BACKEND=memory.
type Store struct {
	mu      sync.Mutex
	seq     int64
	records []record
	users   map[int64]core.User
}

func New(users ...core.User) *Store {
	s := &Store{users: make(map[int64]core.User, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// InsertCost stores the cost and returns a synthetic "mem:N" reference.
func (s *Store) InsertCost(_ context.Context, c core.Cost) (core.Cost, error) {
	if err := c.Validate(); err != nil {
		return core.Cost{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	c.ID = fmt.Sprintf("mem:%d", s.seq)
	s.records = append(s.records, record{seq: s.seq, cost: c})
	return c, nil
}

// ListCosts returns the user's costs inside w ordered by date, then insertion.
func (s *Store) ListCosts(_ context.Context, userID int64, w core.Window) ([]core.Cost, error) {
	s.mu.Lock()
	matched := make([]record, 0)
	for _, r := range s.records {
		if r.cost.UserID == userID && w.Contains(r.cost.Date) {
			matched = append(matched, r)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.cost.Date.Equal(b.cost.Date) {
			return a.cost.Date.Before(b.cost.Date)
		}
		return a.seq < b.seq
	})
	out := make([]core.Cost, len(matched))
	for i, r := range matched {
		out[i] = r.cost
	}
	return out, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	return u, nil
}

func (s *Store) IncrementTotal(_ context.Context, id int64, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	u.Total += delta
	s.users[id] = u
	return nil
}

// UpsertUser inserts u or refreshes its profile, keeping the stored total.
func (s *Store) UpsertUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.ID]; ok {
		u.Total = existing.Total
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) SumCosts(_ context.Context, userID int64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, r := range s.records {
		if r.cost.UserID == userID {
			sum += r.cost.Sum
		}
	}
	return sum, nil
}

func (s *Store) SetTotal(_ context.Context, userID int64, total float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	u.Total = total
	s.users[userID] = u
	return nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"costs/internal/core"
)

type seedUser struct {
	ID            int64  `yaml:"id"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Birthday      string `yaml:"birthday"`
	MaritalStatus string `yaml:"marital_status"`
}

// LoadUsersSeed reads a YAML list of users. Birthdays use the 2006-01-02 layout.
func LoadUsersSeed(path string) ([]core.User, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users seed: %w", err)
	}
	return ParseUsersSeed(raw)
}

// ParseUsersSeed decodes the YAML seed document.
func ParseUsersSeed(raw []byte) ([]core.User, error) {
	var entries []seedUser
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse users seed: %w", err)
	}

	users := make([]core.User, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for i, e := range entries {
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("users seed entry %d: duplicate id %d", i, e.ID)
		}
		seen[e.ID] = struct{}{}

		u := core.User{
			ID:            e.ID,
			FirstName:     e.FirstName,
			LastName:      e.LastName,
			MaritalStatus: e.MaritalStatus,
		}
		if e.Birthday != "" {
			b, err := time.Parse("2006-01-02", e.Birthday)
			if err != nil {
				return nil, fmt.Errorf("users seed entry %d: birthday: %w", i, err)
			}
			u.Birthday = b
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedUsers upserts users into p.
func SeedUsers(ctx context.Context, p UserProvisioner, users []core.User) error {
	for _, u := range users {
		if err := p.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	slog.InfoContext(ctx, "Users seeded", "count", len(users))
	return nil
}

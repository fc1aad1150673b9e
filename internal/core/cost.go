package core

import (
	"fmt"
	"strings"
	"time"
)

type (
	// Cost is a single immutable expense record.
	Cost struct {
		ID          string // assigned by the record store
		Description string
		Category    Category
		UserID      int64 // business id of the owning user
		Sum         float64
		Date        time.Time
	}

	// User is a provisioned user with its denormalized running total.
	User struct {
		ID            int64
		FirstName     string
		LastName      string
		Birthday      time.Time
		MaritalStatus string
		Total         float64
	}

	// TeamMember is one entry of the static team listing.
	TeamMember struct {
		FirstName string
		LastName  string
	}
)

func (c Cost) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDescription)
	}
	if !c.Category.IsValid() {
		return fmt.Errorf("%w: category %q must be one of %s", ErrValidation, c.Category, CategoryNames())
	}
	if c.Date.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrValidation)
	}
	return nil
}

package core

import (
	"fmt"
	"strings"
)

// Category is one of the fixed expense classifications.
type Category string

const (
	Food      Category = "food"
	Health    Category = "health"
	Housing   Category = "housing"
	Sport     Category = "sport"
	Education Category = "education"
)

// Categories lists every category in report order.
var Categories = []Category{Food, Health, Housing, Sport, Education}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	switch c {
	case Food, Health, Housing, Sport, Education:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory normalizes s and checks it against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: category %q must be one of %s", ErrValidation, s, CategoryNames())
	}
	return c, nil
}

// CategoryNames returns the category names joined for messages.
func CategoryNames() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

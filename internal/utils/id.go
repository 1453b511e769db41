package utils

import (
	"github.com/google/uuid"
)

// NewCategoryID creates a short opaque identifier for a new category.
// Short ids keep the deep-links compact.
func NewCategoryID() string {
	return uuid.NewString()[:8]
}

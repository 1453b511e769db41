package repositories

import (
	"errors"
)

var (
	// ErrNotFound is returned when a category, file or channel does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a category name is already taken.
	ErrDuplicateName = errors.New("category name already exists")
	// ErrDuplicateChannel is returned when a channel ID is already registered.
	ErrDuplicateChannel = errors.New("channel already registered")
)

package category

import "errors"

// Sentinel errors for the category service layer.
var (
	ErrNotFound     = errors.New("category not found")
	ErrInvalidColor = errors.New("unknown category color")
	ErrNameRequired = errors.New("category name is required")
)

package item

import "errors"

var (
	// ErrInvalidItem indicates a batch contained an item missing required
	// identity or classification fields. The whole batch is rejected before
	// any store interaction.
	ErrInvalidItem = errors.New("invalid item")
)

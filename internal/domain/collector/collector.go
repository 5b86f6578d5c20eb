package collector

import (
	"context"
	"fmt"
)

// Collector is one data-source adapter. Implementations are identified by an
// immutable source and category, fetch from the external system, normalize
// to canonical items, and persist them through the item service their
// constructor received. Push-style adapters may additionally expose their
// own intake entry point that feeds the engine directly.
type Collector interface {
	Source() string
	Category() string
	// Collect runs one collection pass and returns the number of items
	// processed. ctx carries the run's deadline; implementations must pass
	// it to outbound calls and store writes.
	Collect(ctx context.Context) (int, error)
}

// CollectionError is an adapter-level failure fetching, normalizing, or
// persisting data from an external source.
type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collector %s: %v", e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

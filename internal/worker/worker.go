package worker

import (
	"context"
)

// Worker is the interface every background worker implements.
type Worker interface {
	// Start runs the worker loop until stopped.
	Start(ctx context.Context) error

	// Stop signals the worker to stop.
	Stop() error

	// Name returns the worker name.
	Name() string
}

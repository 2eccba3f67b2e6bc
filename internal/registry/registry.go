package registry

import (
	"context"
	"errors"

	"github.com/phrazzld/acharya-api/internal/domain"
)

// Common errors returned by registry implementations
var (
	// ErrJobNotFound is returned when a job ID is not in the registry.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobExists is returned when creating a job whose ID is already registered.
	ErrJobExists = errors.New("job already exists")
)

// JobRegistry stores generation-job state. The driver writes all fields;
// the poller only fills empty content fields; the status API reads.
type JobRegistry interface {
	// Create registers a new job. Returns ErrJobExists if the ID is taken.
	Create(ctx context.Context, job *domain.Job) error

	// Get returns a snapshot of the job. Mutating the returned value does
	// not affect the registry. Returns ErrJobNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// Update applies fn to the job under the registry's write lock. The
	// callback sees the current job value and mutates it in place; no other
	// reader or writer observes an intermediate state. Returns
	// ErrJobNotFound for unknown IDs.
	Update(ctx context.Context, id string, fn func(*domain.Job)) error
}

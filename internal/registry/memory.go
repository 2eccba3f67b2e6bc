package registry

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/acharya-api/internal/domain"
)

// MemoryRegistry is a process-local JobRegistry backed by a mutex-guarded
// map. Entries live for the process lifetime.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

// NewMemoryRegistry creates an empty in-memory job registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		jobs: make(map[string]*domain.Job),
	}
}

// Ensure MemoryRegistry implements the JobRegistry interface
var _ JobRegistry = (*MemoryRegistry)(nil)

// Create implements JobRegistry.Create.
func (r *MemoryRegistry) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return ErrJobExists
	}

	r.jobs[job.ID] = job.Clone()
	return nil
}

// Get implements JobRegistry.Get.
func (r *MemoryRegistry) Get(ctx context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	return job.Clone(), nil
}

// Update implements JobRegistry.Update. The callback runs under the write
// lock, so concurrent updates from the driver and the poller never
// interleave mid-mutation.
func (r *MemoryRegistry) Update(ctx context.Context, id string, fn func(*domain.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	fn(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

package repository

// Option applies a configuration option to the InMemoryRegistry.
type Option func(*InMemoryRegistry)

// WithCapacity sets the per-batch seat limit.
func WithCapacity(capacity int) Option {
	return func(r *InMemoryRegistry) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}

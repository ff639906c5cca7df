package dedupe

// Option applies a configuration option to the in-memory index.
type Option func(*inMemoryIndex)

// WithCapacity pre-sizes the index for the expected number of keys.
// Non-positive values are ignored.
func WithCapacity(capacity int) Option {
	return func(d *inMemoryIndex) {
		if capacity > 0 {
			d.capacity = capacity
		}
	}
}

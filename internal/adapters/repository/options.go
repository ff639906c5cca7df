package repository

const defaultShards = 16

// Option configures a sharded store.
type Option func(*config)

type config struct {
	shards int
}

// WithShards sets the number of lock shards. Values below 1 are ignored.
func WithShards(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.shards = n
		}
	}
}

func newConfig(opts []Option) config {
	c := config{shards: defaultShards}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

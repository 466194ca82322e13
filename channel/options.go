package channel

// Option is a functional option for configuring a channel.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity bounds the channel to n buffered items.
// Send blocks while the channel is full and TrySend returns ErrFull.
// A non-positive n keeps the default unbounded behaviour.
func WithCapacity(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.capacity = n
		}
	}
}

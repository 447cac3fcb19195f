package dedupe

// Option applies a configuration option to the InMemory deduper.
type Option func(*InMemory)

// WithMaxSize sets how many ids are remembered. Non-positive values keep the default.
func WithMaxSize(maxSize int) Option {
	return func(d *InMemory) {
		if maxSize > 0 {
			d.ring = make([]string, maxSize)
		}
	}
}

package kvtable

const DefaultCacheSize = 4096

type Options struct {
	// CacheSize is the number of committed values kept decoded in memory.
	CacheSize int
	// Sync makes every Commit wait for the leveldb journal to reach disk.
	Sync bool
}

type Option func(*Options)

func WithCacheSize(n int) Option {
	return func(o *Options) {
		o.CacheSize = n
	}
}

func WithSync(sync bool) Option {
	return func(o *Options) {
		o.Sync = sync
	}
}

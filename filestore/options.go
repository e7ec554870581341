package filestore

// Options configures a Backend.
type Options struct {
	// FixedLength, when non zero, is the length of every leaf payload. The
	// position stream is not used and leaf offsets are ordinal * FixedLength.
	FixedLength uint16
}

type Option func(*Options)

// WithFixedLength declares every leaf to be exactly n bytes. An mmr opened
// with a fixed length must always be opened with the same length.
func WithFixedLength(n uint16) Option {
	return func(o *Options) {
		o.FixedLength = n
	}
}

package locked

// Batchable resources stage their mutations until Commit and can discard them
// with Rollback. The dirty flag records whether a writer touched the resource
// since the last Commit.
type Batchable interface {
	Commit() error
	Rollback() error
	IsDirty() bool
	SetDirty(dirty bool)
}

// WriteHooks is optional. When the locked resource implements it,
// OnInitWrite runs after the exclusive lock is taken and OnEndWrite runs just
// before it is dropped.
type WriteHooks interface {
	OnInitWrite()
	OnEndWrite()
}

// DirtyFlag provides the dirty half of Batchable for embedding.
type DirtyFlag struct {
	dirty bool
}

func (d *DirtyFlag) IsDirty() bool { return d.dirty }

func (d *DirtyFlag) SetDirty(dirty bool) { d.dirty = dirty }

package locked

import "errors"

var (
	ErrNotBatchable         = errors.New("resource does not support batched writes")
	ErrDuplicateParticipant = errors.New("resource passed more than once to a multi-resource lock")
	ErrReleased             = errors.New("view already released")
)

// Package locked guards a resource with a reader/writer lock and settles its
// pending changes when the exclusive view is released.
//
// A resource wrapped with NewBatchable is committed when an immediate Writer
// is released, unless the writer rolled it back first. A BatchWrite, or a
// multi-resource BatchLock, leaves committing to the caller and rolls back
// whatever is left when released.
//
//	tx, err := locked.BatchLock(outputs, kernels, utxos)
//	if err != nil {
//		return err
//	}
//	defer tx.Release()
//	...
//	return tx.Commit()
package locked

package memory

import "context"

// TxManager serializes access to the whole store. Repositories do not lock
// on their own and rely on being called inside RunInTx. It is not reentrant.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return fn(ctx)
}

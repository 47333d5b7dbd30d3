package ports

import "context"

// TxManager runs fn atomically. Store calls made with the ctx handed to fn
// join the transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

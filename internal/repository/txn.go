package repository

import "context"

// TxRunner runs a unit of work inside one storage transaction. The
// callback's context carries the transaction; every repository call made
// with it joins the same transaction. The unit commits only if fn returns
// nil and rolls back on any error or panic, so a domain mutation and its
// audit entry persist together or not at all.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

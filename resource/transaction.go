package resource

import (
	"context"
	"time"
)

// TxFunc is a unit of work run against an open transaction.
type TxFunc func(ctx context.Context, tx Tx) error

// Transaction runs work inside a single store transaction. The transaction is
// committed when work returns nil and rolled back otherwise, in which case
// the error returned by work is returned unchanged. If the rollback fails
// too, a KindDatabase error wrapping both errors is returned: the store
// state may be inconsistent.
//
// When ctx is done before the commit, the transaction is rolled back and
// ctx.Err() is returned. A panic in work rolls the transaction back before
// being propagated.
func (s *Service) Transaction(ctx context.Context, work TxFunc) (err error) {
	defer func(t time.Time) {
		s.trace(ctx, "Transaction", "", t, err)
	}(time.Now())
	return s.transaction(ctx, work)
}

func (s *Service) transaction(ctx context.Context, work TxFunc) (err error) {
	if s.storage == nil {
		return ErrNoStorage
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.storage.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	err = work(ctx, s.hookTx(ctx, tx))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return &Error{
				Kind:     KindDatabase,
				Message:  "transaction rollback failed",
				Err:      err,
				Rollback: rerr,
			}
		}
		return err
	}
	return tx.Commit()
}

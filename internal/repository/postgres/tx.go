package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/academia-moderation/internal/model"
)

var _ model.Transactor = (*Connection)(nil)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

type txKey struct{}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// WithinTransaction runs fn in a serializable transaction. Serialization
// failures and deadlocks restart the whole transaction with backoff.
func (s *Connection) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	opts := pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadWrite}
	return retryTx(ctx, s.txRetries, func() error {
		return s.runTx(ctx, opts, fn)
	})
}

// WithinSnapshot runs fn in a read-only repeatable-read transaction so that
// every read observes the same point in time.
func (s *Connection) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return s.runTx(ctx, opts, fn)
}

func (s *Connection) runTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	return pgx.BeginTxFunc(ctx, s.Pool, opts, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func retryTx(ctx context.Context, retries uint64, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil || isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

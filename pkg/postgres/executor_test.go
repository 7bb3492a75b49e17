package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx implements the parts of pgx.Tx WithinTransaction touches; the
// embedded interface panics on anything else.
type fakeTx struct {
	pgx.Tx

	savepoint   *fakeTx
	beginErr    error
	rollbackErr error

	committed  bool
	rolledBack bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.savepoint = &fakeTx{}

	return f.savepoint, nil
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true

	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true

	return f.rollbackErr
}

func TestGetExecutorPrefersBoundTx(t *testing.T) {
	p := &Postgres{}
	outer := &fakeTx{}

	assert.Same(t, outer, p.GetExecutor(context.WithValue(context.Background(), txKey{}, outer)))
}

func TestWithinTransactionNestedCommitsSavepoint(t *testing.T) {
	p := &Postgres{}
	outer := &fakeTx{}
	ctx := context.WithValue(context.Background(), txKey{}, outer)

	var seen Executor
	err := p.WithinTransaction(ctx, func(ctx context.Context) error {
		seen = p.GetExecutor(ctx)

		return nil
	})
	require.NoError(t, err)

	require.NotNil(t, outer.savepoint)
	assert.Same(t, outer.savepoint, seen)
	assert.True(t, outer.savepoint.committed)
	assert.False(t, outer.committed)
}

func TestWithinTransactionRollback(t *testing.T) {
	errWork := errors.New("insert failed")
	errRollback := errors.New("conn lost")

	tests := []struct {
		name        string
		rollbackErr error
		wantJoined  bool
	}{
		{"clean rollback", nil, false},
		{"already closed", pgx.ErrTxClosed, false},
		{"rollback fails", errRollback, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Postgres{}
			outer := &fakeTx{}
			ctx := context.WithValue(context.Background(), txKey{}, outer)

			err := p.WithinTransaction(ctx, func(ctx context.Context) error {
				p.GetExecutor(ctx).(*fakeTx).rollbackErr = tt.rollbackErr

				return errWork
			})

			require.ErrorIs(t, err, errWork)
			assert.Equal(t, tt.wantJoined, errors.Is(err, errRollback))
			assert.True(t, outer.savepoint.rolledBack)
			assert.False(t, outer.savepoint.committed)
		})
	}
}

func TestWithinTransactionBeginFails(t *testing.T) {
	p := &Postgres{}
	errBegin := errors.New("too many savepoints")
	ctx := context.WithValue(context.Background(), txKey{}, &fakeTx{beginErr: errBegin})

	called := false
	err := p.WithinTransaction(ctx, func(context.Context) error {
		called = true

		return nil
	})

	require.ErrorIs(t, err, errBegin)
	assert.False(t, called)
}

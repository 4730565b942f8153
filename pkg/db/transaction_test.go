package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// fakeTx records how the transaction ended. Other pgx.Tx methods are not used.
type fakeTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeStarter struct {
	tx  *fakeTx
	err error
}

func (s *fakeStarter) Begin(context.Context) (pgx.Tx, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	t.Run("commits", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{}}

		var got pgx.Tx
		err := WithTx(context.Background(), s, func(tx pgx.Tx) error {
			got = tx
			return nil
		})
		require.NoError(t, err)
		require.Same(t, s.tx, got)
		require.True(t, s.tx.committed)
		require.False(t, s.tx.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{}}
		boom := errors.New("boom")

		err := WithTx(context.Background(), s, func(pgx.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		require.True(t, s.tx.rolledBack)
		require.False(t, s.tx.committed)
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{}}

		require.PanicsWithValue(t, "boom", func() {
			_ = WithTx(context.Background(), s, func(pgx.Tx) error { panic("boom") })
		})
		require.True(t, s.tx.rolledBack)
		require.False(t, s.tx.committed)
	})

	t.Run("begin fails", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{err: errors.New("no conn")}

		called := false
		err := WithTx(context.Background(), s, func(pgx.Tx) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, ErrBeginTx)
		require.False(t, called)
	})

	t.Run("commit fails", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{commitErr: errors.New("serialization")}}

		err := WithTx(context.Background(), s, func(pgx.Tx) error { return nil })
		require.ErrorIs(t, err, ErrCommitTx)
	})
}

package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManager_NilPool(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pool is required")
}

func TestNewEnqueuer_NilPool(t *testing.T) {
	_, err := NewEnqueuer(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)
}

func TestErrors(t *testing.T) {
	assert.Contains(t, ErrUnknownTask.Error(), "unknown task")
	assert.Contains(t, ErrInvalidPayload.Error(), "invalid payload")
	assert.Contains(t, ErrPermanent.Error(), "permanent")
	assert.Contains(t, ErrAlreadyStarted.Error(), "already started")
	assert.Contains(t, ErrNotStarted.Error(), "not started")
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Permanent(nil))

	base := errors.New("mailbox unavailable")
	err := Permanent(base)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.ErrorIs(t, err, base)
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", errors.New("connection reset"), true},
		{"permanent", Permanent(errors.New("bad address")), false},
		{"invalid payload", errors.Join(ErrInvalidPayload, errors.New("bad json")), false},
		{"unknown task", ErrUnknownTask, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestMigrate_NilPool(t *testing.T) {
	assert.ErrorIs(t, Migrate(context.Background(), nil), ErrPoolRequired)
}

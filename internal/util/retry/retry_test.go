package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast() Option { return WithInitialDelay(time.Millisecond) }

func TestDo_FirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("still active")
		}
		return nil
	}, fast())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("still active")
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	}, WithAttempts(4), fast())

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "gave up after 4 attempts")
	assert.Equal(t, 4, calls)
}

func TestDo_FatalStopsImmediately(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("unit not found")
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return Fatal(sentinel)
	}, fast())

	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("still active")
	}, WithInitialDelay(time.Hour))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func(context.Context) error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithAttempts_Floor(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	WithAttempts(0)(&p)
	assert.Equal(t, 1, p.Attempts)
}

func TestFatal_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(errors.New("x")))
}

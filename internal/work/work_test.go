package work

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil is success", nil, Success},
		{"plain error fails", errors.New("boom"), Failed},
		{"context canceled", context.Canceled, Cancelled},
		{"deadline exceeded", context.DeadlineExceeded, Cancelled},
		{"wrapped sentinel", fmt.Errorf("stop: %w", ErrCancelled), Cancelled},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		called := false
		res := Run(ctx, func(context.Context) error { called = true; return nil })
		assert.True(t, called)
		assert.True(t, res.OK())
		assert.NoError(t, res.Err)
		assert.False(t, res.End.Before(res.Start))
	})

	t.Run("error", func(t *testing.T) {
		boom := errors.New("boom")
		res := Run(ctx, func(context.Context) error { return boom })
		assert.Equal(t, Failed, res.Outcome)
		assert.ErrorIs(t, res.Err, boom)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		res := Run(ctx, func(context.Context) error { panic("kaboom") })
		assert.Equal(t, Failed, res.Outcome)
		var pe *PanicError
		require.ErrorAs(t, res.Err, &pe)
		assert.Equal(t, "kaboom", pe.Value)
		assert.NotEmpty(t, pe.Stack)
	})

	t.Run("cancelled context skips the unit", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		res := Run(cctx, func(context.Context) error { called = true; return nil })
		assert.False(t, called)
		assert.Equal(t, Cancelled, res.Outcome)
		assert.ErrorIs(t, res.Err, ErrCancelled)
		assert.ErrorIs(t, res.Err, context.Canceled)
	})

	t.Run("nil unit succeeds", func(t *testing.T) {
		assert.True(t, Run(ctx, nil).OK())
	})
}

func TestWithTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}

	res := Run(context.Background(), WithTimeout(slow, 10*time.Millisecond))
	assert.Equal(t, Cancelled, res.Outcome)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	res = Run(context.Background(), WithTimeout(Func(func() {}), 0))
	assert.True(t, res.OK())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}

package fail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOnRunFail(t *testing.T) {
	err := OnRunFail(context.Background(), "A", &Input{})
	assert.ErrorIs(t, err, ErrInjected)
	assert.EqualError(t, err, "injected failure: task A failed")

	err = OnRunFail(context.Background(), "A", &Input{Message: "disk full", After: "5ms"})
	assert.EqualError(t, err, "injected failure: disk full")
}

func TestOnRunFail_Panic(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		_ = OnRunFail(context.Background(), "A", &Input{Message: "boom", Panic: true})
	})
}

func TestOnRunFail_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err := OnRunFail(ctx, "A", &Input{After: "1h"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validate(&Input{}))
	assert.NoError(t, validate(&Input{After: "1s"}))
	assert.Error(t, validate(&Input{After: "later"}))
}

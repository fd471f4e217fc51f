package registry

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/ctxlog"
)

func noop(context.Context, string, any) error { return nil }

type goodInput struct {
	Message string            `hcl:"message,optional"`
	Count   int               `hcl:"count"`
	Headers map[string]string `hcl:"headers,optional"`
	Rest    hcl.Body          `hcl:",remain"`
}

type badInput struct {
	Events chan string `hcl:"events"`
}

type moduleFunc func(r *Registry)

func (f moduleFunc) Register(r *Registry) { f(r) }

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), ctxlog.Discard())
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New().Use(moduleFunc(func(r *Registry) {
		r.RegisterRunner("sleep", &RegisteredRunner{Fn: noop})
		r.RegisterRunner("print", &RegisteredRunner{Fn: noop, NewInput: func() any { return new(goodInput) }})
	}))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"print", "sleep"}, r.RunnerTypes())

	h, ok := r.Runner("print")
	require.True(t, ok)
	assert.NotNil(t, h.NewInput)

	_, ok = r.Runner("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterPanics(t *testing.T) {
	r := New()
	r.RegisterRunner("sleep", &RegisteredRunner{Fn: noop})

	assert.PanicsWithValue(t, "runner handler with name 'sleep' already registered", func() {
		r.RegisterRunner("sleep", &RegisteredRunner{Fn: noop})
	})
	assert.Panics(t, func() { r.RegisterRunner("nil", nil) })
	assert.Panics(t, func() { r.RegisterRunner("nofn", &RegisteredRunner{}) })
}

func TestRegistry_Validate(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		r := New()
		r.RegisterRunner("none", &RegisteredRunner{Fn: noop})
		r.RegisterRunner("good", &RegisteredRunner{Fn: noop, NewInput: func() any { return new(goodInput) }})
		assert.NoError(t, r.Validate(testContext()))
	})

	t.Run("non-pointer input", func(t *testing.T) {
		r := New()
		r.RegisterRunner("value", &RegisteredRunner{Fn: noop, NewInput: func() any { return goodInput{} }})
		err := r.Validate(testContext())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "runner 'value': NewInput must return a non-nil struct pointer")
	})

	t.Run("field without cty type", func(t *testing.T) {
		r := New()
		r.RegisterRunner("bad", &RegisteredRunner{Fn: noop, NewInput: func() any { return new(badInput) }})
		err := r.Validate(testContext())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "runner 'bad', input 'events'")
	})
}

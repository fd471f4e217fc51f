package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertPrecedes checks that from completed before to was dispatched.
func AssertPrecedes(t *testing.T, r *Recorder, from, to string) {
	t.Helper()

	a, b := r.Get(from), r.Get(to)
	require.Equal(t, 1, a.Completions, "node %q should complete exactly once", from)
	require.Equal(t, 1, b.Dispatches, "node %q should be dispatched exactly once", to)
	require.Less(t, a.CompleteSeq, b.DispatchSeq,
		"node %q was dispatched before its predecessor %q completed", to, from)
}

// AssertExactlyOnce checks that every named node was dispatched and completed once.
func AssertExactlyOnce(t *testing.T, r *Recorder, names ...string) {
	t.Helper()

	for _, name := range names {
		rec := r.Get(name)
		require.Equal(t, 1, rec.Dispatches, "node %q dispatches", name)
		require.Equal(t, 1, rec.Completions, "node %q completions", name)
	}
}

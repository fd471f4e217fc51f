package http_request

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(b)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	srv := newServer(t)
	m := New(5 * time.Second)

	testCases := []struct {
		name    string
		input   Input
		wantErr string
	}{
		{"get ok", Input{URL: srv.URL + "/ok", Headers: map[string]string{"X-Test": "yes"}}, ""},
		{"post with expected status", Input{URL: srv.URL + "/echo", Method: "post", Body: "hi", ExpectStatus: 201}, ""},
		{"status mismatch", Input{URL: srv.URL + "/echo", ExpectStatus: 200}, "unexpected status 201 Created, want 200"},
		{"client error", Input{URL: srv.URL + "/missing"}, "request failed with status 404 Not Found"},
		{"expected not found", Input{URL: srv.URL + "/missing", ExpectStatus: 404}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.input
			err := m.Run(context.Background(), "req", &in)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := (&Module{}).Run(ctx, "req", &Input{URL: srv.URL + "/slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validate(&Input{URL: "https://example.com/x"}))
	assert.Error(t, validate(&Input{URL: "ftp://example.com"}))
	assert.Error(t, validate(&Input{URL: "://bad"}))
}

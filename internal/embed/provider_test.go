package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestHTTPProvider_RetriesOn503ThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1, 2, 3}}},
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "m", 3)
	p.Retry = fastRetryConfig()

	vectors, err := p.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2, 3}}, vectors)
	assert.Equal(t, 3, calls, "must retry the 503 responses until the provider recovers")
}

func TestHTTPProvider_StopsRetryingOnNonRetriable4xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad input"))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "m", 3)
	p.Retry = fastRetryConfig()

	_, err := p.Embed(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a non-429 4xx must fail immediately without burning the retry budget")
}

func TestHTTPProvider_RetriesOn429(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{4, 5, 6}}},
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "m", 3)
	p.Retry = fastRetryConfig()

	vectors, err := p.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{4, 5, 6}}, vectors)
	assert.Equal(t, 2, calls)
}

package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses, failures atomic.Int32
}

func (o *countingObserver) CacheHit()      { o.hits.Add(1) }
func (o *countingObserver) CacheMiss()     { o.misses.Add(1) }
func (o *countingObserver) ResolveFailed() { o.failures.Add(1) }

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func streamHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/streams/")
	switch id {
	case "gone":
		w.WriteHeader(http.StatusNotFound)
	case "broken":
		w.WriteHeader(http.StatusBadGateway)
	case "empty":
		_, _ = w.Write([]byte(`{"url":""}`))
	default:
		_, _ = w.Write([]byte(`{"url":"https://cdn.example/` + id + `.mp3"}`))
	}
}

func TestResolve_CachesPositive(t *testing.T) {
	srv, calls := newServer(t, streamHandler)
	obs := &countingObserver{}
	c := New(Options{BaseURL: srv.URL + "/", Observer: obs})

	u, err := c.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/t1.mp3", u)

	u, err = c.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/t1.mp3", u)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), obs.hits.Load())
	assert.Equal(t, int32(1), obs.misses.Load())
}

func TestResolve_CachesNegative(t *testing.T) {
	srv, calls := newServer(t, streamHandler)
	obs := &countingObserver{}
	c := New(Options{BaseURL: srv.URL, Observer: obs})

	for range 3 {
		_, err := c.Resolve(context.Background(), "gone")
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), obs.failures.Load())
}

func TestResolve_EmptyURLIsUnavailable(t *testing.T) {
	srv, _ := newServer(t, streamHandler)
	c := New(Options{BaseURL: srv.URL})

	_, err := c.Resolve(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolve_TransientErrorNotCached(t *testing.T) {
	srv, calls := newServer(t, streamHandler)
	c := New(Options{BaseURL: srv.URL})

	for range 2 {
		_, err := c.Resolve(context.Background(), "broken")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolve_EmptyID(t *testing.T) {
	c := New(Options{BaseURL: "http://unused.invalid"})
	_, err := c.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolve_DeduplicatesConcurrent(t *testing.T) {
	release := make(chan struct{})
	srv, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		streamHandler(w, r)
	})
	c := New(Options{BaseURL: srv.URL})

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := c.Resolve(context.Background(), "shared")
			if err == nil {
				results[i] = u
			}
		}()
	}

	// let every goroutine join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, u := range results {
		assert.Equal(t, "https://cdn.example/shared.mp3", u)
	}
}

func TestResolve_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		streamHandler(w, r)
	})
	defer close(release)
	c := New(Options{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Resolve(ctx, "slow")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForget(t *testing.T) {
	srv, calls := newServer(t, streamHandler)
	c := New(Options{BaseURL: srv.URL})

	_, err := c.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	c.Forget("t1")
	_, err = c.Resolve(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

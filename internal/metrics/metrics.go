// Package metrics exposes playback counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Collector counts engine, resolver and taste events. It satisfies
// playback.Observer, resolver.Observer and taste.Observer.
type Collector struct {
	registry *prometheus.Registry

	played        prometheus.Counter
	skipped       prometheus.Counter
	playbackFails prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	resolveFails  prometheus.Counter
}

// New registers the tides counters on a fresh registry.
func New() *Collector {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tides",
			Name:      name,
			Help:      help,
		})
	}
	c := &Collector{
		registry:      prometheus.NewRegistry(),
		played:        counter("tracks_played_total", "Tracks that became current."),
		skipped:       counter("tracks_skipped_total", "Plays shorter than 30 seconds of longer tracks."),
		playbackFails: counter("playback_errors_total", "Tracks that ended in an error state."),
		cacheHits:     counter("stream_cache_hits_total", "Stream URL lookups served from cache."),
		cacheMisses:   counter("stream_cache_misses_total", "Stream URL lookups sent to the backend."),
		resolveFails:  counter("stream_resolve_failures_total", "Stream URL lookups that failed."),
	}
	c.registry.MustRegister(
		c.played, c.skipped, c.playbackFails,
		c.cacheHits, c.cacheMisses, c.resolveFails,
	)
	return c
}

// TrackStarted counts a track becoming current in the engine.
func (c *Collector) TrackStarted() { c.played.Inc() }

// PlaybackFailed counts a track that ended in the errored state.
func (c *Collector) PlaybackFailed() { c.playbackFails.Inc() }

// TrackSkipped counts a play the taste scorer classified as a skip.
func (c *Collector) TrackSkipped() { c.skipped.Inc() }

// CacheHit counts a stream lookup answered from the resolver cache,
// including cached failures.
func (c *Collector) CacheHit() { c.cacheHits.Inc() }

// CacheMiss counts a stream lookup sent to the backend.
func (c *Collector) CacheMiss() { c.cacheMisses.Inc() }

// ResolveFailed counts a backend stream lookup that returned no URL.
func (c *Collector) ResolveFailed() { c.resolveFails.Inc() }

// Registry returns the registry holding the counters.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.WithField("addr", addr).Info("metrics endpoint listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

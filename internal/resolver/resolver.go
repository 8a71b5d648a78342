// Package resolver turns track ids into playable stream URLs.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrUnavailable is returned when the backend has no stream for a track.
var ErrUnavailable = errors.New("stream unavailable")

const userAgent = "tides-music-player/1.0"

// Observer receives cache and failure counts. Implemented by metrics.Collector.
type Observer interface {
	CacheHit()
	CacheMiss()
	ResolveFailed()
}

type nopObserver struct{}

func (nopObserver) CacheHit()      {}
func (nopObserver) CacheMiss()     {}
func (nopObserver) ResolveFailed() {}

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Timeout     time.Duration
	CacheSize   int
	CacheTTL    time.Duration
	NegativeTTL time.Duration
	Observer    Observer
	Logger      logrus.FieldLogger
}

// Client resolves stream URLs against the music backend.
// Results are cached; concurrent lookups of one id share a single request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	found      *expirable.LRU[string, string]
	missing    *expirable.LRU[string, struct{}]
	inflight   singleflight.Group
	obs        Observer
	log        logrus.FieldLogger
}

// New creates a resolver client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 500
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		found:      expirable.NewLRU[string, string](opts.CacheSize, nil, opts.CacheTTL),
		missing:    expirable.NewLRU[string, struct{}](opts.CacheSize, nil, opts.NegativeTTL),
		obs:        opts.Observer,
		log:        opts.Logger.WithField("component", "resolver"),
	}
}

type streamResponse struct {
	URL string `json:"url"`
}

// Resolve returns the stream URL for trackID.
// ErrUnavailable is cached for the negative TTL; transient failures are not cached.
// Cancelling ctx abandons the wait but not the shared request.
func (c *Client) Resolve(ctx context.Context, trackID string) (string, error) {
	if trackID == "" {
		return "", ErrUnavailable
	}
	if u, ok := c.found.Get(trackID); ok {
		c.obs.CacheHit()
		return u, nil
	}
	if _, ok := c.missing.Get(trackID); ok {
		c.obs.CacheHit()
		return "", ErrUnavailable
	}
	c.obs.CacheMiss()

	ch := c.inflight.DoChan(trackID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		u, err := c.fetch(fetchCtx, trackID)
		switch {
		case err == nil:
			c.found.Add(trackID, u)
		case errors.Is(err, ErrUnavailable):
			c.missing.Add(trackID, struct{}{})
			c.obs.ResolveFailed()
		default:
			c.obs.ResolveFailed()
			c.log.WithError(err).WithField("track", trackID).Warn("stream resolve failed")
		}
		return u, err
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Prefetch warms the cache for trackID in the background.
func (c *Client) Prefetch(trackID string) {
	if trackID == "" {
		return
	}
	if _, ok := c.found.Peek(trackID); ok {
		return
	}
	go func() {
		_, _ = c.Resolve(context.Background(), trackID)
	}()
}

// Forget drops any cached result for trackID.
func (c *Client) Forget(trackID string) {
	c.found.Remove(trackID)
	c.missing.Remove(trackID)
}

func (c *Client) fetch(ctx context.Context, trackID string) (string, error) {
	reqURL := fmt.Sprintf("%s/streams/%s", c.baseURL, url.PathEscape(trackID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone, http.StatusForbidden:
		return "", ErrUnavailable
	default:
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var result streamResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.URL == "" {
		return "", ErrUnavailable
	}
	return result.URL, nil
}

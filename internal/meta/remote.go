package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RemoteSource fetches metagame snapshots from a tournament-results API.
// Responses are cached and requests are rate limited; the site is a shared
// resource.
type RemoteSource struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cacheTTL   time.Duration

	mu        sync.Mutex
	cached    map[string]*Snapshot
	fetchedAt map[string]time.Time
}

// RemoteConfig configures the remote snapshot source.
type RemoteConfig struct {
	// BaseURL is the metagame API base URL.
	BaseURL string

	// CacheTTL is how long a fetched snapshot stays fresh.
	CacheTTL time.Duration

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout time.Duration

	// RequestsPerMinute caps the outbound request rate.
	RequestsPerMinute int
}

// DefaultRemoteConfig returns default configuration.
func DefaultRemoteConfig() *RemoteConfig {
	return &RemoteConfig{
		BaseURL:           "https://play.limitlesstcg.com/api",
		CacheTTL:          4 * time.Hour,
		RequestTimeout:    30 * time.Second,
		RequestsPerMinute: 30,
	}
}

// NewRemoteSource creates a remote snapshot source.
func NewRemoteSource(config *RemoteConfig) *RemoteSource {
	if config == nil {
		config = DefaultRemoteConfig()
	}
	perMinute := config.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RemoteSource{
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		baseURL:   config.BaseURL,
		limiter:   rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1),
		cacheTTL:  config.CacheTTL,
		cached:    make(map[string]*Snapshot),
		fetchedAt: make(map[string]time.Time),
	}
}

// Fetch retrieves the current snapshot for a format, serving from cache when
// fresh.
func (r *RemoteSource) Fetch(ctx context.Context, format string) (*Snapshot, error) {
	r.mu.Lock()
	if s, ok := r.cached[format]; ok && time.Since(r.fetchedAt[format]) < r.cacheTTL {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/meta/%s", r.baseURL, format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building meta request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching metagame for %s: %w", format, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metagame API returned %d for %s", resp.StatusCode, format)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading metagame response: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decoding metagame response: %w", err)
	}
	if s.Format == "" {
		s.Format = format
	}
	if s.Date.IsZero() {
		s.Date = time.Now().UTC()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("remote snapshot rejected: %w", err)
	}

	r.mu.Lock()
	r.cached[format] = &s
	r.fetchedAt[format] = time.Now()
	r.mu.Unlock()
	return &s, nil
}

// Invalidate drops the cached snapshot for a format.
func (r *RemoteSource) Invalidate(format string) {
	r.mu.Lock()
	delete(r.cached, format)
	delete(r.fetchedAt, format)
	r.mu.Unlock()
}

package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/metrics"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Default MapTiler client configuration
const (
	// DefaultBaseURL is the MapTiler API endpoint
	DefaultBaseURL = "https://api.maptiler.com"
	// DefaultTimeout bounds a single geocoding request
	DefaultTimeout = 5 * time.Second
	// DefaultRateLimit is the sustained request rate allowed towards MapTiler
	DefaultRateLimit = 5.0
	// DefaultRateBurst is the request burst allowed towards MapTiler
	DefaultRateBurst = 10
	// maxResponseBytes caps how much of a geocoding response is read
	maxResponseBytes = 1 << 20
)

// Lookup kinds used as metric labels.
const (
	kindReverse = "reverse"
	kindSearch  = "search"
)

var errServerStatus = errors.New("maptiler server error")

// Opts holds configuration options for the MapTiler client.
type Opts struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
}

// Option defines a configuration option for the MapTiler client.
type Option func(*Opts)

// WithAPIKey sets the MapTiler API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the MapTiler endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = u }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithRateLimit sets the sustained request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *Opts) {
		o.RateLimit = perSecond
		o.RateBurst = burst
	}
}

type feature struct {
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
}

type featureCollection struct {
	Features []feature `json:"features"`
}

// MapTilerClient implements Lookup against the MapTiler geocoding API.
// Requests are rate limited and guarded by a circuit breaker; every failure
// degrades to a nil result.
type MapTilerClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]feature]
}

// NewMapTilerClient creates a MapTiler-backed Lookup.
func NewMapTilerClient(opts ...Option) (*MapTilerClient, error) {
	cfg := Opts{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		RateLimit: DefaultRateLimit,
		RateBurst: DefaultRateBurst,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("MapTiler client config loaded", "APIKey_set", cfg.APIKey != "", "baseURL", cfg.BaseURL, "timeout", cfg.Timeout)

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("maptiler API key must be provided")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	cb := gobreaker.NewCircuitBreaker[[]feature](gobreaker.Settings{
		Name:        "maptiler",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("MapTilerClient: circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.GeoCircuitState.Set(circuitStateValue(to))
		},
	})
	metrics.GeoCircuitState.Set(0)

	return &MapTilerClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		cb:      cb,
	}, nil
}

// ReverseGeocode resolves coordinates to a district and state. The first
// feature's place name is split on commas: "District, State, Country".
func (c *MapTilerClient) ReverseGeocode(ctx context.Context, lat, lon float64) *Location {
	path := fmt.Sprintf("/geocoding/%s,%s.json",
		strconv.FormatFloat(lon, 'f', -1, 64), strconv.FormatFloat(lat, 'f', -1, 64))

	features, err := c.query(ctx, kindReverse, path)
	if err != nil {
		slog.Warn("MapTilerClient.ReverseGeocode: lookup failed", "error", err, "lat", lat, "lon", lon)
		return nil
	}
	if len(features) == 0 {
		metrics.GeoLookups.WithLabelValues(kindReverse, metrics.GeoResultMiss).Inc()
		slog.Debug("MapTilerClient.ReverseGeocode: no match", "lat", lat, "lon", lon)
		return nil
	}

	placeName := features[0].PlaceName
	district, state := splitPlaceName(placeName)
	metrics.GeoLookups.WithLabelValues(kindReverse, metrics.GeoResultHit).Inc()
	slog.Debug("MapTilerClient.ReverseGeocode: match", "district", district, "state", state)
	return &Location{District: district, State: state, RawPlaceName: placeName}
}

// SearchPlace returns the best match for a free-text place query.
func (c *MapTilerClient) SearchPlace(ctx context.Context, query string) *PlaceMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	path := "/geocoding/" + url.PathEscape(query) + ".json"

	features, err := c.query(ctx, kindSearch, path)
	if err != nil {
		slog.Warn("MapTilerClient.SearchPlace: lookup failed", "error", err, "query", query)
		return nil
	}
	if len(features) == 0 {
		metrics.GeoLookups.WithLabelValues(kindSearch, metrics.GeoResultMiss).Inc()
		slog.Debug("MapTilerClient.SearchPlace: no match", "query", query)
		return nil
	}

	best := features[0]
	match := &PlaceMatch{Name: best.PlaceName}
	if match.Name == "" {
		match.Name = query
	}
	if len(best.Center) == 2 {
		match.Lon, match.Lat = best.Center[0], best.Center[1]
	}
	metrics.GeoLookups.WithLabelValues(kindSearch, metrics.GeoResultHit).Inc()
	slog.Debug("MapTilerClient.SearchPlace: match", "query", query, "name", match.Name)
	return match
}

// query runs one geocoding request through the limiter and breaker.
func (c *MapTilerClient) query(ctx context.Context, kind, path string) ([]feature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.GeoLookups.WithLabelValues(kind, metrics.GeoResultRejected).Inc()
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	features, err := c.cb.Execute(func() ([]feature, error) {
		return c.fetch(ctx, path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.GeoLookups.WithLabelValues(kind, metrics.GeoResultRejected).Inc()
		} else {
			metrics.GeoLookups.WithLabelValues(kind, metrics.GeoResultError).Inc()
		}
		return nil, err
	}
	return features, nil
}

func (c *MapTilerClient) fetch(ctx context.Context, path string) ([]feature, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// Client-side statuses (bad query, unknown place) are misses, not outages.
		slog.Debug("MapTilerClient.fetch: non-OK status treated as miss", "status", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return fc.Features, nil
}

func splitPlaceName(placeName string) (district, state string) {
	district, state = UnknownDistrict, UnknownState
	parts := strings.Split(placeName, ",")
	if len(parts) >= 1 {
		if d := strings.TrimSpace(parts[0]); d != "" {
			district = d
		}
	}
	if len(parts) >= 2 {
		if s := strings.TrimSpace(parts[1]); s != "" {
			state = s
		}
	}
	return district, state
}

func circuitStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

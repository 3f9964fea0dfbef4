// Package hub talks to the model hub REST API for model and dataset metadata.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mchmarny/modelscore/pkg/net"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public model hub address.
	DefaultBaseURL = "https://huggingface.co"

	// client-side throttle, the hub starts rejecting anonymous
	// bursts well before its documented limits
	requestsPerSecond = 8
	requestBurst      = 4

	breakerMaxRequests = 3
	breakerMinRequests = 5
)

// ModelMeta is the subset of hub model metadata the metrics read.
// CardData and Config stay loosely typed, the hub schema varies by repo.
type ModelMeta struct {
	ID          string             `json:"id"`
	Author      string             `json:"author"`
	Downloads   int64              `json:"downloads"`
	Likes       int64              `json:"likes"`
	Tags        []string           `json:"tags"`
	CardData    map[string]any     `json:"cardData"`
	Config      map[string]any     `json:"config"`
	Safetensors *SafetensorsReport `json:"safetensors"`

	// fetched separately from the raw file endpoint
	Readme     string `json:"-"`
	ModelIndex string `json:"-"`
}

// SafetensorsReport carries parameter counts per tensor dtype.
type SafetensorsReport struct {
	Total      int64            `json:"total"`
	Parameters map[string]int64 `json:"parameters"`
}

// DatasetMeta is the subset of hub dataset metadata the metrics read.
type DatasetMeta struct {
	ID          string         `json:"id"`
	Author      string         `json:"author"`
	Description string         `json:"description"`
	Citation    string         `json:"citation"`
	Downloads   int64          `json:"downloads"`
	Likes       int64          `json:"likes"`
	Tags        []string       `json:"tags"`
	CardData    map[string]any `json:"cardData"`
}

// Client fetches model hub metadata with client-side throttling and a
// circuit breaker so a misbehaving hub degrades to absent metadata
// instead of stalling the whole batch.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// New creates a hub client against the public hub.
func New() (*Client, error) {
	return NewWithBaseURL(DefaultBaseURL)
}

// NewWithBaseURL creates a hub client against the given base URL.
func NewWithBaseURL(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL is required")
	}

	hc, err := net.GetHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "hub",
		MaxRequests: breakerMaxRequests,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= breakerMinRequests &&
				counts.ConsecutiveFailures >= breakerMinRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Debug("hub breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		breaker: cb,
	}, nil
}

// ParseRepoPath extracts the owner/name pair from a hub model or dataset URL.
func ParseRepoPath(rawURL string) (owner, name string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("malformed hub URL: %q", rawURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 && parts[0] == "datasets" {
		parts = parts[1:]
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed hub URL path: %q", rawURL)
	}
	return parts[0], parts[1], nil
}

func getJSON[T any](ctx context.Context, c *Client, url string, target *T) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, net.GetJSON(c.http, url, target)
	})
	return err
}

func (c *Client) getText(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	v, err := c.breaker.Execute(func() (any, error) {
		return net.GetText(c.http, url)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// GetModel fetches model metadata for a hub model URL, including the raw
// README and model index files when present. A missing README or index is
// not an error, the fields stay empty.
func (c *Client) GetModel(ctx context.Context, modelURL string) (*ModelMeta, error) {
	owner, name, err := ParseRepoPath(modelURL)
	if err != nil {
		return nil, err
	}

	var meta ModelMeta
	apiURL := fmt.Sprintf("%s/api/models/%s/%s", c.baseURL, owner, name)
	slog.Debug("fetching hub model metadata", "url", apiURL)
	if err := getJSON(ctx, c, apiURL, &meta); err != nil {
		return nil, fmt.Errorf("fetching model metadata for %s/%s: %w", owner, name, err)
	}

	if readme, err := c.getFile(ctx, owner, name, "README.md"); err == nil {
		meta.Readme = readme
	} else {
		slog.Debug("no README for model", "model", meta.ID, "error", err)
	}

	if idx, err := c.getFile(ctx, owner, name, "model_index.json"); err == nil {
		meta.ModelIndex = idx
	} else {
		slog.Debug("no model index for model", "model", meta.ID, "error", err)
	}

	return &meta, nil
}

// GetDataset fetches dataset metadata for a hub dataset URL.
func (c *Client) GetDataset(ctx context.Context, datasetURL string) (*DatasetMeta, error) {
	owner, name, err := ParseRepoPath(datasetURL)
	if err != nil {
		return nil, err
	}

	var meta DatasetMeta
	apiURL := fmt.Sprintf("%s/api/datasets/%s/%s", c.baseURL, owner, name)
	slog.Debug("fetching hub dataset metadata", "url", apiURL)
	if err := getJSON(ctx, c, apiURL, &meta); err != nil {
		return nil, fmt.Errorf("fetching dataset metadata for %s/%s: %w", owner, name, err)
	}
	return &meta, nil
}

func (c *Client) getFile(ctx context.Context, owner, name, file string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/resolve/main/%s", c.baseURL, owner, name, file)
	return c.getText(ctx, url)
}

// Probe reports whether the hub knows the model or dataset behind the URL.
func (c *Client) Probe(ctx context.Context, rawURL string) bool {
	owner, name, err := ParseRepoPath(rawURL)
	if err != nil {
		return false
	}

	kind := "models"
	if strings.Contains(rawURL, "/datasets/") {
		kind = "datasets"
	}

	// HEAD is enough here, reachability does not need the metadata body
	apiURL := fmt.Sprintf("%s/api/%s/%s/%s", c.baseURL, kind, owner, name)
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}
	return net.Head(c.http, apiURL)
}

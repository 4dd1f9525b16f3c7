// Package backend provides a client for the simulation backend: office
// configuration, baseline input and simulation runs.
package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/pkg/constants"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client defines the backend operations the planner consumes.
type Client interface {
	// FetchOffices returns the office configuration with roles resolved.
	FetchOffices(ctx context.Context) ([]offices.Office, error)
	// FetchBaseline returns the raw baseline payload for normalization.
	FetchBaseline(ctx context.Context) ([]byte, error)
	// RunSimulation submits office overrides and returns the raw result.
	RunSimulation(ctx context.Context, overrides matrix.Overrides) ([]byte, error)
}

// Option configures the backend client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		if hc != nil {
			c.http = hc
			c.customHTTP = true
		}
	}
}

// WithBaselinePath overrides the baseline endpoint path.
func WithBaselinePath(path string) Option {
	return func(c *httpClient) {
		if path != "" {
			c.baselinePath = path
		}
	}
}

// WithRateLimit limits outgoing requests per second. Zero or negative
// disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *httpClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client. A
// client supplied through WithHTTPClient keeps its own timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *httpClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *httpClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type httpClient struct {
	baseURL      string
	baselinePath string
	http         *http.Client
	customHTTP   bool
	timeout      time.Duration
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		baselinePath: constants.DefaultBaselinePath,
		http: &http.Client{
			Timeout: constants.DefaultBackendTimeoutSeconds * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(constants.DefaultBackendRequestsPerSecond), 1),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.customHTTP && c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	return c
}

func (c *httpClient) FetchOffices(ctx context.Context) ([]offices.Office, error) {
	body, err := c.do(ctx, http.MethodGet, constants.OfficesConfigPath, nil)
	if err != nil {
		return nil, err
	}
	list, err := offices.Parse(body)
	if err != nil {
		return nil, eris.Wrap(err, "backend: parse offices config")
	}
	c.logger.Debug("fetched offices config",
		zap.String("op", "backend.FetchOffices"),
		zap.Int("offices", len(list)),
	)
	return list, nil
}

func (c *httpClient) FetchBaseline(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.baselinePath, nil)
}

type simulationRequest struct {
	OfficeOverrides matrix.Overrides `json:"office_overrides"`
}

func (c *httpClient) RunSimulation(ctx context.Context, overrides matrix.Overrides) ([]byte, error) {
	payload, err := json.Marshal(simulationRequest{OfficeOverrides: overrides})
	if err != nil {
		return nil, eris.Wrap(err, "backend: encode office overrides")
	}
	return c.do(ctx, http.MethodPost, constants.SimulationRunPath, payload)
}

func (c *httpClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "backend: rate limiter")
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, eris.Wrapf(err, "backend: build request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "backend: %s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "backend: read response %s %s", method, path)
	}

	c.logger.Debug("backend request completed",
		zap.String("op", "backend.do"),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("backend: %s %s returned %d: %s", method, path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftlab/dashboard-backend/pkg/config"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
	"github.com/draftlab/dashboard-backend/pkg/logger"
	"github.com/draftlab/dashboard-backend/pkg/metrics"
)

const responseBodyReadLimit int64 = 4096

// Store executes searches against the event store.
type Store interface {
	Search(ctx context.Context, query *Query) (*Result, error)
	Ping(ctx context.Context) error
}

// Client talks to the event store over its JSON search API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	index      string
	username   string
	password   string
	logg       *logger.Logger
	obs        *metrics.EngineMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithObserver attaches engine metrics to the client.
func WithObserver(obs *metrics.EngineMetrics) Option {
	return func(c *Client) {
		c.obs = obs
	}
}

// NewClient builds the event store client from configuration.
func NewClient(cfg config.EventStoreConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event store endpoint is required")
	}
	index := strings.TrimSpace(cfg.Index)
	if index == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event store index is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		index:      index,
		username:   cfg.Username,
		password:   cfg.Password,
		logg:       logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Search executes the query against the configured index.
func (c *Client) Search(ctx context.Context, query *Query) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event store client not configured")
	}
	if query == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuery, "search query is required")
	}

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidQuery, err, "marshal search query")
	}

	searchURL := fmt.Sprintf("%s/%s/_search", c.endpoint, c.index)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(metrics.StoreFailure, started)
		c.logg.Warn(ctx, "event store request failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransientStore, err, "execute search request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.observe(metrics.StoreFailure, started)
		return nil, c.statusError(ctx, resp)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.observe(metrics.StoreFailure, started)
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransientStore, err, "decode search response")
	}

	c.observe(metrics.StoreSuccess, started)
	return &result, nil
}

func (c *Client) statusError(ctx context.Context, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	detail := strings.TrimSpace(string(body))

	c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), "event store returned non-OK status")

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return pkgerrors.New(pkgerrors.CodeInvalidQuery, "event store rejected query").WithDetails(detail)
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "event store index not found")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeDependency, "event store rejected credentials")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeTransientStore,
			fmt.Errorf("status %d: %s", resp.StatusCode, detail), "search request failed")
	}
}

// Ping verifies the store answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "event store client not configured")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build ping request")
	}
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransientStore, err, "event store unreachable")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.New(pkgerrors.CodeTransientStore, "event store unhealthy")
	}
	return nil
}

func (c *Client) observe(outcome string, started time.Time) {
	c.obs.IncStore(outcome)
	c.obs.ObserveStoreDuration(outcome, time.Since(started))
}

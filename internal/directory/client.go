package directory

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
)

const (
	searchPath                 = "/v1/mgmt/user/search"
	lookupChunkSize            = 100
	responseBodyReadLimit int64 = 2048

	// UnknownName fills in for users the directory cannot resolve.
	UnknownName = "Unknown"
)

// UserDetails is the resolved identity for one user.
type UserDetails struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Directory resolves user identities and registration counts.
type Directory interface {
	CountAll(ctx context.Context, asOf time.Time) (int64, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	LookupDetails(ctx context.Context, userIDs []string) (map[string]UserDetails, error)
	Ping(ctx context.Context) error
}

// Client talks to the user directory's management search API.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	bearerToken string
	pageSize    int
	logg        *logger.Logger
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

// NewClient builds the directory client from configuration.
func NewClient(cfg config.DirectoryConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "directory endpoint is required")
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > lookupChunkSize {
		pageSize = lookupChunkSize
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		endpoint:    endpoint,
		bearerToken: cfg.BearerToken,
		pageSize:    pageSize,
		logg:        logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type searchRequest struct {
	LoginIDs []string `json:"loginIds,omitempty"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
}

type searchResponse struct {
	Users []struct {
		UserID      string   `json:"userId"`
		LoginIDs    []string `json:"loginIds"`
		Email       string   `json:"email"`
		Name        string   `json:"name"`
		CreatedTime int64    `json:"createdTime"`
	} `json:"users"`
}

// CountAll returns how many users were registered at the asOf instant.
func (c *Client) CountAll(ctx context.Context, asOf time.Time) (int64, error) {
	cutoff := asOf.Unix()

	var total int64
	err := c.eachPage(ctx, func(resp *searchResponse) {
		for _, user := range resp.Users {
			if user.CreatedTime <= cutoff {
				total++
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CountCreatedBetween returns how many users registered inside [start, end].
func (c *Client) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	startUnix := start.Unix()
	endUnix := end.Unix()

	var total int64
	err := c.eachPage(ctx, func(resp *searchResponse) {
		for _, user := range resp.Users {
			if user.CreatedTime >= startUnix && user.CreatedTime <= endUnix {
				total++
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// LookupDetails resolves the given user IDs, batching requests in chunks.
// IDs the directory does not know come back with a placeholder name so the
// caller can still render a full roster.
func (c *Client) LookupDetails(ctx context.Context, userIDs []string) (map[string]UserDetails, error) {
	details := make(map[string]UserDetails, len(userIDs))
	if len(userIDs) == 0 {
		return details, nil
	}

	for begin := 0; begin < len(userIDs); begin += lookupChunkSize {
		chunkEnd := begin + lookupChunkSize
		if chunkEnd > len(userIDs) {
			chunkEnd = len(userIDs)
		}
		chunk := userIDs[begin:chunkEnd]

		resp, err := c.search(ctx, searchRequest{LoginIDs: chunk, Page: 0, Limit: len(chunk)})
		if err != nil {
			return nil, err
		}
		for _, user := range resp.Users {
			resolved := UserDetails{UserID: user.UserID, Email: user.Email, Name: user.Name}
			for _, loginID := range user.LoginIDs {
				details[loginID] = resolved
			}
			if user.UserID != "" {
				details[user.UserID] = resolved
			}
		}
	}

	for _, id := range userIDs {
		if _, ok := details[id]; !ok {
			details[id] = UserDetails{UserID: id, Name: UnknownName}
		}
	}
	return details, nil
}

// Ping issues a minimal search to verify credentials and reachability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.search(ctx, searchRequest{Page: 0, Limit: 1})
	return err
}

func (c *Client) eachPage(ctx context.Context, visit func(*searchResponse)) error {
	for page := 0; ; page++ {
		resp, err := c.search(ctx, searchRequest{Page: page, Limit: c.pageSize})
		if err != nil {
			return err
		}
		visit(resp)
		if len(resp.Users) < c.pageSize {
			return nil
		}
	}
}

func (c *Client) search(ctx context.Context, req searchRequest) (*searchResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "directory client not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal directory search")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build directory search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.bearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDirectoryUnavailable, err, "execute directory search")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), "directory search failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDirectoryUnavailable,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), "directory search failed")
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDirectoryUnavailable, err, "decode directory search response")
	}
	return &decoded, nil
}

package stations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	collectionPath = "/stations"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Repository is the station collection as the dashboard sees it.
type Repository interface {
	List(ctx context.Context) ([]Station, error)
	ListWithFallback(ctx context.Context) ([]Station, bool)
	Create(ctx context.Context, s Station) (Station, error)
	Update(ctx context.Context, id string, s Station) (Station, error)
	Delete(ctx context.Context, id string) error
}

var _ Repository = (*Client)(nil)

// Client talks to a remote REST collection of stations.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     zerolog.Logger
	nowTime    func() time.Time
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sends token as a bearer token on every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the request timeout on a copy of the http client, so a
// client passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			copied := *c.httpClient
			copied.Timeout = timeout
			c.httpClient = &copied
		}
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// NewClient creates a client for the collection rooted at baseURL, so that
// stations live at baseURL/stations.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[NewClient] invalid stations API url %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.token != "" {
		c.httpClient = &http.Client{
			Timeout: c.httpClient.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}),
				Base:   c.httpClient.Transport,
			},
		}
	}
	return c, nil
}

func (c *Client) List(ctx context.Context) ([]Station, error) {
	var out []Station
	if err := c.do(ctx, http.MethodGet, collectionPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Station{}
	}
	return out, nil
}

// ListWithFallback never fails: when the collection cannot be listed it
// returns FallbackStations and true.
func (c *Client) ListWithFallback(ctx context.Context) ([]Station, bool) {
	list, err := c.List(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("station list failed, showing fallback stations")
		return FallbackStations(c.nowTime()), true
	}
	return list, false
}

// Create posts s without its id and returns the stored record.
func (c *Client) Create(ctx context.Context, s Station) (Station, error) {
	s.ID = ""
	var out Station
	if err := c.do(ctx, http.MethodPost, collectionPath, s, &out); err != nil {
		return Station{}, err
	}
	return out, nil
}

// Update puts the fields of s to station id and returns the updated record.
func (c *Client) Update(ctx context.Context, id string, s Station) (Station, error) {
	if id == "" {
		return Station{}, apperrors.NewValidationError("id", "Station id is required")
	}
	s.ID = ""
	var out Station
	if err := c.do(ctx, http.MethodPut, collectionPath+"/"+url.PathEscape(id), s, &out); err != nil {
		return Station{}, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("id", "Station id is required")
	}
	return c.do(ctx, http.MethodDelete, collectionPath+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[Client %s] encode body: %w", method, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &apperrors.NetworkError{Op: method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := c.nowTime()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", c.nowTime().Sub(start)).
		Msg("stations api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperrors.NetworkError{
			Op:         method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.NetworkError{Op: method, URL: target, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

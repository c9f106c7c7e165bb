package gaga

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"resty.dev/v3"
)

// Static errors for Gaga client operations.
var (
	// ErrCookieNotSet is returned when no session cookie is provided.
	ErrCookieNotSet = errors.New("gaga: session cookie is not set")
	// ErrGenerationIDRequired is returned when the generation ID is not provided.
	ErrGenerationIDRequired = errors.New("gaga: generation ID is required")
	// ErrNoAssetIDReturned is returned when the upload response contains no asset ID.
	ErrNoAssetIDReturned = errors.New("gaga: upload succeeded but no asset ID returned")
	// ErrNoGenerationID is returned when the start response contains no generation ID.
	ErrNoGenerationID = errors.New("gaga: start succeeded but no generation ID returned")
	// ErrRequestFailed is returned when a request fails with a non-2xx status.
	ErrRequestFailed = errors.New("gaga: request failed")
)

// Client is the HTTP client for the Gaga platform.
type Client struct {
	cookie  string
	baseURL string
	http    *resty.Client
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithCookie sets the session cookie used for authentication.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithBaseURL sets a custom base URL for the Gaga API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// NewClient creates a new Gaga client. The session cookie can be set via
// WithCookie; if not provided, it is read from GAGA_COOKIE.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: "https://gaga.art",
		http:    resty.New().SetTimeout(30 * time.Second),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cookie == "" {
		c.cookie = os.Getenv("GAGA_COOKIE")
	}
	if c.cookie == "" {
		return nil, ErrCookieNotSet
	}

	c.http.SetBaseURL(c.baseURL)
	c.http.SetHeaders(map[string]string{
		"origin":  c.baseURL,
		"referer": c.baseURL + "/app",
		"Cookie":  c.cookie,
	})

	return c, nil
}

// UploadAsset uploads image bytes as a multipart form and returns the
// platform-assigned asset ID.
func (c *Client) UploadAsset(ctx context.Context, fileName string, data []byte) (int64, error) {
	var out assetResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", fileName, bytes.NewReader(data)).
		SetResult(&out).
		Post("/api/v1/assets")
	if err != nil {
		return 0, fmt.Errorf("gaga: upload asset: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode(), resp.String())
	}
	if out.ID == 0 {
		if out.Error != "" {
			return 0, fmt.Errorf("%w: %s", ErrRequestFailed, out.Error)
		}
		return 0, ErrNoAssetIDReturned
	}
	return out.ID, nil
}

// StartGeneration submits a performer generation and returns its ID.
func (c *Client) StartGeneration(ctx context.Context, req GenerationParams) (int64, error) {
	var out generationResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/api/v1/generations/performer")
	if err != nil {
		return 0, fmt.Errorf("gaga: start generation: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode(), resp.String())
	}
	if out.ID == 0 {
		return 0, ErrNoGenerationID
	}
	return out.ID, nil
}

// Poll queries the status of a generation once.
func (c *Client) Poll(ctx context.Context, generationID int64) (PollResult, error) {
	if generationID == 0 {
		return PollResult{}, ErrGenerationIDRequired
	}

	var out generationResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/generations/" + strconv.FormatInt(generationID, 10))
	if err != nil {
		return PollResult{}, fmt.Errorf("gaga: poll request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return PollResult{}, fmt.Errorf("%w with status %d", ErrRequestFailed, resp.StatusCode())
	}

	result := PollResult{
		Status:   out.Status,
		Progress: out.Progress,
	}
	switch out.Status {
	case StatusSuccess:
		result.VideoURL = out.ResultVideoURL
	case StatusFailed, StatusError:
		result.Error = out.Error
	}
	return result, nil
}

// Download fetches the bytes behind a result asset URL.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("gaga: download: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w with status %d", ErrRequestFailed, resp.StatusCode())
	}
	return resp.Bytes(), nil
}

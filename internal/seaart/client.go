package seaart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"resty.dev/v3"
)

// Static errors for SeaArt client operations.
var (
	// ErrCookieNotSet is returned when no session cookie is provided.
	ErrCookieNotSet = errors.New("seaart: session cookie is not set")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("seaart: task ID is required")
	// ErrNoTaskIDReturned is returned when the submit response contains no task ID.
	ErrNoTaskIDReturned = errors.New("seaart: submit succeeded but no task ID returned")
	// ErrContentPolicy is returned when the prompt is rejected by the
	// platform's content classifier.
	ErrContentPolicy = errors.New("seaart: prompt rejected by content policy")
	// ErrSubmitFailed is returned for any other non-success submit response.
	ErrSubmitFailed = errors.New("seaart: submit failed")
	// ErrRequestFailed is returned when a request fails with a non-2xx status.
	ErrRequestFailed = errors.New("seaart: request failed")
	// ErrUploadRejected is returned when a step of the presign upload flow
	// is rejected by the platform.
	ErrUploadRejected = errors.New("seaart: upload rejected")
	// ErrTaskMissing is returned when a progress response carries no entry
	// for the queried task.
	ErrTaskMissing = errors.New("seaart: no progress entry for task")
)

// Client is the HTTP client for the SeaArt platform.
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

// WithBaseURL sets a custom base URL for the SeaArt API.
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

// NewClient creates a new SeaArt client. The session cookie can be set via
// WithCookie; if not provided, it is read from SEAART_COOKIE.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: "https://www.haiyi.art",
		http:    resty.New().SetTimeout(30 * time.Second),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cookie == "" {
		c.cookie = os.Getenv("SEAART_COOKIE")
	}
	if c.cookie == "" {
		return nil, ErrCookieNotSet
	}

	c.http.SetBaseURL(c.baseURL)
	c.http.SetHeaders(map[string]string{
		"accept":       "application/json, text/plain, */*",
		"content-type": "application/json",
		"origin":       c.baseURL,
		"referer":      c.baseURL + "/",
		"x-app-id":     "web_global_seaart",
		"x-platform":   "web",
		"Cookie":       c.cookie,
	})

	return c, nil
}

// SubmitTextToImage submits a text-to-image task and returns the task ID.
func (c *Client) SubmitTextToImage(ctx context.Context, t SubmitTask) (string, error) {
	p := submitPayload{
		ModelNo: t.Model,
		Meta: submitMeta{
			Prompt: t.Prompt,
			Width:  t.Width,
			Height: t.Height,
			NIter:  t.NumOutputs,
		},
	}
	return c.submit(ctx, "/api/v1/task/v2/text-to-img", p)
}

// SubmitTextToVideo submits a text-to-video task and returns the task ID.
func (c *Client) SubmitTextToVideo(ctx context.Context, t SubmitTask) (string, error) {
	p := submitPayload{
		ModelNo: t.Model,
		Meta: submitMeta{
			Prompt: t.Prompt,
			Width:  t.Width,
			Height: t.Height,
			GenerateVideo: &generateVideoMeta{
				DurationSec: t.DurationSec,
				NIter:       1,
			},
		},
	}
	return c.submit(ctx, "/api/v1/task/v2/video/text-to-video", p)
}

// SubmitImageToVideo submits a single-reference video task. The first
// reference URL becomes the first frame.
func (c *Client) SubmitImageToVideo(ctx context.Context, t SubmitTask) (string, error) {
	p := submitPayload{
		ModelNo: t.Model,
		Meta: submitMeta{
			Prompt: t.Prompt,
			Width:  t.Width,
			Height: t.Height,
			GenerateVideo: &generateVideoMeta{
				DurationSec: t.DurationSec,
				ImageOpts:   []imageOpt{{Mode: "first_frame", URL: t.ImageURLs[0]}},
				NIter:       1,
			},
		},
	}
	return c.submit(ctx, "/api/v1/task/v2/video/img-to-video", p)
}

// SubmitMultiImageToVideo submits a multi-reference video task. Reference
// order is preserved; the platform consumes the URLs positionally.
func (c *Client) SubmitMultiImageToVideo(ctx context.Context, t SubmitTask) (string, error) {
	opts := make([]imageOpt, 0, len(t.ImageURLs))
	for _, u := range t.ImageURLs {
		opts = append(opts, imageOpt{URL: u})
	}
	p := submitPayload{
		ModelNo: t.Model,
		Meta: submitMeta{
			Prompt: t.Prompt,
			Width:  t.Width,
			Height: t.Height,
			GenerateVideo: &generateVideoMeta{
				DurationSec: t.DurationSec,
				ImageOpts:   opts,
			},
		},
	}
	return c.submit(ctx, "/api/v1/task/v2/video/multi-img-to-video", p)
}

// submit posts a payload to one of the submission endpoints and classifies
// the response envelope. Content-policy rejections surface as ErrContentPolicy.
func (c *Client) submit(ctx context.Context, path string, p submitPayload) (string, error) {
	var out submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&out).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("seaart: submit request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode(), resp.String())
	}

	switch out.Status.Code {
	case codeOK:
		if out.Data.ID == "" {
			return "", ErrNoTaskIDReturned
		}
		return out.Data.ID, nil
	case codeContentPolicy:
		return "", fmt.Errorf("%w: %s", ErrContentPolicy, out.Status.Msg)
	default:
		return "", fmt.Errorf("%w: code=%d msg=%s", ErrSubmitFailed, out.Status.Code, out.Status.Msg)
	}
}

// Progress queries the batch-progress endpoint for one task.
// Result URLs are returned sorted by the vendor-reported index; entries
// without a usable URL fall back to the cover URL.
func (c *Client) Progress(ctx context.Context, taskID string) (ProgressResult, error) {
	if taskID == "" {
		return ProgressResult{}, ErrTaskIDRequired
	}

	var out progressResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(progressRequest{TaskIDs: []string{taskID}}).
		SetResult(&out).
		Post("/api/v1/task/batch-progress")
	if err != nil {
		return ProgressResult{}, fmt.Errorf("seaart: progress request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return ProgressResult{}, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode(), resp.String())
	}

	if len(out.Data.Items) == 0 {
		return ProgressResult{}, ErrTaskMissing
	}

	item := out.Data.Items[0]
	result := ProgressResult{
		Status:   item.Status,
		Progress: item.Process,
		FailMsg:  item.FailMsg,
	}
	if item.Process == 0 && item.Status != StatusFinished {
		result.Progress = -1
	}

	if item.Status == StatusFinished {
		result.AssetURLs = orderedAssetURLs(item.ImgURIs)
	}

	return result, nil
}

// orderedAssetURLs sorts progress URIs by index and extracts their URLs.
// Index ordering defines the result sequence, so a stable insertion by index
// is used instead of relying on response order.
func orderedAssetURLs(uris []progressURI) []string {
	byIndex := make(map[int]string, len(uris))
	maxIndex := -1
	for _, u := range uris {
		url := u.URL
		if url == "" {
			url = u.CoverURL
		}
		if url == "" {
			continue
		}
		byIndex[u.Index] = url
		if u.Index > maxIndex {
			maxIndex = u.Index
		}
	}

	urls := make([]string, 0, len(byIndex))
	for i := 0; i <= maxIndex; i++ {
		if url, ok := byIndex[i]; ok {
			urls = append(urls, url)
		}
	}
	return urls
}

// UploadImage runs the presign upload flow: request a presigned URL, PUT the
// raw bytes, then confirm the upload. Returns the public asset URL.
func (c *Client) UploadImage(ctx context.Context, fileName string, data []byte) (string, error) {
	sum := sha256.Sum256(data)

	var pre presignResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(presignRequest{
			ContentType: "image/png",
			FileName:    fileName,
			FileSize:    len(data),
			Category:    20,
			HashVal:     hex.EncodeToString(sum[:]),
		}).
		SetResult(&pre).
		Post("/api/v1/resource/uploadImageByPreSign")
	if err != nil {
		return "", fmt.Errorf("seaart: presign request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || pre.Status.Code != codeOK {
		return "", fmt.Errorf("%w: presign code=%d msg=%s", ErrUploadRejected, pre.Status.Code, pre.Status.Msg)
	}
	if pre.Data.PreSign == "" || pre.Data.FileID == "" {
		return "", fmt.Errorf("%w: presign response missing pre_sign or file_id", ErrUploadRejected)
	}

	// The presigned PUT goes to object storage, not the API origin.
	putResp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "image/png").
		SetBody(data).
		Put(pre.Data.PreSign)
	if err != nil {
		return "", fmt.Errorf("seaart: presigned upload: %w", err)
	}
	if putResp.IsError() {
		return "", fmt.Errorf("%w: presigned upload status %d", ErrUploadRejected, putResp.StatusCode())
	}

	var conf confirmResponse
	confResp, err := c.http.R().
		SetContext(ctx).
		SetBody(confirmRequest{Category: 20, FileID: pre.Data.FileID}).
		SetResult(&conf).
		Post("/api/v1/resource/confirmImageUploadedByPreSign")
	if err != nil {
		return "", fmt.Errorf("seaart: confirm upload: %w", err)
	}
	if confResp.StatusCode() != http.StatusOK || conf.Status.Code != codeOK {
		return "", fmt.Errorf("%w: confirm code=%d msg=%s", ErrUploadRejected, conf.Status.Code, conf.Status.Msg)
	}
	if conf.Data.URL == "" {
		return "", fmt.Errorf("%w: confirm response missing url", ErrUploadRejected)
	}

	return conf.Data.URL, nil
}

// Balance returns the remaining temporary credit for the account.
func (c *Client) Balance(ctx context.Context) (int64, error) {
	var out balanceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		SetResult(&out).
		Post("/api/v1/payment/assets/get")
	if err != nil {
		return 0, fmt.Errorf("seaart: balance request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || out.Status.Code != codeOK {
		return 0, fmt.Errorf("%w: balance code=%d", ErrRequestFailed, out.Status.Code)
	}
	return out.Data.TempCoins, nil
}

// Download fetches the bytes behind a result asset URL.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("seaart: download: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w with status %d", ErrRequestFailed, resp.StatusCode())
	}
	return resp.Bytes(), nil
}

// Package backend talks to the media helper service that analyzes links and
// materializes files. Every call returns its payload or a *Failure that says
// whether the backend refused the request or the transport broke.
package backend

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

	"golang.org/x/time/rate"

	"vidgrab/internal/core"
)

type FailureKind int

const (
	// FailureBackend means the backend answered with an error field or a non-2xx status
	FailureBackend FailureKind = iota
	// FailureTransport means no usable answer arrived (network error, malformed body)
	FailureTransport
)

func (k FailureKind) String() string {
	if k == FailureTransport {
		return "transport"
	}
	return "backend"
}

// Failure is the error half of every backend result
type Failure struct {
	Kind     FailureKind
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Kind == FailureTransport {
		return fmt.Sprintf("%s %s: %s", f.Endpoint, f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: backend error (HTTP %d): %s", f.Endpoint, f.Status, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// IsTransport reports whether err is a transport-level backend failure
func IsTransport(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == FailureTransport
}

// Settings configures a Client
type Settings struct {
	BaseURL              string
	UserAgent            string
	RequestTimeout       time.Duration
	MaxRequestsPerSecond float64
}

// Client is the typed client for the backend's JSON contract
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

func NewClient(settings Settings) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(settings.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend URL %q: %w", settings.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend URL %q must be absolute", settings.BaseURL)
	}

	limit := rate.Inf
	burst := 1
	if settings.MaxRequestsPerSecond > 0 {
		limit = rate.Limit(settings.MaxRequestsPerSecond)
		burst = int(settings.MaxRequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: settings.RequestTimeout},
		userAgent:  settings.UserAgent,
		limiter:    rate.NewLimiter(limit, burst),
	}, nil
}

// BaseURL returns the backend origin requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HTTPClient exposes the underlying client so file transfers share its settings
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// FileURL builds the file-serving URL for a server-side path
func (c *Client) FileURL(serverPath string) string {
	return c.endpoint("/file") + "?path=" + url.QueryEscape(serverPath)
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type analyzeResponse struct {
	errorEnvelope
	Title     string                  `json:"title"`
	Thumbnail string                  `json:"thumbnail"`
	Formats   []core.FormatDescriptor `json:"formats"`
}

type instagramAnalyzeResponse struct {
	errorEnvelope
	Caption   string `json:"caption"`
	Thumbnail string `json:"thumbnail"`
}

type fileResponse struct {
	errorEnvelope
	File string `json:"file"`
}

type filesResponse struct {
	errorEnvelope
	Files []string `json:"files"`
}

// Analyze requests multi-format metadata for a URL
func (c *Client) Analyze(ctx context.Context, mediaURL string) (*core.AnalysisResult, error) {
	var resp analyzeResponse
	if err := c.call(ctx, http.MethodPost, "/analyze", core.MediaReference{URL: mediaURL}, &resp, &resp.errorEnvelope); err != nil {
		return nil, err
	}

	title := resp.Title
	if title == "" {
		title = core.DefaultTitle
	}

	return &core.AnalysisResult{
		Kind:      core.AnalysisFormats,
		Title:     title,
		Thumbnail: resp.Thumbnail,
		Formats:   resp.Formats,
	}, nil
}

// AnalyzeInstagram requests the single-asset description of an Instagram post
func (c *Client) AnalyzeInstagram(ctx context.Context, mediaURL string) (*core.AnalysisResult, error) {
	var resp instagramAnalyzeResponse
	if err := c.call(ctx, http.MethodPost, "/instagram/analyze", core.MediaReference{URL: mediaURL}, &resp, &resp.errorEnvelope); err != nil {
		return nil, err
	}

	return &core.AnalysisResult{
		Kind:      core.AnalysisSingleAsset,
		Title:     core.SingleAssetTitle,
		Thumbnail: resp.Thumbnail,
		Caption:   resp.Caption,
	}, nil
}

// DownloadInstagram asks the backend to materialize the post's files
func (c *Client) DownloadInstagram(ctx context.Context, mediaURL string) ([]string, error) {
	var resp filesResponse
	if err := c.call(ctx, http.MethodPost, "/instagram/download", core.MediaReference{URL: mediaURL}, &resp, &resp.errorEnvelope); err != nil {
		return nil, err
	}
	if len(resp.Files) == 0 {
		return nil, &Failure{Kind: FailureBackend, Endpoint: "/instagram/download", Status: http.StatusOK, Message: "no files returned"}
	}
	return resp.Files, nil
}

// DownloadVideo asks the backend to materialize one format of the video
func (c *Client) DownloadVideo(ctx context.Context, mediaURL, formatID string) (string, error) {
	body := struct {
		URL      string `json:"url"`
		FormatID string `json:"format_id"`
	}{mediaURL, formatID}

	var resp fileResponse
	if err := c.call(ctx, http.MethodPost, "/download/video", body, &resp, &resp.errorEnvelope); err != nil {
		return "", err
	}
	return c.requireFile("/download/video", resp.File)
}

// DownloadAudio asks the backend to materialize an MP3 of the media
func (c *Client) DownloadAudio(ctx context.Context, mediaURL string) (string, error) {
	var resp fileResponse
	if err := c.call(ctx, http.MethodPost, "/download/audio", core.MediaReference{URL: mediaURL}, &resp, &resp.errorEnvelope); err != nil {
		return "", err
	}
	return c.requireFile("/download/audio", resp.File)
}

// Progress reads the backend's progress for its single in-flight download
func (c *Client) Progress(ctx context.Context) (core.ProgressSnapshot, error) {
	var resp struct {
		errorEnvelope
		core.ProgressSnapshot
	}
	if err := c.call(ctx, http.MethodGet, "/progress", nil, &resp, &resp.errorEnvelope); err != nil {
		return core.ProgressSnapshot{}, err
	}
	return resp.ProgressSnapshot, nil
}

func (c *Client) requireFile(endpoint, file string) (string, error) {
	if file == "" {
		return "", &Failure{Kind: FailureBackend, Endpoint: endpoint, Status: http.StatusOK, Message: "no file path returned"}
	}
	return file, nil
}

// call performs one JSON round trip. out receives the decoded body and env
// must point at the error envelope embedded in out.
func (c *Client) call(ctx context.Context, method, path string, in interface{}, out interface{}, env *errorEnvelope) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Failure{Kind: FailureTransport, Endpoint: path, Message: "rate limiter wait aborted", Err: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Failure{Kind: FailureTransport, Endpoint: path, Message: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return &Failure{Kind: FailureTransport, Endpoint: path, Message: "failed to create request", Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Failure{Kind: FailureTransport, Endpoint: path, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Failure{Kind: FailureTransport, Endpoint: path, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	decodeErr := json.Unmarshal(data, out)

	// A non-2xx status is a backend failure even when the body is not JSON
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("backend returned %d", resp.StatusCode)
		if decodeErr == nil && env.Error != "" {
			msg = env.Error
		}
		return &Failure{Kind: FailureBackend, Endpoint: path, Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return &Failure{Kind: FailureTransport, Endpoint: path, Status: resp.StatusCode, Message: "malformed response", Err: decodeErr}
	}

	if env.Error != "" {
		return &Failure{Kind: FailureBackend, Endpoint: path, Status: resp.StatusCode, Message: env.Error}
	}

	return nil
}

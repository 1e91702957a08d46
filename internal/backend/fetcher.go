package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cavaliergopher/grab/v3"

	"vidgrab/internal/core"
	"vidgrab/internal/utils"
)

// FileFetcher retrieves materialized files from the backend's file endpoint
// into a local download directory.
type FileFetcher struct {
	client *Client
	grab   *grab.Client
	dir    string
}

func NewFileFetcher(client *Client, dir string) *FileFetcher {
	gc := grab.NewClient()
	gc.HTTPClient = client.HTTPClient()
	if client.userAgent != "" {
		gc.UserAgent = client.userAgent
	}
	return &FileFetcher{client: client, grab: gc, dir: dir}
}

// Dir returns the directory files are saved into
func (f *FileFetcher) Dir() string {
	return f.dir
}

// Fetch saves the server file at serverPath locally and returns the local path
func (f *FileFetcher) Fetch(ctx context.Context, serverPath string) (string, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dst := filepath.Join(f.dir, core.LocalFilename(serverPath))
	req, err := grab.NewRequest(dst, f.client.FileURL(serverPath))
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Endpoint: "/file", Message: "failed to create file request", Err: err}
	}
	req = req.WithContext(ctx)
	// The file endpoint only answers GET and always sends the whole file
	req.NoResume = true

	utils.LogInfo("FETCH", "Retrieving %s -> %s", serverPath, dst)

	resp := f.grab.Do(req)
	if err := resp.Err(); err != nil {
		if resp.HTTPResponse != nil && (resp.HTTPResponse.StatusCode < 200 || resp.HTTPResponse.StatusCode > 299) {
			return "", &Failure{Kind: FailureBackend, Endpoint: "/file", Status: resp.HTTPResponse.StatusCode, Message: "file retrieval refused", Err: err}
		}
		return "", &Failure{Kind: FailureTransport, Endpoint: "/file", Message: "file retrieval failed", Err: err}
	}

	utils.LogInfo("FETCH", "Saved %s (%d bytes)", resp.Filename, resp.BytesComplete())
	return resp.Filename, nil
}

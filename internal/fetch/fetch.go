// Package fetch is the HTTP side of the updater: version markers and
// changelogs as small text bodies, archives streamed to disk.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imroc/req/v3"

	"github.com/otasync/otasync/internal/utils"
	"github.com/otasync/otasync/internal/version"
)

// TransportError reports a failed remote fetch. Status is zero when the
// request never produced a response.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch: %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client wraps the HTTP client used for all remote resources.
type Client struct {
	http *req.Client
}

func New() *Client {
	client := req.C().
		SetUserAgent(version.AppName + "/" + version.Version).
		SetCommonRetryCount(3).
		SetCommonRetryBackoffInterval(1*time.Second, 5*time.Second).
		SetTimeout(2 * time.Minute)

	return &Client{http: client}
}

// FetchText retrieves a small text resource (version marker, changelog)
// and returns the body as a string.
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}
	if resp.IsErrorState() {
		return "", &TransportError{URL: rawURL, Status: resp.GetStatusCode()}
	}

	return resp.String(), nil
}

// FetchFile downloads a resource into destDir and returns the path of
// the downloaded file. The file name comes from the URL path, falling
// back to "download" for bare URLs.
func (c *Client) FetchFile(ctx context.Context, rawURL, destDir string) (string, error) {
	if err := utils.EnsureDir(destDir); err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}

	destPath := filepath.Join(destDir, downloadName(rawURL))

	resp, err := c.http.R().
		DisableAutoReadResponse().
		SetContext(ctx).
		SetOutputFile(destPath).
		Get(rawURL)
	if err != nil {
		os.Remove(destPath)
		return "", &TransportError{URL: rawURL, Err: err}
	}
	if resp.IsErrorState() {
		// the error body was dumped into destPath by SetOutputFile
		os.Remove(destPath)
		return "", &TransportError{URL: rawURL, Status: resp.GetStatusCode()}
	}

	if info, err := os.Stat(destPath); err == nil {
		slog.Debug("downloaded file", "url", rawURL, "size", humanize.Bytes(uint64(info.Size())))
	}

	return destPath, nil
}

func downloadName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "download"
	}
	return filepath.Base(u.Path)
}

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
)

const defaultExt = ".parquet"

// Client downloads monthly dataset files from a URL template containing {month}.
type Client struct {
	template string
	http     *http.Client
}

func New(template string, timeout time.Duration) *Client {
	return &Client{
		template: template,
		http:     &http.Client{Timeout: timeout},
	}
}

// URL returns the remote location of the dataset for month.
func (c *Client) URL(month string) string {
	return strings.ReplaceAll(c.template, types.MonthPlaceholder, month)
}

// Ext returns the file extension of the remote files, ".parquet" when the
// template has none.
func (c *Client) Ext() string {
	p := c.template
	if u, err := url.Parse(c.template); err == nil && u.Path != "" {
		p = u.Path
	}
	if ext := path.Ext(p); ext != "" && !strings.Contains(ext, "}") {
		return strings.ToLower(ext)
	}
	return defaultExt
}

// Download fetches the dataset for month into dest. The body is streamed into a
// temp file next to dest which replaces dest only after a complete read.
// A 404 or 403 yields types.ErrMonthNotPublished, any other failure types.ErrFetchFailed.
func (c *Client) Download(ctx context.Context, month, dest string) (int64, error) {
	const op = "Client.Download"

	ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
	src := c.URL(month)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w: build request: %v", op, types.ErrFetchFailed, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrFetchFailed, err))
	}
	defer resp.Body.Close()

	switch {
	// the TLC bucket answers 403 for months that are not uploaded yet
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w: %s", op, types.ErrMonthNotPublished, month))
	case resp.StatusCode != http.StatusOK:
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w: unexpected response status %d", op, types.ErrFetchFailed, resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: create dir: %w", op, err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: create temp: %w", op, err))
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w: read body: %v", op, types.ErrFetchFailed, err))
	}

	if resp.ContentLength > 0 && n != resp.ContentLength {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w: short body %d of %d bytes", op, types.ErrFetchFailed, n, resp.ContentLength))
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: rename: %w", op, err))
	}

	return n, nil
}

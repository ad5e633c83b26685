package provisioning

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// UserAgent identifies vdpm to the plugin host
const UserAgent = "vdpm/1.0"

// maxPluginSize caps a single plugin download
const maxPluginSize = 16 << 20

// DownloaderConfig configures an HTTPPluginDownloader
type DownloaderConfig struct {
	// BaseURL is the location plugin files are fetched from.
	BaseURL string
	// Extension is appended to the plugin name to form the file name.
	Extension string
	// Timeout bounds each request.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RetryInterval is the first backoff interval. Zero uses the backoff default.
	RetryInterval time.Duration
}

// HTTPPluginDownloader fetches plugin source files over HTTP
type HTTPPluginDownloader struct {
	httpClient *http.Client
	config     DownloaderConfig
	logger     zerolog.Logger
}

// NewHTTPPluginDownloader creates a downloader
func NewHTTPPluginDownloader(config DownloaderConfig, logger zerolog.Logger) *HTTPPluginDownloader {
	config.Extension = strings.TrimPrefix(config.Extension, ".")
	if config.Extension == "" {
		config.Extension = "py"
	}

	return &HTTPPluginDownloader{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		logger: logger.With().Str("component", "downloader").Logger(),
	}
}

// PluginURL returns the download location for name
func (d *HTTPPluginDownloader) PluginURL(name string) string {
	return strings.TrimSuffix(d.config.BaseURL, "/") + "/" + url.PathEscape(name+"."+d.config.Extension)
}

// Download fetches the plugin file for name. Transport errors and 5xx
// responses are retried; any other non-200 status fails immediately.
func (d *HTTPPluginDownloader) Download(ctx context.Context, name string) ([]byte, error) {
	if err := plugindomain.ValidateName(name); err != nil {
		return nil, err
	}

	target := d.PluginURL(name)
	attempt := 0

	var data []byte
	operation := func() error {
		attempt++
		body, err := d.fetch(ctx, target)
		if err != nil {
			return err
		}
		data = body
		return nil
	}

	notify := func(err error, wait time.Duration) {
		d.logger.Warn().
			Err(err).
			Str("plugin", name).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Plugin download failed, retrying")
	}

	if err := backoff.RetryNotify(operation, d.backOff(ctx), notify); err != nil {
		return nil, domain.NewNetworkError("download plugin", target, err)
	}

	d.logger.Debug().
		Str("plugin", name).
		Int("bytes", len(data)).
		Int("attempts", attempt).
		Msg("Plugin downloaded")

	return data, nil
}

func (d *HTTPPluginDownloader) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if d.config.RetryInterval > 0 {
		b.InitialInterval = d.config.RetryInterval
	}

	retries := d.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (d *HTTPPluginDownloader) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create download request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download failed with status %d", resp.StatusCode)
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPluginSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin body: %w", err)
	}
	if len(body) > maxPluginSize {
		return nil, backoff.Permanent(fmt.Errorf("plugin exceeds %d bytes", maxPluginSize))
	}

	return body, nil
}

var _ ports.PluginDownloader = (*HTTPPluginDownloader)(nil)

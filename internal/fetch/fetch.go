// Package fetch downloads URLs for the curl command.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"vsh/internal/config"
	"vsh/internal/vsh"
)

// RestyFetcher implements vsh.Fetcher with a resty client.
type RestyFetcher struct {
	client *resty.Client
	logger vsh.Logger
}

var _ vsh.Fetcher = (*RestyFetcher)(nil)

// NewRestyFetcher creates a fetcher with the timeout, retries, user agent and
// body limit from cfg.
func NewRestyFetcher(cfg config.FetchConfig, logger vsh.Logger) *RestyFetcher {
	if logger == nil {
		logger = vsh.NewNopLogger()
	}
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetResponseBodyLimit(int(cfg.MaxBytes))
	return &RestyFetcher{client: client, logger: logger}
}

// Fetch returns the body of a GET on url. Anything other than 200 OK is an
// ErrConnectionFailed.
func (f *RestyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return "", fmt.Errorf("%s: response body too large: %w", url, vsh.ErrConnectionFailed)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %v: %w", url, err, vsh.ErrConnectionFailed)
	}
	if resp.StatusCode() != http.StatusOK {
		f.logger.Debug("fetch rejected", "url", url, "status", resp.StatusCode())
		return "", fmt.Errorf("%s: %s: %w", url, resp.Status(), vsh.ErrConnectionFailed)
	}
	f.logger.Debug("fetched", "url", url, "bytes", len(resp.Body()), "elapsed", resp.Time())
	return resp.String(), nil
}

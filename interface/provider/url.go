package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/airbusgeo/eurosat-ingester/service"
	"github.com/cavaliercoder/grab"
)

// HTTPArchiveProvider implements ArchiveProvider for direct download links
type HTTPArchiveProvider struct {
	token    string
	interval time.Duration
	client   *grab.Client
}

// Name implements ArchiveProvider
func (ap *HTTPArchiveProvider) Name() string {
	return "HTTP"
}

// NewHTTPArchiveProvider creates a new ArchiveProvider for http(s) links.
// token is optional. progressInterval defaults to one second.
func NewHTTPArchiveProvider(token string, progressInterval time.Duration) *HTTPArchiveProvider {
	if progressInterval <= 0 {
		progressInterval = time.Second
	}
	return &HTTPArchiveProvider{token: token, interval: progressInterval, client: grab.NewClient()}
}

// Download implements ArchiveProvider
func (ap *HTTPArchiveProvider) Download(ctx context.Context, url, dst string, progress ProgressFunc) error {
	req, err := grab.NewRequest(dst, url)
	if err != nil {
		return fmt.Errorf("HTTPArchiveProvider.NewRequest: %w", err)
	}
	req = req.WithContext(ctx)
	// Always download the whole archive again
	req.NoResume = true

	if ap.token != "" {
		req.HTTPRequest.Header.Set("Authorization", "Bearer "+ap.token)
	}

	resp := ap.client.Do(req)
	watchProgress(resp, ap.interval, progress)

	if err := resp.Err(); err != nil {
		err = fmt.Errorf("HTTPArchiveProvider.Download[%s]: %w", url, err)
		if resp.HTTPResponse == nil {
			return service.MakeTemporary(err)
		}
		switch resp.HTTPResponse.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%w: %v", ErrArchiveNotFound{url}, err)
		case 408, 429, 500, 501, 502, 503, 504:
			return service.MakeTemporary(err)
		default:
			return err
		}
	}
	return nil
}

// Package upstream holds the HTTP GET shared by the feed adapters.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/orbis-globe/data-engine/internal/domain"
)

// maxBodyBytes caps response bodies. The boundary file is under 1 MiB and a
// full World Bank indicator page is a few MiB.
const maxBodyBytes = 64 << 20

// Get fetches url and returns the body of a 2xx response.
func Get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w %d: %s", domain.ErrUpstreamStatus, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

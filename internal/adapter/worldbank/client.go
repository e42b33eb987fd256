// Package worldbank fetches the latest value of a World Bank indicator for
// every country.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/orbis-globe/data-engine/internal/adapter/upstream"
	"github.com/orbis-globe/data-engine/internal/domain"
)

// maxPages bounds paging in case meta.pages is nonsense.
const maxPages = 50

// Client queries the World Bank v2 indicator API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. timeout bounds each indicator fetch including
// all of its pages.
func NewClient(baseURL string, timeout time.Duration, pageSize int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		pageSize:   pageSize,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// FetchIndicator returns ISO3 -> most recent non-empty value for code.
// Rows with a null value or no ISO3 code (regional aggregates) are skipped.
func (c *Client) FetchIndicator(ctx context.Context, code string) (domain.IndicatorMap, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := make(domain.IndicatorMap)
	for page := 1; page <= maxPages; page++ {
		p, err := c.fetchPage(ctx, code, page)
		if err != nil {
			return nil, fmt.Errorf("indicator %s page %d: %w", code, page, err)
		}
		for _, row := range p.rows {
			if row.ISO3 == "" || row.Value == nil {
				continue
			}
			result[row.ISO3] = *row.Value
		}
		if page >= p.meta.Pages {
			break
		}
		c.logger.Debug("following indicator page", "indicator", code, "page", page+1, "pages", p.meta.Pages)
	}
	return result, nil
}

func (c *Client) indicatorURL(code string, page int) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("mrnev", "1")
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/country/all/indicator/%s?%s", c.baseURL, url.PathEscape(code), q.Encode())
}

type pageResult struct {
	meta pageMeta
	rows []row
}

func (c *Client) fetchPage(ctx context.Context, code string, page int) (pageResult, error) {
	body, err := upstream.Get(ctx, c.httpClient, c.indicatorURL(code, page))
	if err != nil {
		return pageResult{}, err
	}
	return decodePage(body)
}

// decodePage parses the two-element [meta, rows] envelope. The API reports
// request errors as a one-element array holding a message list.
func decodePage(body []byte) (pageResult, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return pageResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if len(parts) < 2 {
		if len(parts) == 1 {
			var env errorEnvelope
			if err := json.Unmarshal(parts[0], &env); err == nil && len(env.Message) > 0 {
				m := env.Message[0]
				return pageResult{}, fmt.Errorf("%w: api error %s: %s", domain.ErrMalformedResponse, m.ID, m.Value)
			}
		}
		return pageResult{}, fmt.Errorf("%w: expected [meta, rows], got %d elements", domain.ErrMalformedResponse, len(parts))
	}

	var res pageResult
	if err := json.Unmarshal(parts[0], &res.meta); err != nil {
		return pageResult{}, fmt.Errorf("%w: meta: %v", domain.ErrMalformedResponse, err)
	}
	// rows is null when the indicator has no data at all.
	if err := json.Unmarshal(parts[1], &res.rows); err != nil {
		return pageResult{}, fmt.Errorf("%w: rows: %v", domain.ErrMalformedResponse, err)
	}
	return res, nil
}

type pageMeta struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type row struct {
	ISO3  string   `json:"countryiso3code"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type errorEnvelope struct {
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

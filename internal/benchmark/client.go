// Package benchmark reshapes public multilingual benchmarks into aligned
// parallel CSV tables ready for code-switch generation runs.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/logging"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/ratelimit"
)

const (
	// DefaultBaseURL is the Hugging Face datasets-server endpoint
	DefaultBaseURL = "https://datasets-server.huggingface.co"
	// rowsPerPage is the maximum page size the /rows endpoint accepts
	rowsPerPage = 100

	rateLimitSource = "huggingface"
)

// Client fetches dataset rows from the Hugging Face datasets-server API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.ProviderRateLimiter
	logger     zerolog.Logger
}

// NewClient creates a datasets-server client paced by the given limiter
func NewClient(limiter *ratelimit.ProviderRateLimiter) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: limiter,
		logger:  logging.GetLogger("benchmark-client"),
	}
}

// SetBaseURL overrides the API endpoint, used in tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Row is one dataset row as returned by the API, keyed by column name
type Row map[string]interface{}

// String extracts a field as text. Numeric fields are formatted the way
// pandas writes them to CSV.
func (r Row) String(field string) (string, error) {
	value, ok := r[field]
	if !ok {
		return "", fmt.Errorf("row has no field %q", field)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("field %q is not scalar", field)
	}
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int `json:"row_idx"`
		Row    Row `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// FetchRows downloads every row of a dataset config split, paging through
// the /rows endpoint.
func (c *Client) FetchRows(ctx context.Context, dataset, config, split string) ([]Row, error) {
	var rows []Row
	offset := 0
	for {
		page, total, err := c.fetchPage(ctx, dataset, config, split, offset)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)
		offset += len(page)
		if offset >= total || len(page) == 0 {
			break
		}
	}

	c.logger.Info().
		Str("dataset", dataset).
		Str("config", config).
		Int("rows", len(rows)).
		Msg("Fetched dataset rows")
	return rows, nil
}

func (c *Client) fetchPage(ctx context.Context, dataset, config, split string, offset int) ([]Row, int, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitForSource(ctx, rateLimitSource); err != nil {
			return nil, 0, err
		}
	}

	params := url.Values{}
	params.Set("dataset", dataset)
	params.Set("config", config)
	params.Set("split", split)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("length", strconv.Itoa(rowsPerPage))

	endpoint := fmt.Sprintf("%s/rows?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "CSW-Forge/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.limiter != nil {
			c.limiter.RecordError(rateLimitSource, err)
		}
		return nil, 0, fmt.Errorf("datasets-server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("datasets-server returned %d for %s/%s: %s", resp.StatusCode, dataset, config, string(body))
		if c.limiter != nil {
			c.limiter.RecordError(rateLimitSource, err)
		}
		return nil, 0, err
	}
	if c.limiter != nil {
		c.limiter.RecordSuccess(rateLimitSource)
	}

	var parsed rowsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to parse rows response: %w", err)
	}

	rows := make([]Row, 0, len(parsed.Rows))
	for _, r := range parsed.Rows {
		rows = append(rows, r.Row)
	}
	return rows, parsed.NumRowsTotal, nil
}

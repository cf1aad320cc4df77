package socrata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	endpointQuery    = "query"
	endpointResource = "resource"
	endpointMetadata = "metadata"

	defaultTimeout = 30 * time.Second
	maxErrBody     = 200
)

// QuerySpec is one logical tabular query, rendered per dialect at request
// time. An empty Where selects everything; Limit <= 0 means no explicit cap.
type QuerySpec struct {
	Select string
	Where  string
	Limit  int
}

// SQL renders the spec for the versioned query API.
func (q QuerySpec) SQL() string {
	sel := q.Select
	if sel == "" {
		sel = "*"
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(sel)
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String()
}

// SoQLValues renders the spec as legacy resource-API parameters.
func (q QuerySpec) SoQLValues() url.Values {
	values := url.Values{}
	if q.Select != "" {
		values.Set("$select", q.Select)
	}
	if q.Where != "" {
		values.Set("$where", q.Where)
	}
	if q.Limit > 0 {
		values.Set("$limit", strconv.Itoa(q.Limit))
	}
	return values
}

type Config struct {
	BaseURL   string
	DatasetID string
	AppToken  string
	// HTTPClient is injectable for tests; nil gets a default with a timeout.
	HTTPClient *http.Client
}

type Client interface {
	Query(ctx context.Context, spec QuerySpec) (*RowSet, error)
	Metadata(ctx context.Context) ([]Column, error)
}

type client struct {
	baseURL string
	dataset string
	token   string
	http    *http.Client
}

func NewClient(cfg Config) Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		dataset: cfg.DatasetID,
		token:   cfg.AppToken,
		http:    httpClient,
	}
}

// Query attempts the versioned query API first. When that endpoint rejects
// the request for lack of credentials and no app token is configured, the
// same logical query is retried once against the legacy resource endpoint.
// Any other failure surfaces immediately.
func (c *client) Query(ctx context.Context, spec QuerySpec) (*RowSet, error) {
	rows, primaryErr := c.queryPrimary(ctx, spec)
	if primaryErr == nil {
		return rows, nil
	}

	var primary *QueryError
	if !errors.As(primaryErr, &primary) {
		return nil, primaryErr
	}
	if c.token != "" || !primary.AuthFailure() {
		return nil, primaryErr
	}

	zerolog.Ctx(ctx).Warn().
		Int("status", primary.Status).
		Msg("query API rejected unauthenticated request, retrying via legacy resource endpoint")

	rows, fallbackErr := c.queryFallback(ctx, spec)
	if fallbackErr == nil {
		return rows, nil
	}

	var fallback *QueryError
	if !errors.As(fallbackErr, &fallback) {
		return nil, fmt.Errorf("fallback query failed: %w", fallbackErr)
	}
	return nil, &ExhaustedError{Primary: primary, Fallback: fallback}
}

func (c *client) queryPrimary(ctx context.Context, spec QuerySpec) (*RowSet, error) {
	u := fmt.Sprintf("%s/api/v3/views/%s/query.json?query=%s",
		c.baseURL, c.dataset, url.QueryEscape(spec.SQL()))
	return c.fetchRows(ctx, endpointQuery, u)
}

func (c *client) queryFallback(ctx context.Context, spec QuerySpec) (*RowSet, error) {
	u := fmt.Sprintf("%s/resource/%s.json?%s",
		c.baseURL, c.dataset, spec.SoQLValues().Encode())
	return c.fetchRows(ctx, endpointResource, u)
}

func (c *client) fetchRows(ctx context.Context, endpoint, u string) (*RowSet, error) {
	body, err := c.get(ctx, endpoint, u)
	if err != nil {
		return nil, err
	}

	var rows RowSet
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return &rows, nil
}

// Metadata fetches the dataset's column descriptors.
func (c *client) Metadata(ctx context.Context) ([]Column, error) {
	u := fmt.Sprintf("%s/api/views/%s.json", c.baseURL, c.dataset)
	body, err := c.get(ctx, endpointMetadata, u)
	if err != nil {
		return nil, err
	}

	var view struct {
		Columns []Column `json:"columns"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to decode dataset metadata: %w", err)
	}
	return view.Columns, nil
}

func (c *client) get(ctx context.Context, endpoint, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-App-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &QueryError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  snippet(body),
		}
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrBody {
		s = s[:maxErrBody] + "..."
	}
	return s
}

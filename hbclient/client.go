package hbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/honeybadger-mcp", "hbclient")

const (
	// DefaultBaseURL is the Honeybadger Data API endpoint.
	DefaultBaseURL = "https://app.honeybadger.io/v2"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	// MaxLimit is the largest page size the API accepts.
	MaxLimit = 25
)

// ErrNotFound is returned when the requested fault does not exist.
var ErrNotFound = errors.New("fault not found")

// StatusError is returned when the API responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API returned unexpected status code: %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API returned unexpected status code: %d", e.StatusCode)
}

// Order is the sort order of the faults listing.
type Order string

const (
	// OrderRecent sorts by the most recently occurred first.
	OrderRecent Order = "recent"
	// OrderFrequent sorts by the most notifications first.
	OrderFrequent Order = "frequent"
)

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Honeybadger Data API,
// scoped to a single project.
type Client struct {
	apiKey    string
	projectID string
	baseURL   string

	httpClient Doer
}

// Option is an option for the Honeybadger client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mostly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New returns a new Honeybadger client.
// Both the API key and the project ID are required.
func New(apiKey, projectID string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	if projectID == "" {
		return nil, errors.New("project ID is required")
	}

	c := &Client{
		apiKey:     apiKey,
		projectID:  projectID,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListFaultsParams are the filters of the faults listing endpoint.
type ListFaultsParams struct {
	Query          string
	Order          Order
	Limit          int
	CreatedAfter   int64
	OccurredAfter  int64
	OccurredBefore int64
}

// NoticesParams are the filters of the notices listing endpoint.
// Notices are always ordered by creation time descending.
type NoticesParams struct {
	Limit         int
	CreatedAfter  int64
	CreatedBefore int64
}

// ClampLimit clamps a page size into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListFaults returns the faults of the configured project matching the filters.
// An empty result is a valid success.
func (c *Client) ListFaults(ctx context.Context, p ListFaultsParams) ([]Fault, error) {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Order != "" {
		q.Set("order", string(p.Order))
	}
	if p.CreatedAfter > 0 {
		q.Set("created_after", strconv.FormatInt(p.CreatedAfter, 10))
	}
	if p.OccurredAfter > 0 {
		q.Set("occurred_after", strconv.FormatInt(p.OccurredAfter, 10))
	}
	if p.OccurredBefore > 0 {
		q.Set("occurred_before", strconv.FormatInt(p.OccurredBefore, 10))
	}
	q.Set("limit", strconv.Itoa(ClampLimit(p.Limit)))

	var page FaultsPage
	if err := c.get(ctx, "/faults", q, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// GetFault returns a single fault by ID.
// Returns ErrNotFound if the fault does not resolve.
func (c *Client) GetFault(ctx context.Context, faultID string) (*Fault, error) {
	var fault Fault
	if err := c.get(ctx, "/faults/"+url.PathEscape(faultID), nil, &fault); err != nil {
		return nil, err
	}
	return &fault, nil
}

// ListNotices returns a bounded page of notices for the given fault,
// ordered by creation time descending.
func (c *Client) ListNotices(ctx context.Context, faultID string, p NoticesParams) ([]Notice, error) {
	q := url.Values{}
	if p.CreatedAfter > 0 {
		q.Set("created_after", strconv.FormatInt(p.CreatedAfter, 10))
	}
	if p.CreatedBefore > 0 {
		q.Set("created_before", strconv.FormatInt(p.CreatedBefore, 10))
	}
	q.Set("limit", strconv.Itoa(ClampLimit(p.Limit)))

	var page NoticesPage
	if err := c.get(ctx, "/faults/"+url.PathEscape(faultID)+"/notices", q, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// GetFaultDetails fetches the fault record and a bounded page of its notices,
// merged into one response.
func (c *Client) GetFaultDetails(ctx context.Context, faultID string, p NoticesParams) (*FaultDetails, error) {
	fault, err := c.GetFault(ctx, faultID)
	if err != nil {
		return nil, err
	}
	notices, err := c.ListNotices(ctx, faultID, p)
	if err != nil {
		return nil, err
	}
	return &FaultDetails{
		Fault:   fault,
		Notices: notices,
	}, nil
}

// errorMessage is the error envelope of the Honeybadger API.
type errorMessage struct {
	Errors string `json:"errors"`
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	u := c.baseURL + "/projects/" + url.PathEscape(c.projectID) + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	logger.KV(xlog.DEBUG, "url", u, "project", c.projectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	// the API key is the basic auth login, the password is unused
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	r, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		if r.StatusCode == http.StatusNotFound {
			return errors.WithStack(ErrNotFound)
		}
		serr := &StatusError{StatusCode: r.StatusCode}
		var errResp errorMessage
		bs, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		if err := json.Unmarshal(bs, &errResp); err == nil && errResp.Errors != "" {
			serr.Body = errResp.Errors
		}
		logger.KV(xlog.ERROR, "status", r.StatusCode, "err", serr.Body)
		return errors.WithStack(serr)
	}

	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

package hbclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/honeybadger-mcp/hbclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := hbclient.New("", "12345")
	assert.EqualError(t, err, "API key is required")

	_, err = hbclient.New("hbp_key", "")
	assert.EqualError(t, err, "project ID is required")

	c, err := hbclient.New("hbp_key", "12345")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, hbclient.ClampLimit(0))
	assert.Equal(t, 1, hbclient.ClampLimit(-3))
	assert.Equal(t, 1, hbclient.ClampLimit(1))
	assert.Equal(t, 10, hbclient.ClampLimit(10))
	assert.Equal(t, 25, hbclient.ClampLimit(25))
	assert.Equal(t, 25, hbclient.ClampLimit(26))
	assert.Equal(t, 25, hbclient.ClampLimit(100))
}

func TestListFaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/projects/12345/faults", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "hbp_key", user)
		assert.Empty(t, pass)

		q := r.URL.Query()
		assert.Equal(t, "RuntimeError", q.Get("q"))
		assert.Equal(t, "recent", q.Get("order"))
		assert.Equal(t, "10", q.Get("limit"))

		page := hbclient.FaultsPage{
			Results: []hbclient.Fault{
				{ID: 1, Klass: "RuntimeError", Message: "boom", NoticesCount: 12},
				{ID: 2, Klass: "RuntimeError", Message: "bang", NoticesCount: 5},
				{ID: 3, Klass: "RuntimeError", Message: "pow", NoticesCount: 1},
			},
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	faults, err := c.ListFaults(context.Background(), hbclient.ListFaultsParams{
		Query: "RuntimeError",
		Order: hbclient.OrderRecent,
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, faults, 3)
	// ordering is preserved as returned by the API
	assert.Equal(t, int64(1), faults[0].ID)
	assert.Equal(t, int64(2), faults[1].ID)
	assert.Equal(t, int64(3), faults[2].ID)
}

func TestListFaultsClampsLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(hbclient.FaultsPage{})
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	ctx := context.Background()

	_, err = c.ListFaults(ctx, hbclient.ListFaultsParams{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, "25", gotLimit)

	_, err = c.ListFaults(ctx, hbclient.ListFaultsParams{Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, "1", gotLimit)
}

func TestListFaultsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(hbclient.FaultsPage{Results: []hbclient.Fault{}})
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	// no results is a valid success, not an error
	faults, err := c.ListFaults(context.Background(), hbclient.ListFaultsParams{Query: "nope"})
	require.NoError(t, err)
	assert.Empty(t, faults)
}

func TestListFaultsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":"project is inaccessible"}`))
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.ListFaults(context.Background(), hbclient.ListFaultsParams{})
	require.Error(t, err)

	var serr *hbclient.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusForbidden, serr.StatusCode)
	assert.Equal(t, "project is inaccessible", serr.Body)
	assert.EqualError(t, err, "API returned unexpected status code: 403: project is inaccessible")
}

func TestGetFaultDetails(t *testing.T) {
	notices := make([]hbclient.Notice, 5)
	for i := range notices {
		notices[i] = hbclient.Notice{ID: "n" + string(rune('1'+i)), FaultID: 123, Message: "boom"}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/12345/faults/abc123":
			_ = json.NewEncoder(w).Encode(hbclient.Fault{ID: 123, Klass: "RuntimeError"})
		case "/projects/12345/faults/abc123/notices":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode(hbclient.NoticesPage{Results: notices})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	details, err := c.GetFaultDetails(context.Background(), "abc123", hbclient.NoticesParams{Limit: 5})
	require.NoError(t, err)
	require.NotNil(t, details.Fault)
	assert.Equal(t, int64(123), details.Fault.ID)
	assert.Len(t, details.Notices, 5)
}

func TestGetFaultNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.GetFaultDetails(context.Background(), "missing", hbclient.NoticesParams{Limit: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, hbclient.ErrNotFound))
}

func TestGetFaultDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	c, err := hbclient.New("hbp_key", "12345",
		hbclient.WithBaseURL(server.URL),
		hbclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.GetFault(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.False(t, errors.Is(err, hbclient.ErrNotFound))
}

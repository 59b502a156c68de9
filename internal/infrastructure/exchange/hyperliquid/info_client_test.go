package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetaAndCtxs = `[
  {"universe": [
    {"name": "BTC", "szDecimals": 5, "maxLeverage": 50},
    {"name": "ETH", "szDecimals": 4, "maxLeverage": 50},
    {"name": "DOGE", "szDecimals": 0, "maxLeverage": 20}
  ]},
  [
    {"funding": "0.0000125", "openInterest": "100.5", "prevDayPx": "60000.0", "markPx": "61000.0"},
    {"funding": -0.00002, "openInterest": 2000, "prevDayPx": "3000", "markPx": 2900},
    {"funding": null, "openInterest": "", "prevDayPx": "0.1", "markPx": null}
  ]
]`

func newTestClient(url string) *InfoClient {
	return NewInfoClient(url, WithRetries(2, time.Millisecond), WithRateLimit(1000))
}

func TestMetaAndAssetContexts_PositionalMapping(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/info", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(sampleMetaAndCtxs))
	}))
	defer srv.Close()

	metas, ctxs, err := newTestClient(srv.URL).MetaAndAssetContexts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "metaAndAssetCtxs", gotBody["type"])

	require.Len(t, metas, 3)
	require.Len(t, ctxs, 3)

	assert.Equal(t, "BTC", metas[0].Name)
	assert.Equal(t, "60000.0", metas[0].PrevDayPrice)
	assert.Equal(t, "BTC", ctxs[0].Name)
	assert.Equal(t, "0.0000125", ctxs[0].FundingRate)
	assert.Equal(t, "6130500", ctxs[0].OpenInterest)
	assert.Equal(t, "61000.0", ctxs[0].MarkPrice)

	// bare numbers are kept as their literal text
	assert.Equal(t, "ETH", ctxs[1].Name)
	assert.Equal(t, "-0.00002", ctxs[1].FundingRate)
	assert.Equal(t, "5800000", ctxs[1].OpenInterest)
	assert.Equal(t, "2900", ctxs[1].MarkPrice)

	// unparseable inputs leave open interest empty
	assert.Equal(t, "DOGE", ctxs[2].Name)
	assert.Equal(t, "", ctxs[2].FundingRate)
	assert.Equal(t, "", ctxs[2].OpenInterest)
	assert.Equal(t, "", ctxs[2].MarkPrice)
}

func TestMetaAndAssetContexts_ShorterContextList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"universe":[{"name":"BTC"},{"name":"ETH"}]},[{"funding":"0.1","markPx":"1"}]]`))
	}))
	defer srv.Close()

	metas, ctxs, err := newTestClient(srv.URL).MetaAndAssetContexts(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 2)
	require.Len(t, ctxs, 1)
	assert.Equal(t, "BTC", ctxs[0].Name)
}

func TestMetaAndAssetContexts_BadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"universe":[]}]`))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).MetaAndAssetContexts(context.Background())
	require.Error(t, err)
}

func TestMetaAndAssetContexts_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleMetaAndCtxs))
	}))
	defer srv.Close()

	metas, _, err := newTestClient(srv.URL).MetaAndAssetContexts(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestMetaAndAssetContexts_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).MetaAndAssetContexts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.False(t, apiErr.IsRetryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestMetaAndAssetContexts_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).MetaAndAssetContexts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestMetaAndAssetContexts_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMetaAndCtxs))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newTestClient(srv.URL).MetaAndAssetContexts(ctx)
	require.Error(t, err)
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"1.5"`, "1.5"},
		{`1.5`, "1.5"},
		{` -2e-3 `, "-2e-3"},
		{`null`, ""},
		{`""`, ""},
	}
	for _, tt := range tests {
		var s flexString
		require.NoError(t, s.UnmarshalJSON([]byte(tt.in)), tt.in)
		assert.Equal(t, tt.want, string(s), tt.in)
	}
}

func TestNotional(t *testing.T) {
	assert.Equal(t, "250", notional("100", "2.5"))
	assert.Equal(t, "", notional("", "2.5"))
	assert.Equal(t, "", notional("100", "abc"))
}

func TestAPIError(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 500}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: 429}).IsRetryable())
	assert.False(t, (&APIError{StatusCode: 404}).IsRetryable())
	assert.Contains(t, (&APIError{StatusCode: 404, Body: []byte("nope")}).Error(), "404 nope")
}

func TestWithTimeout_DoesNotModifySharedClient(t *testing.T) {
	shared := &http.Client{Timeout: 30 * time.Second}

	c := NewInfoClient("", WithHTTPClient(shared), WithTimeout(2*time.Second))
	assert.Equal(t, 30*time.Second, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)

	// option order does not matter
	c = NewInfoClient("", WithTimeout(3*time.Second), WithHTTPClient(shared))
	assert.Equal(t, 30*time.Second, shared.Timeout)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestWithTimeout_NilHTTPClient(t *testing.T) {
	var c *InfoClient
	require.NotPanics(t, func() {
		c = NewInfoClient("", WithHTTPClient(nil), WithTimeout(time.Second))
	})
	require.NotNil(t, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestWithRetries_ZeroMeansSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	for _, n := range []int{0, -3} {
		calls.Store(0)
		c := NewInfoClient(srv.URL, WithRetries(n, time.Millisecond), WithRateLimit(1000))
		_, _, err := c.MetaAndAssetContexts(context.Background())
		require.Error(t, err)

		var apiErr *APIError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, int32(1), calls.Load())
	}
}

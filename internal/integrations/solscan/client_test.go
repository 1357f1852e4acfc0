package solscan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rai-agent/internal/domain"
)

const testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		"solscan-test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func serveJSON(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

func TestNewClient_EmptyKey(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("k")
	require.NoError(t, err)
	require.Equal(t, "https://pro-api.solscan.io/v2.0", c.baseURL)
	require.NotNil(t, c.httpClient)
}

func TestEndpoint(t *testing.T) {
	require.Equal(t, "https://pro-api.solscan.io/v2.0/token/meta?address=x", endpoint("", "/token/meta", map[string][]string{"address": {"x"}}))
	require.Equal(t, "http://localhost/token/meta?address=x", endpoint("http://localhost/", "/token/meta", map[string][]string{"address": {"x"}}))
}

// ---------------------------------------------------------------------------
// FetchMetadata
// ---------------------------------------------------------------------------

func TestFetchMetadata_HappyPath(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{
		"success": true,
		"data": {
			"address": "`+testMint+`",
			"name": "Rai Coin",
			"symbol": "RAI",
			"icon": "https://example.com/rai.png",
			"decimals": 6,
			"supply": "2300000",
			"holder": 1523,
			"creator": "CreatorWa11et1111111111111111111111111111111",
			"created_time": 1700000000,
			"market_cap": 7100000000,
			"metadata": {
				"description": "meme",
				"website": "https://rai.example",
				"twitter": "https://x.com/rai"
			}
		}
	}`, func(r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/token/meta", r.URL.Path)
		require.Equal(t, testMint, r.URL.Query().Get("address"))
		require.Equal(t, "solscan-test-key", r.Header.Get("token"))
	})

	info, err := newTestClient(t, srv).FetchMetadata(context.Background(), testMint)
	require.NoError(t, err)
	require.Equal(t, domain.TokenInfo{
		Name:                 "Rai Coin",
		Symbol:               "RAI",
		IconURL:              "https://example.com/rai.png",
		TotalSupply:          2_300_000,
		TotalSupplyFormatted: "2.30M",
		HolderCount:          1523,
		Creator:              "CreatorWa11et1111111111111111111111111111111",
		CreatedTime:          1700000000,
		CreatedTimeFormatted: "2023-11-14 22:13:20 UTC",
		MarketCap:            7_100_000_000,
		MarketCapFormatted:   "7.10B",
		Description:          "meme",
		Website:              "https://rai.example",
		Twitter:              "https://x.com/rai",
	}, info)
}

func TestFetchMetadata_MissingFieldsDefault(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"success":true,"data":{"supply":"not-a-number","holder":null,"created_time":"soon"}}`, nil)

	info, err := newTestClient(t, srv).FetchMetadata(context.Background(), testMint)
	require.NoError(t, err)
	require.Equal(t, "Unknown", info.Name)
	require.Equal(t, "Unknown", info.Symbol)
	require.Equal(t, "Unknown", info.Creator)
	require.Equal(t, "Unknown", info.CreatedTimeFormatted)
	require.Zero(t, info.TotalSupply)
	require.Equal(t, "0", info.TotalSupplyFormatted)
	require.Zero(t, info.HolderCount)
	require.Zero(t, info.CreatedTime)
	require.Empty(t, info.IconURL)
	require.Empty(t, info.Description)
	require.Empty(t, info.Website)
	require.Empty(t, info.Twitter)
}

func TestFetchMetadata_EmptyData(t *testing.T) {
	for _, body := range []string{
		`{"success":true,"data":{}}`,
		`{"success":true,"data":null}`,
		`{"success":true}`,
		`{"success":false,"errors":{"message":"token not found"},"data":{"name":"ghost"}}`,
	} {
		srv := serveJSON(t, http.StatusOK, body, nil)
		_, err := newTestClient(t, srv).FetchMetadata(context.Background(), testMint)
		require.ErrorIs(t, err, ErrNoMetadata, "body=%s", body)
		require.ErrorIs(t, err, domain.ErrEmptyResult)
	}
}

func TestFetchMetadata_Non200(t *testing.T) {
	srv := serveJSON(t, http.StatusInternalServerError, `{"success":false,"errors":{"message":"boom"}}`, nil)

	_, err := newTestClient(t, srv).FetchMetadata(context.Background(), testMint)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.HTTPStatusCode())
	require.Contains(t, err.Error(), "500")
	require.Contains(t, statusErr.Body, "boom")
}

func TestFetchMetadata_InvalidJSON(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `not-json`, nil)

	_, err := newTestClient(t, srv).FetchMetadata(context.Background(), testMint)
	require.ErrorIs(t, err, domain.ErrEmptyResult)
	require.Contains(t, err.Error(), "decode metadata response")
}

func TestFetchMetadata_NetworkError(t *testing.T) {
	c, err := NewClient("k", WithBaseURL("http://127.0.0.1:1"), WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	require.NoError(t, err)

	_, err = c.FetchMetadata(context.Background(), testMint)
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
	require.False(t, errors.Is(err, domain.ErrEmptyResult))
	var statusErr *HTTPStatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestFetchMetadata_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.FetchMetadata(context.Background(), testMint)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// FetchEarlyTransfers
// ---------------------------------------------------------------------------

func TestFetchEarlyTransfers_HappyPath(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{
		"success": true,
		"data": [
			{"trans_id":"tx1","block_time":1700000000,"from_address":"a","to_address":"b","amount":100,"value":1.5},
			{"trans_id":"tx2","block_time":1700000060,"from_address":"b","to_address":"c","amount":"50","value":0.75},
			{"trans_id":"tx3","time":"2023-11-14T22:15:20Z","from_address":"c","to_address":"d","amount":50}
		]
	}`, func(r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/token/transfer", r.URL.Path)
		require.Equal(t, testMint, q.Get("address"))
		require.Equal(t, "ACTIVITY_SPL_TRANSFER", q.Get("activity_type[]"))
		require.Equal(t, "1", q.Get("page"))
		require.Equal(t, "20", q.Get("page_size"))
		require.Equal(t, "block_time", q.Get("sort_by"))
		require.Equal(t, "asc", q.Get("sort_order"))
		require.Equal(t, "solscan-test-key", r.Header.Get("token"))
	})

	transfers, err := newTestClient(t, srv).FetchEarlyTransfers(context.Background(), testMint, 20)
	require.NoError(t, err)
	require.Equal(t, []domain.TransferRecord{
		{TxID: "tx1", Timestamp: 1700000000, FromAddress: "a", ToAddress: "b", Amount: 100, Value: 1.5},
		{TxID: "tx2", Timestamp: 1700000060, FromAddress: "b", ToAddress: "c", Amount: 50, Value: 0.75},
		{TxID: "tx3", Timestamp: 1700000120, FromAddress: "c", ToAddress: "d", Amount: 50},
	}, transfers)
}

func TestFetchEarlyTransfers_BareArray(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `[{"trans_id":"tx1","block_time":1,"amount":5}]`, nil)

	transfers, err := newTestClient(t, srv).FetchEarlyTransfers(context.Background(), testMint, 10)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Equal(t, 5.0, transfers[0].Amount)
}

func TestFetchEarlyTransfers_TruncatesToCount(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"data":[{"trans_id":"1"},{"trans_id":"2"},{"trans_id":"3"}]}`, nil)

	transfers, err := newTestClient(t, srv).FetchEarlyTransfers(context.Background(), testMint, 2)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
}

func TestFetchEarlyTransfers_Empty(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"success":true,"data":[]}`, nil)

	_, err := newTestClient(t, srv).FetchEarlyTransfers(context.Background(), testMint, 20)
	require.ErrorIs(t, err, ErrNoTransfers)
	require.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestFetchEarlyTransfers_Non200(t *testing.T) {
	srv := serveJSON(t, http.StatusTooManyRequests, `{"error":"slow down"}`, nil)

	_, err := newTestClient(t, srv).FetchEarlyTransfers(context.Background(), testMint, 20)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestFetchEarlyTransfers_InvalidCount(t *testing.T) {
	c, err := NewClient("k")
	require.NoError(t, err)
	_, err = c.FetchEarlyTransfers(context.Background(), testMint, 0)
	require.Error(t, err)
}

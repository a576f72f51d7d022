package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/pkg/config"
	"github.com/wonny/rrg/pkg/httputil"
	"github.com/wonny/rrg/pkg/logger"
)

// 2024-01-15 09:15 IST == 03:45 UTC; gmtoffset 19800 (+05:30)
const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "RELIANCE.NS", "gmtoffset": 19800},
      "timestamp": [1705290300, 1705376700, 1705463100],
      "indicators": {
        "quote": [{"close": [2500.5, null, 2550.25]}],
        "adjclose": [{"adjclose": [2490.0, null, 2540.0]}]
      }
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "development", Fetch: config.FetchConfig{Timeout: 5 * time.Second}}
	httpClient := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(httpClient, logger.Nop(), server.URL)
}

func TestParseChart(t *testing.T) {
	bars, err := parseChart([]byte(chartFixture))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 2500.5, bars[0].Close)
	assert.Equal(t, 2490.0, bars[0].AdjClose)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), bars[1].Date)
}

func TestParseChart_LateSessionKeepsLocalDate(t *testing.T) {
	// 2024-01-15 23:30 UTC is already 2024-01-16 in +05:30
	payload := `{"chart":{"result":[{"meta":{"gmtoffset":19800},"timestamp":[1705361400],
	  "indicators":{"quote":[{"close":[10.0]}]}}]}}`

	bars, err := parseChart([]byte(payload))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Zero(t, bars[0].AdjClose)
}

func TestParseChart_APIError(t *testing.T) {
	payload := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

	_, err := parseChart([]byte(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestParseChart_Empty(t *testing.T) {
	bars, err := parseChart([]byte(`{"chart":{"result":[],"error":null}}`))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestParseChart_Malformed(t *testing.T) {
	_, err := parseChart([]byte(`<html>`))
	assert.Error(t, err)
}

func TestFetchDaily(t *testing.T) {
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, fmt.Sprintf("%d", from.Unix()), r.URL.Query().Get("period1"))
		assert.Equal(t, fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix()), r.URL.Query().Get("period2"))
		_, _ = w.Write([]byte(chartFixture))
	})

	bars, err := client.FetchDaily(context.Background(), "RELIANCE.NS", from, to)
	require.NoError(t, err)

	// the 17th falls after the requested range
	require.Len(t, bars, 1)
	assert.Equal(t, 2500.5, bars[0].Close)
}

func TestFetchDaily_IntradayBoundsUseTradingDays(t *testing.T) {
	// 장중 시각이 들어와도 거래일 단위로 요청
	from := time.Date(2024, 1, 15, 13, 20, 0, 0, time.UTC)
	to := time.Date(2024, 1, 17, 8, 5, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("%d", contracts.TradingDay(from).Unix()), r.URL.Query().Get("period1"))
		assert.Equal(t, fmt.Sprintf("%d", contracts.TradingDay(to).AddDate(0, 0, 1).Unix()), r.URL.Query().Get("period2"))
		_, _ = w.Write([]byte(chartFixture))
	})

	bars, err := client.FetchDaily(context.Background(), "RELIANCE.NS", from, to)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), bars[1].Date)
}

func TestFetchDaily_EscapesIndexSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/^NSEI", r.URL.Path)
		_, _ = w.Write([]byte(`{"chart":{"result":[]}}`))
	})

	bars, err := client.FetchDaily(context.Background(), "^NSEI", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchDaily_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchDaily(context.Background(), "NOPE.NS", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)

	var statusErr *httputil.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

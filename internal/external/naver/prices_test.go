package naver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rrg/pkg/config"
	"github.com/wonny/rrg/pkg/httputil"
	"github.com/wonny/rrg/pkg/logger"
)

const siseJSONFixture = `
[['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
["20240115", 73200, 73900, 72600, 73000, 12345678, 53.1],
["20240116", 73000, 73400, 72200, 72600, 10000000, 53.0]
]
`

func dailyPage(rows [][2]string, hasMore bool) string {
	html := `<html><body><table class="type2"><tr><th>날짜</th><th>종가</th></tr>`
	for _, r := range rows {
		html += fmt.Sprintf(`<tr><td><span>%s</span></td><td>%s</td><td>100</td><td>1</td><td>2</td><td>3</td><td>1,000</td></tr>`, r[0], r[1])
	}
	html += `</table>`
	if hasMore {
		html += `<table class="Nnavi"><tr><td class="pgRR"><a href="#">맨뒤</a></td></tr></table>`
	}
	return html + `</body></html>`
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "development", Fetch: config.FetchConfig{Timeout: 5 * time.Second}}
	httpClient := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(httpClient, logger.Nop(), server.URL, server.URL)
}

func TestParsePriceResponse_JSON(t *testing.T) {
	prices := parsePriceResponse(siseJSONFixture)

	require.Len(t, prices, 2)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), prices[0].TradeDate)
	assert.Equal(t, 73000.0, prices[0].ClosePrice)
	assert.Equal(t, int64(12345678), prices[0].Volume)
}

func TestParsePriceJSON(t *testing.T) {
	tests := []struct {
		name    string
		rawData [][]interface{}
		want    int
	}{
		{
			name: "string numbers",
			rawData: [][]interface{}{
				{"날짜", "시가", "고가", "저가", "종가", "거래량"},
				{"20240115", "72300", "73000", "72000", "72500.5", "1000000"},
			},
			want: 1,
		},
		{
			name:    "empty data",
			rawData: [][]interface{}{},
			want:    0,
		},
		{
			name: "insufficient columns",
			rawData: [][]interface{}{
				{"날짜", "시가"},
				{"20240115", 72300.0, 73000.0},
			},
			want: 0,
		},
		{
			name: "zero close is dropped",
			rawData: [][]interface{}{
				{"날짜", "시가", "고가", "저가", "종가", "거래량"},
				{"20240115", 1.0, 1.0, 1.0, 0.0, 10.0},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, parsePriceJSON(tt.rawData), tt.want)
		})
	}
}

func TestParsePriceRegex(t *testing.T) {
	body := `[["20240115", 72300, 73000, 72000, 72500, 1000000], ["20240116", 72500, 73500, 72300, 73000.5, 1200000],]`

	prices := parsePriceRegex(body)
	require.Len(t, prices, 2)
	assert.Equal(t, 73000.5, prices[1].ClosePrice)

	assert.Empty(t, parsePriceRegex(`{"invalid": "json"}`))
	assert.Empty(t, parsePriceRegex(""))
}

func TestParseDailyHTML(t *testing.T) {
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	html := dailyPage([][2]string{
		{"2024.01.17", "74,000"},
		{"2024.01.16", "73,500"},
		{"2024.01.15", "72,800"},
		{"2024.01.09", "71,000"},
	}, true)

	rows, oldest, hasMore := parseDailyHTML(html, "005930", from, to)

	require.Len(t, rows, 2)
	assert.Equal(t, 73500.0, rows[0].ClosePrice)
	assert.Equal(t, "005930", rows[0].StockCode)
	assert.Equal(t, int64(1000), rows[0].Volume)
	assert.Equal(t, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), oldest)
	assert.True(t, hasMore)
}

func TestStockCode(t *testing.T) {
	assert.Equal(t, "005930", StockCode("005930.KS"))
	assert.Equal(t, "035720", StockCode(" 035720.KQ "))
	assert.Equal(t, "KOSPI", StockCode("KOSPI"))
}

func TestFetchPrices_ChartAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/siseJson.naver", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "005930", r.URL.Query().Get("symbol"))
		assert.Equal(t, "20240101", r.URL.Query().Get("startTime"))
		assert.Equal(t, "day", r.URL.Query().Get("timeframe"))
		_, _ = w.Write([]byte(siseJSONFixture))
	})
	client := newTestClient(t, mux)

	prices, err := client.FetchPrices(context.Background(), "005930.KS",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "005930", prices[0].StockCode)
}

func TestFetchPrices_FallsBackToDailyPages(t *testing.T) {
	pages := map[string]string{
		"1": dailyPage([][2]string{{"2024.01.16", "73,500"}, {"2024.01.15", "72,800"}}, true),
		"2": dailyPage([][2]string{{"2024.01.12", "72,000"}, {"2024.01.11", "71,500"}}, true),
		"3": dailyPage([][2]string{{"2024.01.10", "71,000"}, {"2024.01.09", "70,000"}}, true),
	}
	requested := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/siseJson.naver", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/item/sise_day.naver", func(w http.ResponseWriter, r *http.Request) {
		requested++
		_, _ = w.Write([]byte(pages[r.URL.Query().Get("page")]))
	})
	client := newTestClient(t, mux)

	prices, err := client.FetchPrices(context.Background(), "005930",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// page 3 reaches before from, so pagination stops there
	assert.Equal(t, 3, requested)
	require.Len(t, prices, 5)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), prices[0].TradeDate)
	assert.Equal(t, 73500.0, prices[4].ClosePrice)
}

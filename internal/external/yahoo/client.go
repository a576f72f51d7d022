package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/pkg/httputil"
	"github.com/wonny/rrg/pkg/logger"
)

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client; an empty baseURL uses DefaultBaseURL
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Bar is one daily close on the exchange's calendar date
type Bar struct {
	Date     time.Time // 거래소 현지 날짜 (UTC 자정으로 표기)
	Close    float64
	AdjClose float64 // 0 when the response carries no adjusted series
}

// chartResponse mirrors /v8/finance/chart; nulls mark non-trading slots
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily fetches daily closes for [from, to], both inclusive
func (c *Client) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", contracts.TradingDay(from).Unix()))
	// period2 is exclusive on Yahoo's side
	params.Set("period2", fmt.Sprintf("%d", contracts.TradingDay(to).AddDate(0, 0, 1).Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div,splits")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	bars, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	// 요청 범위 밖 날짜 제거
	lo, hi := contracts.TradingDay(from), contracts.TradingDay(to)
	filtered := bars[:0]
	for _, b := range bars {
		if b.Date.Before(lo) || b.Date.After(hi) {
			continue
		}
		filtered = append(filtered, b)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(filtered),
	}).Debug("Fetched yahoo closes")

	return filtered, nil
}

// parseChart decodes a chart payload into ascending bars, skipping null closes
func parseChart(body []byte) ([]Bar, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	offset := time.Duration(result.Meta.GMTOffset) * time.Second
	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bar := Bar{
			Date:  contracts.TradingDay(time.Unix(ts, 0).UTC().Add(offset)),
			Close: *closes[i],
		}
		if i < len(adj) && adj[i] != nil {
			bar.AdjClose = *adj[i]
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

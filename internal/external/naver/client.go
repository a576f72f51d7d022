package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/rrg/pkg/httputil"
	"github.com/wonny/rrg/pkg/logger"
)

// Default Naver Finance hosts
const (
	DefaultBaseURL  = "https://finance.naver.com"
	DefaultChartURL = "https://fchart.stock.naver.com"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	chartURL   string
}

// NewClient creates a new Naver Finance client; empty URLs use the public hosts
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, chartURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if chartURL == "" {
		chartURL = DefaultChartURL
	}
	return &Client{
		httpClient: httpClient.WithHeader("Referer", DefaultBaseURL+"/"),
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		chartURL:   strings.TrimRight(chartURL, "/"),
	}
}

// fetchHTML fetches a page from Naver Finance
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (string, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}

	return string(body), nil
}

// PriceData represents one daily close
type PriceData struct {
	StockCode  string
	TradeDate  time.Time
	ClosePrice float64
	Volume     int64
}

// StockCode strips exchange suffixes (005930.KS → 005930)
func StockCode(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}

package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxDailyPages bounds the sise_day pagination (10 rows per page)
const maxDailyPages = 60

var (
	chartRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*(\d+)`)
	dayCellRe  = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)
)

// FetchPrices fetches daily closes for [from, to] from the chart API,
// falling back to the sise_day HTML pages when the chart API yields nothing
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, symbol string, from, to time.Time) ([]PriceData, error) {
	code := StockCode(symbol)

	prices, chartErr := c.fetchChart(ctx, code, from, to)
	if chartErr == nil && len(prices) > 0 {
		c.logger.WithFields(map[string]interface{}{
			"stock_code": code,
			"count":      len(prices),
		}).Debug("Fetched prices")
		return prices, nil
	}

	// 차트 API 실패 또는 빈 응답 → 일별 시세 페이지로 재시도
	c.logger.WithFields(map[string]interface{}{
		"stock_code": code,
		"chart_err":  fmt.Sprint(chartErr),
	}).Debug("Chart API empty, falling back to daily pages")

	prices, err := c.fetchDailyPages(ctx, code, from, to)
	if err != nil {
		if chartErr != nil {
			return nil, fmt.Errorf("chart: %v; daily pages: %w", chartErr, err)
		}
		return nil, err
	}
	return prices, nil
}

func (c *Client) fetchChart(ctx context.Context, code string, from, to time.Time) ([]PriceData, error) {
	params := url.Values{}
	params.Set("symbol", code)
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.httpClient.GetBytes(ctx, fmt.Sprintf("%s/siseJson.naver?%s", c.chartURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	prices := parsePriceResponse(string(body))
	for i := range prices {
		prices[i].StockCode = code
	}
	return prices, nil
}

// parsePriceResponse parses the single-quoted JSON-ish array of siseJson
func parsePriceResponse(body string) []PriceData {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	// Try JSON parsing first
	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData)
	}

	// Fallback to regex parsing
	return parsePriceRegex(body)
}

// parsePriceJSON parses [date, open, high, low, close, volume, ...] rows after the header
func parsePriceJSON(rawData [][]interface{}) []PriceData {
	var prices []PriceData
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // Skip header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		tradeDate, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}

		closePrice := toFloat64(row[4])
		if closePrice <= 0 {
			continue
		}

		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			ClosePrice: closePrice,
			Volume:     int64(toFloat64(row[5])),
		})
	}
	return prices
}

// parsePriceRegex extracts rows when the payload is not valid JSON
func parsePriceRegex(body string) []PriceData {
	var prices []PriceData
	for _, match := range chartRowRe.FindAllStringSubmatch(body, -1) {
		tradeDate, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}

		closePrice, _ := strconv.ParseFloat(match[5], 64)
		volume, _ := strconv.ParseInt(match[6], 10, 64)
		if closePrice <= 0 {
			continue
		}

		prices = append(prices, PriceData{
			TradeDate:  tradeDate,
			ClosePrice: closePrice,
			Volume:     volume,
		})
	}
	return prices
}

// fetchDailyPages walks sise_day pages (newest first) until it passes from
func (c *Client) fetchDailyPages(ctx context.Context, code string, from, to time.Time) ([]PriceData, error) {
	var all []PriceData

	for page := 1; page <= maxDailyPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("code", code)
		params.Set("page", strconv.Itoa(page))

		html, err := c.fetchHTML(ctx, "/item/sise_day.naver", params)
		if err != nil {
			return nil, err
		}

		rows, oldest, hasMore := parseDailyHTML(html, code, from, to)
		all = append(all, rows...)

		// 기준일보다 이전 데이터면 종료
		if oldest.IsZero() || oldest.Before(from) || !hasMore {
			break
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].TradeDate.Before(all[j].TradeDate) })
	return all, nil
}

// parseDailyHTML parses one sise_day page
// 컬럼: 날짜 | 종가 | 전일비 | 시가 | 고가 | 저가 | 거래량
func parseDailyHTML(html, code string, from, to time.Time) ([]PriceData, time.Time, bool) {
	var rows []PriceData
	var oldest time.Time

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rows, oldest, false
	}

	doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !dayCellRe.MatchString(dateText) {
			return
		}
		tradeDate, err := time.Parse("2006.01.02", dateText)
		if err != nil {
			return
		}
		if oldest.IsZero() || tradeDate.Before(oldest) {
			oldest = tradeDate
		}

		// 기간 필터
		if tradeDate.Before(from) || tradeDate.After(to) {
			return
		}

		closePrice := parseNumber(cells.Eq(1).Text())
		if closePrice <= 0 {
			return
		}

		rows = append(rows, PriceData{
			StockCode:  code,
			TradeDate:  tradeDate,
			ClosePrice: closePrice,
			Volume:     int64(parseNumber(cells.Eq(6).Text())),
		})
	})

	// 다음 페이지 존재 여부 확인
	hasMore := doc.Find(".pgRR").Length() > 0
	return rows, oldest, hasMore
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseFloat(s, 64)
	return n
}

// toFloat64 converts JSON scalars to float64
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n
	default:
		return 0
	}
}

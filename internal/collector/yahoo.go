package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PortfolioArena/internal/model"
)

var defaultYahooHosts = []string{
	"https://query1.finance.yahoo.com",
	"https://query2.finance.yahoo.com",
}

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client    *http.Client
	Hosts     []string          // tried in order until one answers
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker

	pace func(context.Context) error // called before every request
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Hosts: defaultYahooHosts,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"BRK.B":  "BRK-B",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) setPacer(pace func(context.Context) error) { f.pace = pace }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays hold null for missing bars, hence the pointers.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GmtOffset int64  `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
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

// FetchHistorical requests daily bars for [start, endExclusive). period2 is
// exclusive on Yahoo's side as well, so callers pass tomorrow to include today.
func (f *YahooFetcher) FetchHistorical(ctx context.Context, ticker string, start, endExclusive model.Date) ([]model.DailyPrice, error) {
	ticker = normalizeTicker(ticker)
	query := url.Values{}
	query.Set("period1", fmt.Sprint(start.Time().Unix()))
	query.Set("period2", fmt.Sprint(endExclusive.Time().Unix()))
	query.Set("interval", "1d")
	query.Set("events", "div,splits")

	var lastErr error
	for _, host := range f.Hosts {
		u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", strings.TrimRight(host, "/"),
			url.PathEscape(f.yahooSymbol(ticker)), query.Encode())
		if f.pace != nil {
			if err := f.pace(ctx); err != nil {
				return nil, err
			}
		}
		body, err := f.get(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Printf("[WARN] yahoo %s: %v", ticker, err)
			continue
		}
		bars, err := parseYahooChart(ticker, body)
		if err != nil {
			return nil, err
		}
		return inWindow(bars, start, endExclusive), nil
	}
	return nil, lastErr
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 120 {
			preview = preview[:120]
		}
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, preview)
	}
	return body, nil
}

func parseYahooChart(ticker string, body []byte) ([]model.DailyPrice, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.DailyPrice, 0, len(result.Timestamp))
	seen := make(map[model.Date]bool, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // null bar (holiday, halted)
		}
		// shift into exchange-local time so the bar lands on its trading date
		day := model.DateOf(time.Unix(ts+result.Meta.GmtOffset, 0))
		if seen[day] {
			continue
		}
		seen[day] = true

		bar := model.DailyPrice{
			Ticker:   ticker,
			Date:     day,
			Open:     at(quote.Open, i),
			High:     at(quote.High, i),
			Low:      at(quote.Low, i),
			Close:    *c,
			AdjClose: at(adj, i),
		}
		if bar.AdjClose == nil {
			bar.AdjClose = model.Float(*c)
		}
		if v := at(quote.Volume, i); v != nil {
			bar.Volume = model.Int(int64(*v))
		}
		bars = append(bars, bar)
	}

	sortBars(bars)
	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

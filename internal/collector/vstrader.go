package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"PortfolioArena/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	AdjClose  *float64 `json:"adj_close"`
	Volume    *float64 `json:"volume"`
}

func (f *VsTraderFetcher) FetchHistorical(ctx context.Context, ticker string, start, endExclusive model.Date) ([]model.DailyPrice, error) {
	ticker = normalizeTicker(ticker)
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", start.String())
	q.Set("to", endExclusive.String())
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var vsBars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&vsBars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]model.DailyPrice, 0, len(vsBars))
	for _, vb := range vsBars {
		if vb.Close == nil {
			continue
		}
		bar := model.DailyPrice{
			Ticker:   ticker,
			Date:     model.DateOf(time.Unix(vb.Timestamp, 0)),
			Open:     vb.Open,
			High:     vb.High,
			Low:      vb.Low,
			Close:    *vb.Close,
			AdjClose: vb.AdjClose,
		}
		if vb.Volume != nil {
			bar.Volume = model.Int(int64(*vb.Volume))
		}
		bars = append(bars, bar)
	}
	// Ensure chronological order
	sortBars(bars)
	return inWindow(bars, start, endExclusive), nil
}

package marketmaker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// binancePriceFetcher implements PriceFetcher using the Binance public API
type binancePriceFetcher struct {
	client  *http.Client
	cfg     *Config
	logger  zerolog.Logger
	baseURL string
}

// binanceTickerResponse represents the response from Binance's ticker price endpoint
type binanceTickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// NewPriceFetcher creates a new PriceFetcher that uses the Binance API
func NewPriceFetcher(cfg *Config, logger zerolog.Logger) PriceFetcher {
	client := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:       10,
			IdleConnTimeout:    30 * time.Second,
			DisableCompression: true,
		},
	}

	return &binancePriceFetcher{
		client:  client,
		cfg:     cfg,
		logger:  logger.With().Str("component", "binancePriceFetcher").Logger(),
		baseURL: cfg.PriceSourceURL,
	}
}

// FetchPrice fetches the current price, retrying up to MaxRetries times
// with a linear backoff.
func (f *binancePriceFetcher) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", f.baseURL, f.cfg.ExternalSymbol)

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return decimal.Zero, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * 100 * time.Millisecond):
			}
		}

		price, err := f.fetchOnce(ctx, url)
		if err == nil {
			f.logger.Debug().
				Str("symbol", f.cfg.ExternalSymbol).
				Str("price", price.String()).
				Int("attempt", attempt).
				Msg("Successfully fetched price")
			return price, nil
		}

		lastErr = err
		f.logger.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_retries", f.cfg.MaxRetries).
			Msg("Price fetch failed")
	}

	return decimal.Zero, fmt.Errorf("failed to fetch price after %d attempts: %w", f.cfg.MaxRetries, lastErr)
}

func (f *binancePriceFetcher) fetchOnce(ctx context.Context, url string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("HTTP request returned status %d", resp.StatusCode)
	}

	var ticker binanceTickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price %q: %w", ticker.Price, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price source returned non-positive price %s", price)
	}
	return price, nil
}

// Close implements PriceFetcher
func (f *binancePriceFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

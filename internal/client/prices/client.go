// Package prices looks up USD token prices for display and activity logging.
// Prices are never used for on-chain amount calculation.
package prices

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	httpClient "github.com/cardrail/cardrail-api/internal/client/http"
	"github.com/cardrail/cardrail-api/internal/logger"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://coins.llama.fi"
	cacheTTL       = 60 * time.Second
)

// Client fetches batch token prices with a small in-process cache.
type Client struct {
	http *httpClient.HTTPClient

	mu    sync.Mutex
	cache map[string]cachedPrice
}

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

// NewClient creates a price client against the default endpoint.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a price client against a specific endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		http: httpClient.NewHTTPClient(
			httpClient.WithBaseURL(baseURL),
			httpClient.WithTimeout(10*time.Second),
		),
		cache: make(map[string]cachedPrice),
	}
}

var chainSlugs = map[int64]string{
	1:     "ethereum",
	10:    "optimism",
	137:   "polygon",
	8453:  "base",
	42161: "arbitrum",
	59144: "linea",
}

type priceResponse struct {
	Coins map[string]struct {
		Price float64 `json:"price"`
	} `json:"coins"`
}

// GetBatchPrices returns USD prices keyed by lowercase token address. Tokens
// the upstream does not know are simply absent from the result.
func (c *Client) GetBatchPrices(ctx context.Context, tokenAddresses []string, chainID int64) (map[string]float64, error) {
	slug, ok := chainSlugs[chainID]
	if !ok {
		return nil, fmt.Errorf("no price source configured for chain %d", chainID)
	}

	result := make(map[string]float64, len(tokenAddresses))
	var missing []string

	c.mu.Lock()
	now := time.Now()
	for _, addr := range tokenAddresses {
		key := strings.ToLower(addr)
		if cached, ok := c.cache[slug+":"+key]; ok && now.Sub(cached.fetchedAt) < cacheTTL {
			result[key] = cached.price
		} else {
			missing = append(missing, key)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return result, nil
	}

	coins := make([]string, 0, len(missing))
	for _, addr := range missing {
		coins = append(coins, slug+":"+addr)
	}

	var resp priceResponse
	path := "/prices/current/" + strings.Join(coins, ",")
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch token prices: %w", err)
	}

	c.mu.Lock()
	for coin, data := range resp.Coins {
		parts := strings.SplitN(coin, ":", 2)
		if len(parts) != 2 {
			continue
		}
		addr := strings.ToLower(parts[1])
		result[addr] = data.Price
		c.cache[coin] = cachedPrice{price: data.Price, fetchedAt: time.Now()}
	}
	c.mu.Unlock()

	logger.Debug("Fetched token prices",
		zap.Int64("chain_id", chainID),
		zap.Int("requested", len(tokenAddresses)),
		zap.Int("fetched", len(resp.Coins)),
	)

	return result, nil
}

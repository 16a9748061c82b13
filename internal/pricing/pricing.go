// Package pricing fetches market prices for cards from a remote price API
// and aggregates them into deck cost estimates.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// Price holds the market price points for one card printing.
type Price struct {
	CardID    string    `json:"card_id"`
	Market    float64   `json:"market"`
	Low       float64   `json:"low"`
	High      float64   `json:"high"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Config configures the price client.
type Config struct {
	// BaseURL is the price API endpoint.
	BaseURL string

	// RequestsPerMinute caps outgoing request rate.
	RequestsPerMinute int

	// CacheTTL is how long fetched prices stay fresh.
	CacheTTL time.Duration

	// RequestTimeout is the per-request timeout.
	RequestTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.pokemontcg.io/v2",
		RequestsPerMinute: 20,
		CacheTTL:          6 * time.Hour,
		RequestTimeout:    15 * time.Second,
	}
}

// Client fetches card prices with rate limiting and caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cacheTTL   time.Duration

	mu     sync.RWMutex
	cached map[string]cachedPrice
}

type cachedPrice struct {
	price     Price
	fetchedAt time.Time
}

// NewClient creates a price client from cfg.
func NewClient(cfg Config) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultConfig().RequestsPerMinute
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultConfig().CacheTTL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultConfig().BaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().RequestTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		cacheTTL:   ttl,
		cached:     make(map[string]cachedPrice),
	}
}

// priceResponse mirrors the API's card price payload.
type priceResponse struct {
	Data struct {
		ID     string `json:"id"`
		Prices struct {
			Market   float64 `json:"market"`
			Low      float64 `json:"low"`
			High     float64 `json:"high"`
			Currency string  `json:"currency"`
		} `json:"prices"`
	} `json:"data"`
}

// CardPrice returns the price for a card, hitting the remote API only when
// the cached entry is missing or stale.
func (c *Client) CardPrice(ctx context.Context, cardID string) (Price, error) {
	if cardID == "" {
		return Price{}, fmt.Errorf("card id required")
	}

	c.mu.RLock()
	entry, ok := c.cached[cardID]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		return entry.price, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Price{}, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(cardID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Price{}, fmt.Errorf("building price request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Price{}, fmt.Errorf("fetching price for %s: %w", cardID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Price{}, fmt.Errorf("price API returned %d for %s", resp.StatusCode, cardID)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Price{}, fmt.Errorf("reading price response: %w", err)
	}

	var pr priceResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return Price{}, fmt.Errorf("decoding price response: %w", err)
	}

	price := Price{
		CardID:    cardID,
		Market:    pr.Data.Prices.Market,
		Low:       pr.Data.Prices.Low,
		High:      pr.Data.Prices.High,
		Currency:  pr.Data.Prices.Currency,
		UpdatedAt: time.Now().UTC(),
	}
	if price.Currency == "" {
		price.Currency = "USD"
	}

	c.mu.Lock()
	c.cached[cardID] = cachedPrice{price: price, fetchedAt: time.Now()}
	c.mu.Unlock()
	return price, nil
}

// LinePrice is the cost of one deck entry.
type LinePrice struct {
	CardName string  `json:"card_name"`
	CardID   string  `json:"card_id"`
	Quantity int     `json:"quantity"`
	Unit     float64 `json:"unit"`
	Total    float64 `json:"total"`
}

// DeckPrice is the aggregated cost of a whole deck.
type DeckPrice struct {
	Total    float64     `json:"total"`
	Currency string      `json:"currency"`
	Lines    []LinePrice `json:"lines"`
	// Missing lists card names with no available price.
	Missing []string `json:"missing,omitempty"`
}

// PriceDeck prices every entry in the deck. Cards without prices are reported
// in Missing rather than failing the whole estimate. Lines come back sorted
// by total cost descending so the expensive cards lead.
func (c *Client) PriceDeck(ctx context.Context, deck *cards.Deck) (*DeckPrice, error) {
	if deck == nil {
		return nil, fmt.Errorf("deck required")
	}

	out := &DeckPrice{Currency: "USD"}
	for _, entry := range deck.Entries {
		if entry.Card == nil || entry.Card.ID == "" {
			continue
		}
		price, err := c.CardPrice(ctx, entry.Card.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			out.Missing = append(out.Missing, entry.Card.Name)
			continue
		}
		line := LinePrice{
			CardName: entry.Card.Name,
			CardID:   entry.Card.ID,
			Quantity: entry.Quantity,
			Unit:     price.Market,
			Total:    price.Market * float64(entry.Quantity),
		}
		out.Lines = append(out.Lines, line)
		out.Total += line.Total
		if price.Currency != "" {
			out.Currency = price.Currency
		}
	}

	sort.Slice(out.Lines, func(i, j int) bool {
		if out.Lines[i].Total != out.Lines[j].Total {
			return out.Lines[i].Total > out.Lines[j].Total
		}
		return out.Lines[i].CardName < out.Lines[j].CardName
	})
	sort.Strings(out.Missing)
	return out, nil
}

// Invalidate drops a card from the cache, forcing a refetch.
func (c *Client) Invalidate(cardID string) {
	c.mu.Lock()
	delete(c.cached, cardID)
	c.mu.Unlock()
}

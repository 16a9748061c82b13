package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

func priceServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/cards/sv3-125":
			fmt.Fprint(w, `{"data": {"id": "sv3-125", "prices": {"market": 42.5, "low": 30, "high": 60, "currency": "USD"}}}`)
		case "/cards/sv1-196":
			fmt.Fprint(w, `{"data": {"id": "sv1-196", "prices": {"market": 0.25, "low": 0.1, "high": 1}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:           srv.URL,
		RequestsPerMinute: 6000,
		CacheTTL:          time.Hour,
	})
}

func TestCardPrice(t *testing.T) {
	var hits atomic.Int64
	client := testClient(priceServer(t, &hits))

	price, err := client.CardPrice(context.Background(), "sv3-125")
	if err != nil {
		t.Fatalf("CardPrice() error = %v", err)
	}
	if price.Market != 42.5 {
		t.Errorf("market = %v, want 42.5", price.Market)
	}
	if price.Currency != "USD" {
		t.Errorf("currency = %q, want USD", price.Currency)
	}
}

func TestCardPrice_Caching(t *testing.T) {
	var hits atomic.Int64
	client := testClient(priceServer(t, &hits))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.CardPrice(ctx, "sv3-125"); err != nil {
			t.Fatal(err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (cache)", got)
	}

	client.Invalidate("sv3-125")
	if _, err := client.CardPrice(ctx, "sv3-125"); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times after invalidate, want 2", got)
	}
}

func TestCardPrice_DefaultsCurrency(t *testing.T) {
	var hits atomic.Int64
	client := testClient(priceServer(t, &hits))

	price, err := client.CardPrice(context.Background(), "sv1-196")
	if err != nil {
		t.Fatalf("CardPrice() error = %v", err)
	}
	if price.Currency != "USD" {
		t.Errorf("missing currency should default to USD, got %q", price.Currency)
	}
}

func TestPriceDeck(t *testing.T) {
	var hits atomic.Int64
	client := testClient(priceServer(t, &hits))

	deck := &cards.Deck{
		Name: "test",
		Entries: []cards.DeckEntry{
			{Card: &cards.CardFace{ID: "sv1-196", Name: "Ultra Ball"}, Quantity: 4},
			{Card: &cards.CardFace{ID: "sv3-125", Name: "Charizard ex"}, Quantity: 3},
			{Card: &cards.CardFace{ID: "unknown-1", Name: "Mystery Card"}, Quantity: 1},
		},
	}

	dp, err := client.PriceDeck(context.Background(), deck)
	if err != nil {
		t.Fatalf("PriceDeck() error = %v", err)
	}

	want := 42.5*3 + 0.25*4
	if dp.Total != want {
		t.Errorf("total = %v, want %v", dp.Total, want)
	}
	if len(dp.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(dp.Lines))
	}
	// Most expensive first.
	if dp.Lines[0].CardName != "Charizard ex" {
		t.Errorf("lines not sorted by cost: %+v", dp.Lines)
	}
	if len(dp.Missing) != 1 || dp.Missing[0] != "Mystery Card" {
		t.Errorf("missing = %v, want [Mystery Card]", dp.Missing)
	}
}

func TestPriceDeck_NilDeck(t *testing.T) {
	var hits atomic.Int64
	client := testClient(priceServer(t, &hits))
	if _, err := client.PriceDeck(context.Background(), nil); err == nil {
		t.Error("nil deck should be an error")
	}
}

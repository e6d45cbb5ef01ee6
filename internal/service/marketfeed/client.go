package marketfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"CoinSage/internal/domain/models"
	drepo "CoinSage/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream over the marketplace price feed
// WebSocket. Subscribe must be called after Connect; Reconnect
// replays the last subscription.
type Client struct {
	apiKey         string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	items     []models.Item
	conn      *websocket.Conn
	connected bool
}

// New creates a new marketplace feed MarketStream.
func New(apiKey, websocketURL string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("marketfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("marketfeed: connected")
	return nil
}

// Subscribe subscribes to price updates for the given items.
func (c *Client) Subscribe(ctx context.Context, items []models.Item) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("marketfeed not connected")
	}
	c.items = items
	for _, it := range items {
		msg := map[string]string{"type": "subscribe", "item_id": it.ID, "market": it.Market}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s/%s: %w", it.Market, it.ID, err)
		}
		log.Printf("marketfeed: subscribed %s/%s", it.Market, it.ID)
	}
	return nil
}

type feedPrice struct {
	ItemID string `json:"item_id"`
	Market string `json:"market"`
	Price  int64  `json:"price"`
	T      int64  `json:"t"` // ms
}

type feedMessage struct {
	Type string      `json:"type"`
	Data []feedPrice `json:"data"`
}

// Read streams price samples and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceSample, <-chan error) {
	samples := make(chan *models.PriceSample, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(samples)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("marketfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("marketfeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-price frames
					continue
				}
				if m.Type != "price" {
					continue
				}
				for _, d := range m.Data {
					sample := &models.PriceSample{
						ItemID:   d.ItemID,
						Market:   d.Market,
						Price:    int(d.Price),
						Observed: time.Unix(d.T/1000, 0).UTC(),
					}
					select {
					case samples <- sample:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return samples, errs
}

// Reconnect closes and reconnects, replaying the subscription.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx, c.items)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }

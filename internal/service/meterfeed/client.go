package meterfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	drepo "github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a ReadingStream backed by a grid-operator WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	indicators     []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new meter feed ReadingStream.
func New(apiKey, websocketURL string, indicators []string, reconnectDelay, pingInterval time.Duration) drepo.ReadingStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		indicators:     indicators,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("meterfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("meterfeed: connected")
	return nil
}

// Subscribe subscribes to the configured indicators.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("meterfeed not connected")
	}
	for _, ind := range c.indicators {
		msg := map[string]string{"type": "subscribe", "indicator": ind}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ind, err)
		}
		log.Printf("meterfeed: subscribed %s", ind)
	}
	return nil
}

type feedReading struct {
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
	Source    string  `json:"source"`
	TS        int64   `json:"ts"` // ms
}

type feedMessage struct {
	Type string        `json:"type"`
	Data []feedReading `json:"data"`
}

// Read streams MeterReading events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.MeterReading, <-chan error) {
	readings := make(chan *models.MeterReading, 1024)
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
		defer close(readings)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("meterfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("meterfeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-data frames
					continue
				}
				if m.Type != "reading" {
					continue
				}
				for _, d := range m.Data {
					source := d.Source
					if source == "" {
						source = "websocket"
					}
					r := &models.MeterReading{
						Timestamp: time.UnixMilli(d.TS).UTC(),
						Indicator: models.NormalizeIndicator(d.Indicator),
						Value:     d.Value,
						Source:    source,
					}
					select {
					case readings <- r:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return readings, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
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

// Package monitor consumes an Ogmios-style websocket feed of pool datum
// changes and turns it into validated pool-set snapshots. The transport and
// the snapshot logic are split: SnapshotProcessor is pure message handling,
// Client owns the connection lifecycle and reconnection.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/puckydev/puckswap-client-go/pool"
	"github.com/puckydev/puckswap-client-go/statecache"
)

// applyDiff builds the next snapshot by patching the previous pool set.
func applyDiff(prev *PoolSnapshot, diff *PoolSnapshotDiff) (*PoolSnapshot, error) {
	pools, err := pool.Patcher(prev.Pools, diff.Diff)
	if err != nil {
		return nil, err
	}
	return &PoolSnapshot{
		Slot:      diff.Slot,
		BlockHash: diff.BlockHash,
		Pools:     pools,
	}, nil
}

// Feed pushes every pool of a snapshot into the cache, keyed by pool ID and
// versioned by the snapshot's slot. The cache's own version guard drops
// anything the feed replays out of order.
func Feed(cache *statecache.Cache, snapshot *PoolSnapshot) {
	for _, p := range snapshot.Pools {
		cache.Update(p.ID, p, snapshot.Slot)
	}
}

// Config holds the configuration for the monitor client.
type Config struct {
	URL        string
	Logger     Logger
	BufferSize uint
	Registry   prometheus.Registerer
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.BufferSize < 1 {
		return errors.New("config: BufferSize must be greater than 0")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	if c.Registry == nil {
		return errors.New("config: Registry is required")
	}
	return nil
}

// Client manages the websocket connection and uses SnapshotProcessor for
// logic.
type Client struct {
	processor *SnapshotProcessor
	errCh     chan error
	logger    Logger
	metrics   *Metrics
}

// NewClient creates a new client with networking enabled. It remains active,
// reconnecting as needed, until the provided ctx is cancelled.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := &Client{
		processor: NewSnapshotProcessor(cfg.Logger, cfg.BufferSize),
		errCh:     make(chan error, 1),
		logger:    cfg.Logger,
		metrics:   NewMetrics(cfg.Registry),
	}

	go client.run(ctx, cfg.URL)
	return client, nil
}

// Snapshots delegates to the processor's snapshot channel.
func (c *Client) Snapshots() <-chan *PoolSnapshot {
	return c.processor.Snapshots()
}

// Err returns a read-only channel for receiving fatal (unrecoverable) errors.
func (c *Client) Err() <-chan error {
	return c.errCh
}

// run handles the networking lifecycle and feeds data to the processor.
func (c *Client) run(ctx context.Context, url string) {
	defer close(c.errCh)
	reconnectDelay := initialReconnectDelay

	for {
		if ctx.Err() != nil {
			c.logger.Info("Monitor context canceled, shutting down.")
			return
		}

		c.logger.Info("Attempting to connect to pool-state feed", "url", url)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			c.logger.Error("Failed to connect to feed, will retry...", "error", err, "delay", reconnectDelay)
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			reconnectDelay = nextDelay(reconnectDelay)
			continue
		}

		if err := conn.WriteJSON(subscribeRequest{Method: SubscribeMethod}); err != nil {
			c.logger.Error("Failed to send subscribe request", "error", err)
			conn.Close()
			continue
		}

		c.logger.Info("Connected to pool-state feed", "url", url)
		c.metrics.connects.Inc()
		reconnectDelay = initialReconnectDelay

		if err := c.readLoop(ctx, conn); err != nil {
			c.metrics.disconnects.Inc()
			c.logger.Warn("Feed connection lost, reconnecting...", "error", err)
		}
		conn.Close()
	}
}

// readLoop consumes messages until the connection fails or ctx is cancelled.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.processor.ProcessMessage(message); err != nil {
			c.metrics.processErrors.Inc()
			c.logger.Error("Failed to process feed message", "error", err)
			continue
		}
		c.metrics.messagesProcessed.Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func nextDelay(current time.Duration) time.Duration {
	next := current * 2
	if next > maxReconnectDelay {
		return maxReconnectDelay
	}
	return next
}

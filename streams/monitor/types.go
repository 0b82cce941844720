package monitor

import (
	"encoding/json"
	"time"

	"github.com/puckydev/puckswap-client-go/pool"
)

// Constants for reconnection logic
const (
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second

	// SubscribeMethod is the feed method the client invokes to start the
	// pool-state stream.
	SubscribeMethod = "subscribePoolState"

	eventTypeFull = "full"
	eventTypeDiff = "diff"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SubscriptionEvent is the wrapper object received from the feed.
type SubscriptionEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  int64           `json:"sentAt"`
}

// subscribeRequest is the frame sent after connecting to start the stream.
type subscribeRequest struct {
	Method string `json:"method"`
}

// PoolSnapshot is one complete view of every tracked pool at a ledger slot.
type PoolSnapshot struct {
	Slot      uint64      `json:"slot"`
	BlockHash string      `json:"blockHash"`
	Pools     []pool.Pool `json:"pools"`
}

// PoolSnapshotDiff carries only the pools that changed between two slots.
type PoolSnapshotDiff struct {
	FromSlot  uint64           `json:"fromSlot"`
	Slot      uint64           `json:"slot"`
	BlockHash string           `json:"blockHash"`
	Diff      pool.PoolSetDiff `json:"diff"`
}

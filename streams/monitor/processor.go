package monitor

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotProcessor handles the business logic of parsing feed events,
// maintaining the latest pool-set snapshot, applying diffs, and broadcasting
// updates. It is decoupled from the networking layer and is driven from a
// single goroutine.
type SnapshotProcessor struct {
	lastSnapshot *PoolSnapshot
	snapshotCh   chan *PoolSnapshot
	logger       Logger
}

// NewSnapshotProcessor creates a pure logic processor without networking.
func NewSnapshotProcessor(logger Logger, bufferSize uint) *SnapshotProcessor {
	return &SnapshotProcessor{
		logger:     logger,
		snapshotCh: make(chan *PoolSnapshot, bufferSize),
	}
}

// Snapshots returns a read-only channel for receiving new snapshots.
func (sp *SnapshotProcessor) Snapshots() <-chan *PoolSnapshot {
	return sp.snapshotCh
}

// ProcessMessage accepts a raw JSON message from the transport, processes it,
// and updates the internal snapshot.
func (sp *SnapshotProcessor) ProcessMessage(rawData json.RawMessage) error {
	processingStart := time.Now()
	var event SubscriptionEvent

	if err := json.Unmarshal(rawData, &event); err != nil {
		return fmt.Errorf("failed to unmarshal subscription event: %w", err)
	}

	switch event.Type {
	case eventTypeFull:
		return sp.handleFull(event, processingStart)
	case eventTypeDiff:
		return sp.handleDiff(event, processingStart)
	default:
		return fmt.Errorf("received unknown event type: %s", event.Type)
	}
}

func (sp *SnapshotProcessor) handleFull(event SubscriptionEvent, start time.Time) error {
	var snapshot PoolSnapshot
	if err := json.Unmarshal(event.Payload, &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal full snapshot payload: %w", err)
	}

	for _, p := range snapshot.Pools {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid pool %s in full snapshot: %w", p.ID, err)
		}
	}

	sp.emit(&snapshot, start, event.SentAt, eventTypeFull)
	return nil
}

func (sp *SnapshotProcessor) handleDiff(event SubscriptionEvent, start time.Time) error {
	var diff PoolSnapshotDiff
	if err := json.Unmarshal(event.Payload, &diff); err != nil {
		return fmt.Errorf("failed to unmarshal diff payload: %w", err)
	}

	if sp.lastSnapshot == nil {
		return fmt.Errorf("received diff before full snapshot; from_slot: %d, to_slot: %d", diff.FromSlot, diff.Slot)
	}

	if diff.FromSlot != sp.lastSnapshot.Slot {
		sp.logger.Warn(
			"Received out-of-order diff; snapshot may be out of sync. Discarding.",
			"last_known_slot", sp.lastSnapshot.Slot,
			"diff_from_slot", diff.FromSlot,
			"diff_to_slot", diff.Slot,
		)
		return nil // Non-fatal, just ignored
	}

	patched, err := applyDiff(sp.lastSnapshot, &diff)
	if err != nil {
		return fmt.Errorf("failed to patch snapshot: %w", err)
	}

	sp.emit(patched, start, event.SentAt, eventTypeDiff)
	return nil
}

func (sp *SnapshotProcessor) emit(snapshot *PoolSnapshot, start time.Time, sentAt int64, eventType string) {
	sp.lastSnapshot = snapshot

	processingDur := time.Since(start)
	transportMs := int64(0)
	if sentAt > 0 {
		transportMs = start.Sub(time.Unix(0, sentAt)).Milliseconds()
	}
	sp.logger.Debug("Snapshot processed",
		"slot", snapshot.Slot,
		"type", eventType,
		"pools", len(snapshot.Pools),
		"latency_proc_ms", processingDur.Milliseconds(),
		"latency_transport_ms", transportMs,
	)

	sp.snapshotCh <- snapshot
}

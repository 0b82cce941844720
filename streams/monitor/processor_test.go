package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puckydev/puckswap-client-go/statecache"
)

const fullSnapshotMsg = `{
	"type": "full",
	"sentAt": 0,
	"payload": {
		"slot": 1000,
		"blockHash": "abc123",
		"pools": [
			{
				"id": "pool-pucky",
				"asset": {"policyId": "policy-1", "assetName": "PUCKY"},
				"baseReserve": 1000000000000,
				"tokenReserve": 23019520000000,
				"lpSupply": 4797866192381,
				"feeBps": 30
			}
		]
	}
}`

func diffMsg(fromSlot, slot uint64, baseReserve string) string {
	return fmt.Sprintf(`{
		"type": "diff",
		"sentAt": 0,
		"payload": {
			"fromSlot": %d,
			"slot": %d,
			"blockHash": "def456",
			"diff": {
				"updates": [
					{
						"id": "pool-pucky",
						"asset": {"policyId": "policy-1", "assetName": "PUCKY"},
						"baseReserve": %s,
						"tokenReserve": 23019520000000,
						"lpSupply": 4797866192381,
						"feeBps": 30
					}
				]
			}
		}
	}`, fromSlot, slot, baseReserve)
}

func TestProcessFullSnapshot(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	require.NoError(t, p.ProcessMessage(json.RawMessage(fullSnapshotMsg)))

	snapshot := <-p.Snapshots()
	assert.Equal(t, uint64(1000), snapshot.Slot)
	assert.Equal(t, "abc123", snapshot.BlockHash)
	require.Len(t, snapshot.Pools, 1)
	assert.Equal(t, "pool-pucky", snapshot.Pools[0].ID)
	assert.Equal(t, "1000000000000", snapshot.Pools[0].BaseReserve.String())
}

func TestProcessDiffAfterFull(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	require.NoError(t, p.ProcessMessage(json.RawMessage(fullSnapshotMsg)))
	require.NoError(t, p.ProcessMessage(json.RawMessage(diffMsg(1000, 1010, "1100000000000"))))

	<-p.Snapshots() // full
	snapshot := <-p.Snapshots()
	assert.Equal(t, uint64(1010), snapshot.Slot)
	require.Len(t, snapshot.Pools, 1)
	assert.Equal(t, "1100000000000", snapshot.Pools[0].BaseReserve.String())
}

func TestProcessDiffBeforeFullFails(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	err := p.ProcessMessage(json.RawMessage(diffMsg(1000, 1010, "1100000000000")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diff before full snapshot")
}

func TestProcessOutOfOrderDiffDiscarded(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	require.NoError(t, p.ProcessMessage(json.RawMessage(fullSnapshotMsg)))

	// fromSlot does not chain onto the held snapshot: discarded, not fatal.
	require.NoError(t, p.ProcessMessage(json.RawMessage(diffMsg(999, 1010, "1100000000000"))))

	snapshot := <-p.Snapshots()
	assert.Equal(t, uint64(1000), snapshot.Slot)
	select {
	case extra := <-p.Snapshots():
		t.Fatalf("discarded diff must not emit a snapshot, got slot %d", extra.Slot)
	default:
	}
}

func TestProcessUnknownEventType(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	err := p.ProcessMessage(json.RawMessage(`{"type": "heartbeat", "payload": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestProcessMalformedMessage(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	assert.Error(t, p.ProcessMessage(json.RawMessage(`{not json`)))
	assert.Error(t, p.ProcessMessage(json.RawMessage(`{"type": "full", "payload": "not an object"}`)))
}

func TestProcessFullSnapshotRejectsInvalidPool(t *testing.T) {
	p := NewSnapshotProcessor(slog.Default(), 4)

	msg := `{
		"type": "full",
		"payload": {
			"slot": 1000,
			"blockHash": "abc123",
			"pools": [
				{
					"id": "pool-bad",
					"asset": {"policyId": "policy-1", "assetName": "PUCKY"},
					"baseReserve": -5,
					"tokenReserve": 1,
					"lpSupply": 1,
					"feeBps": 30
				}
			]
		}
	}`
	err := p.ProcessMessage(json.RawMessage(msg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool-bad")
}

func TestFeedIntoCache(t *testing.T) {
	cache, err := statecache.New(slog.Default(), prometheus.NewRegistry())
	require.NoError(t, err)

	p := NewSnapshotProcessor(slog.Default(), 4)
	require.NoError(t, p.ProcessMessage(json.RawMessage(fullSnapshotMsg)))
	Feed(cache, <-p.Snapshots())

	held, version, err := cache.Get("pool-pucky")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), version, "cache versions track the snapshot slot")
	assert.Equal(t, "23019520000000", held.TokenReserve.String())

	// A replayed older slot is dropped by the cache's version guard.
	require.NoError(t, p.ProcessMessage(json.RawMessage(diffMsg(1000, 999, "777"))))
	Feed(cache, <-p.Snapshots())
	held, version, err = cache.Get("pool-pucky")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), version)
	assert.Equal(t, "1000000000000", held.BaseReserve.String())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{URL: "ws://localhost:1337", Logger: slog.Default(), BufferSize: 8, Registry: prometheus.NewRegistry()}},
		{name: "missing url", cfg: Config{Logger: slog.Default(), BufferSize: 8, Registry: prometheus.NewRegistry()}, wantErr: "URL is required"},
		{name: "zero buffer", cfg: Config{URL: "ws://localhost:1337", Logger: slog.Default(), Registry: prometheus.NewRegistry()}, wantErr: "BufferSize"},
		{name: "missing logger", cfg: Config{URL: "ws://localhost:1337", BufferSize: 8, Registry: prometheus.NewRegistry()}, wantErr: "Logger is required"},
		{name: "missing registry", cfg: Config{URL: "ws://localhost:1337", Logger: slog.Default(), BufferSize: 8}, wantErr: "Registry is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNextDelay(t *testing.T) {
	d := initialReconnectDelay
	var seen []string
	for i := 0; i < 7; i++ {
		seen = append(seen, d.String())
		d = nextDelay(d)
	}
	assert.Equal(t, []string{"1s", "2s", "4s", "8s", "16s", "30s", "30s"}, seen)
}

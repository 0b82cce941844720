// Package session binds a user's in-progress quote input to the pool
// snapshot it was computed from. A session is ephemeral — one UI interaction
// owns it — and is invalidated the instant a newer snapshot for its pool
// arrives or the input changes. Every value handed to the transaction
// builder carries the snapshot version it was computed against, so the
// builder can assert freshness before submission.
package session

import (
	"errors"
	"math/big"
	"sync"

	"github.com/puckydev/puckswap-client-go/pool"
	"github.com/puckydev/puckswap-client-go/pool/calculator"
	"github.com/puckydev/puckswap-client-go/statecache"
)

var (
	// ErrStaleSnapshot is returned when a quote's snapshot version no longer
	// matches the on-chain state the transaction builder is about to spend.
	ErrStaleSnapshot = errors.New("quote computed against a stale pool snapshot")
	// ErrNoInput is returned when a quote is read before any input was set.
	ErrNoInput = errors.New("no quote input set")
)

// RecomputePolicy controls how a session reacts to a fresher pool snapshot.
type RecomputePolicy uint8

const (
	// RecomputeDeferred marks the session stale and recomputes lazily on the
	// next read. The default: an idle session does no work.
	RecomputeDeferred RecomputePolicy = iota
	// RecomputeEager recomputes inside the cache notification, keeping the
	// quote warm for a session that is actively displayed.
	RecomputeEager
)

// SwapParams is the tuple the transaction builder consumes for a swap.
type SwapParams struct {
	Direction       calculator.Direction
	InputAmount     *big.Int
	MinimumReceived *big.Int
	SnapshotVersion uint64
}

// AssertVersion fails with ErrStaleSnapshot unless the builder's freshly
// fetched on-chain state carries the same snapshot version the quote was
// computed from.
func (sp SwapParams) AssertVersion(onchainVersion uint64) error {
	if sp.SnapshotVersion != onchainVersion {
		return ErrStaleSnapshot
	}
	return nil
}

// SwapSession tracks one pending swap quote against one pool.
type SwapSession struct {
	mu     sync.Mutex
	cache  *statecache.Cache
	poolID string
	policy RecomputePolicy
	subID  uint64

	hasInput     bool
	direction    calculator.Direction
	amountIn     *big.Int
	slippageBps  uint16
	quote        *calculator.SwapQuote
	quoteVersion uint64
	stale        bool
	lastErr      error
}

// NewSwapSession creates a session bound to poolID and subscribes it to the
// cache. Close must be called when the interaction ends.
func NewSwapSession(cache *statecache.Cache, poolID string, policy RecomputePolicy) *SwapSession {
	s := &SwapSession{
		cache:  cache,
		poolID: poolID,
		policy: policy,
	}
	s.subID = cache.Subscribe(poolID, s.onUpdate)
	return s
}

// Close unsubscribes the session from the cache. A closed session can still
// be read but will never refresh; discarding it is the only cleanup needed.
func (s *SwapSession) Close() {
	s.cache.Unsubscribe(s.poolID, s.subID)
}

// onUpdate runs on the cache updater's goroutine for every accepted snapshot.
func (s *SwapSession) onUpdate(_ string, p pool.Pool, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
	if s.policy == RecomputeEager && s.hasInput {
		s.recomputeFrom(p, version)
	}
}

// SetInput replaces the session's swap input and recomputes immediately.
func (s *SwapSession) SetInput(dir calculator.Direction, amountIn *big.Int, slippageBps uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasInput = true
	s.direction = dir
	s.amountIn = amountIn
	s.slippageBps = slippageBps
	return s.refresh()
}

// Quote returns the current quote and the snapshot version it was computed
// from, recomputing first if the session went stale.
func (s *SwapSession) Quote() (*calculator.SwapQuote, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasInput {
		return nil, 0, ErrNoInput
	}
	if s.stale || s.quote == nil {
		if err := s.refresh(); err != nil {
			return nil, 0, err
		}
	}
	if s.lastErr != nil {
		return nil, 0, s.lastErr
	}
	return s.quote, s.quoteVersion, nil
}

// Params returns the builder tuple for the current quote, never one computed
// against a superseded snapshot: a stale session recomputes before answering.
func (s *SwapSession) Params() (SwapParams, error) {
	quote, version, err := s.Quote()
	if err != nil {
		return SwapParams{}, err
	}
	return SwapParams{
		Direction:       quote.Direction,
		InputAmount:     new(big.Int).Set(quote.InputAmount),
		MinimumReceived: new(big.Int).Set(quote.MinimumReceived),
		SnapshotVersion: version,
	}, nil
}

// Stale reports whether a fresher snapshot arrived since the quote was
// computed.
func (s *SwapSession) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// refresh recomputes against the cache's latest snapshot. Caller holds s.mu.
func (s *SwapSession) refresh() error {
	p, version, err := s.cache.Get(s.poolID)
	if err != nil {
		s.quote = nil
		s.lastErr = err
		return err
	}
	s.recomputeFrom(p, version)
	return s.lastErr
}

// recomputeFrom prices the stored input against the given snapshot.
// Caller holds s.mu.
func (s *SwapSession) recomputeFrom(p pool.Pool, version uint64) {
	quote, err := calculator.QuoteSwap(p, s.direction, s.amountIn, s.slippageBps)
	s.quote = quote
	s.quoteVersion = version
	s.lastErr = err
	s.stale = false
}

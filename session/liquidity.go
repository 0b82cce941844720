package session

import (
	"math/big"
	"sync"

	"github.com/puckydev/puckswap-client-go/pool"
	"github.com/puckydev/puckswap-client-go/pool/calculator"
	"github.com/puckydev/puckswap-client-go/statecache"
)

// liquidityMode selects which liquidity operation the session is pricing.
type liquidityMode uint8

const (
	modeNone liquidityMode = iota
	modeDeposit
	modeWithdraw
)

// DepositParams is the tuple the transaction builder consumes to add
// liquidity. MinLpOut is the quoted mint bounded by the slippage tolerance.
type DepositParams struct {
	BaseAmount      *big.Int
	TokenAmount     *big.Int
	MinLpOut        *big.Int
	SnapshotVersion uint64
}

// AssertVersion fails with ErrStaleSnapshot unless the builder's freshly
// fetched on-chain state matches the quote's snapshot version.
func (dp DepositParams) AssertVersion(onchainVersion uint64) error {
	if dp.SnapshotVersion != onchainVersion {
		return ErrStaleSnapshot
	}
	return nil
}

// WithdrawParams is the tuple the transaction builder consumes to remove
// liquidity.
type WithdrawParams struct {
	LpTokensToBurn  *big.Int
	MinBaseOut      *big.Int
	MinTokenOut     *big.Int
	SnapshotVersion uint64
}

// AssertVersion fails with ErrStaleSnapshot unless the builder's freshly
// fetched on-chain state matches the quote's snapshot version.
func (wp WithdrawParams) AssertVersion(onchainVersion uint64) error {
	if wp.SnapshotVersion != onchainVersion {
		return ErrStaleSnapshot
	}
	return nil
}

// LiquiditySession tracks one pending deposit or withdrawal quote against one
// pool.
type LiquiditySession struct {
	mu     sync.Mutex
	cache  *statecache.Cache
	poolID string
	policy RecomputePolicy
	subID  uint64

	mode            liquidityMode
	baseAmount      *big.Int
	tokenAmount     *big.Int
	ratioCorrection bool
	lpToBurn        *big.Int
	slippageBps     uint16

	quote        *calculator.LiquidityQuote
	quoteVersion uint64
	stale        bool
	lastErr      error
}

// NewLiquiditySession creates a session bound to poolID and subscribes it to
// the cache. Close must be called when the interaction ends.
func NewLiquiditySession(cache *statecache.Cache, poolID string, policy RecomputePolicy) *LiquiditySession {
	s := &LiquiditySession{
		cache:  cache,
		poolID: poolID,
		policy: policy,
	}
	s.subID = cache.Subscribe(poolID, s.onUpdate)
	return s
}

// Close unsubscribes the session from the cache.
func (s *LiquiditySession) Close() {
	s.cache.Unsubscribe(s.poolID, s.subID)
}

func (s *LiquiditySession) onUpdate(_ string, p pool.Pool, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
	if s.policy == RecomputeEager && s.mode != modeNone {
		s.recomputeFrom(p, version)
	}
}

// SetDepositInput replaces the session's input with a deposit and recomputes.
func (s *LiquiditySession) SetDepositInput(baseAmount, tokenAmount *big.Int, ratioCorrection bool, slippageBps uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = modeDeposit
	s.baseAmount = baseAmount
	s.tokenAmount = tokenAmount
	s.ratioCorrection = ratioCorrection
	s.slippageBps = slippageBps
	return s.refresh()
}

// SetWithdrawInput replaces the session's input with a withdrawal and
// recomputes.
func (s *LiquiditySession) SetWithdrawInput(lpTokensToBurn *big.Int, slippageBps uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = modeWithdraw
	s.lpToBurn = lpTokensToBurn
	s.slippageBps = slippageBps
	return s.refresh()
}

// Quote returns the current liquidity quote and its snapshot version,
// recomputing first if the session went stale.
func (s *LiquiditySession) Quote() (*calculator.LiquidityQuote, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quoteLocked()
}

func (s *LiquiditySession) quoteLocked() (*calculator.LiquidityQuote, uint64, error) {
	if s.mode == modeNone {
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

// DepositParams returns the builder tuple for the current deposit quote.
func (s *LiquiditySession) DepositParams() (DepositParams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote, version, err := s.quoteLocked()
	if err != nil {
		return DepositParams{}, err
	}
	if s.mode != modeDeposit {
		return DepositParams{}, ErrNoInput
	}

	minLpOut, err := slippageFloor(quote.LpTokensDelta, s.slippageBps)
	if err != nil {
		return DepositParams{}, err
	}
	return DepositParams{
		BaseAmount:      new(big.Int).Set(quote.BaseAmount),
		TokenAmount:     new(big.Int).Set(quote.TokenAmount),
		MinLpOut:        minLpOut,
		SnapshotVersion: version,
	}, nil
}

// WithdrawParams returns the builder tuple for the current withdrawal quote.
func (s *LiquiditySession) WithdrawParams() (WithdrawParams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote, version, err := s.quoteLocked()
	if err != nil {
		return WithdrawParams{}, err
	}
	if s.mode != modeWithdraw {
		return WithdrawParams{}, ErrNoInput
	}

	minBaseOut, err := slippageFloor(quote.BaseAmount, s.slippageBps)
	if err != nil {
		return WithdrawParams{}, err
	}
	minTokenOut, err := slippageFloor(quote.TokenAmount, s.slippageBps)
	if err != nil {
		return WithdrawParams{}, err
	}
	return WithdrawParams{
		LpTokensToBurn:  new(big.Int).Abs(quote.LpTokensDelta),
		MinBaseOut:      minBaseOut,
		MinTokenOut:     minTokenOut,
		SnapshotVersion: version,
	}, nil
}

// Stale reports whether a fresher snapshot arrived since the quote was
// computed.
func (s *LiquiditySession) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// refresh recomputes against the cache's latest snapshot. Caller holds s.mu.
func (s *LiquiditySession) refresh() error {
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
func (s *LiquiditySession) recomputeFrom(p pool.Pool, version uint64) {
	var (
		quote *calculator.LiquidityQuote
		err   error
	)
	switch s.mode {
	case modeDeposit:
		quote, err = calculator.QuoteDeposit(p, s.baseAmount, s.tokenAmount, s.ratioCorrection)
	case modeWithdraw:
		quote, err = calculator.QuoteWithdraw(p, s.lpToBurn)
	default:
		return
	}
	s.quote = quote
	s.quoteVersion = version
	s.lastErr = err
	s.stale = false
}

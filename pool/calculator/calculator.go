// Package calculator is the canonical quoting engine for constant-product
// pools: swap outputs, fees, price impact, slippage-bounded minimums, and
// LP-token mint/burn amounts. Every function is pure and deterministic over
// the pool snapshot it is given; the arithmetic reproduces the on-chain
// validator's integer math, so identical inputs always yield the exact
// minimum-received bound the validator will check.
package calculator

import (
	"errors"
	"math/big"

	"github.com/puckydev/puckswap-client-go/pool"
)

var (
	// ErrZeroInput is returned when a swap or deposit amount is zero.
	ErrZeroInput = errors.New("input amount must be greater than zero")
	// ErrNilAmount is returned when a nil pointer is passed as an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrInvalidAmount is returned when an amount is negative.
	ErrInvalidAmount = errors.New("amount must be non-negative")
	// ErrPoolUninitialized is returned when either reserve of the pool is zero.
	ErrPoolUninitialized = errors.New("pool has no liquidity")
	// ErrSlippageToleranceOutOfRange is returned when a slippage tolerance exceeds 10000 bps.
	ErrSlippageToleranceOutOfRange = errors.New("slippage tolerance must be in [0, 10000] basis points")
	// ErrDepositTooSmall is returned when a deposit would mint zero LP tokens.
	ErrDepositTooSmall = errors.New("deposit too small to mint LP tokens")
	// ErrInsufficientLpBalance is returned when a withdrawal burns more LP tokens than exist.
	ErrInsufficientLpBalance = errors.New("lp tokens to burn exceed supply")
	// ErrInsufficientLiquidity is returned when an exact-output swap requests
	// an amount greater than or equal to the available reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
)

// Direction identifies which side of the pair enters the pool.
type Direction uint8

const (
	// BaseToToken swaps the native settlement asset for the paired token.
	BaseToToken Direction = iota
	// TokenToBase swaps the paired token for the native settlement asset.
	TokenToBase
)

func (d Direction) String() string {
	switch d {
	case BaseToToken:
		return "baseToToken"
	case TokenToBase:
		return "tokenToBase"
	default:
		return "unknown"
	}
}

// SwapQuote is the full pricing of a single-direction swap against one pool
// snapshot. MinimumReceived is the slippage-bounded floor the transaction
// builder hands to the validator; everything feeding it is integer math.
type SwapQuote struct {
	Direction            Direction
	InputAmount          *big.Int
	OutputAmount         *big.Int
	FeeAmount            *big.Int
	PriceImpactBps       uint32
	SlippageToleranceBps uint16
	MinimumReceived      *big.Int

	// Hypothetical post-trade reserves, useful for chained simulation.
	NewBaseReserve  *big.Int
	NewTokenReserve *big.Int
}

// LiquidityQuote prices a deposit or withdrawal against one pool snapshot.
// LpTokensDelta is positive for a mint on deposit and negative for a burn on
// withdrawal. PoolSharePercent is presentation-only and never participates in
// on-chain-matching arithmetic.
type LiquidityQuote struct {
	BaseAmount       *big.Int
	TokenAmount      *big.Int
	LpTokensDelta    *big.Int
	PoolSharePercent float64
}

func checkAmountIn(amount *big.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return ErrZeroInput
	}
	return nil
}

// reserves returns the in-side and out-side reserves for the direction.
func reserves(p pool.Pool, dir Direction) (reserveIn, reserveOut *big.Int) {
	if dir == BaseToToken {
		return p.BaseReserve, p.TokenReserve
	}
	return p.TokenReserve, p.BaseReserve
}

package calculator

import (
	"math/big"

	"github.com/puckydev/puckswap-client-go/pool"
	"github.com/puckydev/puckswap-client-go/pool/calculator/ledgermath"
	"github.com/puckydev/puckswap-client-go/pool/calculator/pricemath"
)

var (
	basisPointDivisor = big.NewInt(10000)
	one               = big.NewInt(1)
)

// QuoteSwap prices a single-direction swap of amountIn against the pool
// snapshot p: Δy = y·Δx_net / (x + Δx_net), where Δx_net is the fee-reduced
// input. This matches the validator's check (x+Δx)·(y-Δy) >= x·y.
//
// If the net input rounds to zero after the fee (only possible for inputs of
// a few smallest units at extreme fee rates), the quote carries a zero output
// rather than an error; callers must reject zero-output quotes before
// building a transaction.
func QuoteSwap(p pool.Pool, dir Direction, amountIn *big.Int, slippageToleranceBps uint16) (*SwapQuote, error) {
	if slippageToleranceBps > 10000 {
		return nil, ErrSlippageToleranceOutOfRange
	}
	if err := checkAmountIn(amountIn); err != nil {
		return nil, err
	}
	if !p.Live() {
		return nil, ErrPoolUninitialized
	}

	reserveIn, reserveOut := reserves(p, dir)

	netInput, fee, err := ledgermath.ApplyFeeBps(amountIn, p.FeeBps)
	if err != nil {
		return nil, err
	}

	quote := &SwapQuote{
		Direction:            dir,
		InputAmount:          new(big.Int).Set(amountIn),
		FeeAmount:            fee,
		SlippageToleranceBps: slippageToleranceBps,
	}

	if netInput.Sign() == 0 {
		quote.OutputAmount = new(big.Int)
		quote.MinimumReceived = new(big.Int)
		quote.NewBaseReserve = new(big.Int).Set(p.BaseReserve)
		quote.NewTokenReserve = new(big.Int).Set(p.TokenReserve)
		return quote, nil
	}

	denominator := new(big.Int).Add(reserveIn, netInput)
	outputAmount, err := ledgermath.MulDivFloor(reserveOut, netInput, denominator)
	if err != nil {
		return nil, err
	}
	quote.OutputAmount = outputAmount

	// The full input, fee included, enters the pool.
	newReserveIn := new(big.Int).Add(reserveIn, amountIn)
	newReserveOut := new(big.Int).Sub(reserveOut, outputAmount)
	if dir == BaseToToken {
		quote.NewBaseReserve = newReserveIn
		quote.NewTokenReserve = newReserveOut
	} else {
		quote.NewBaseReserve = newReserveOut
		quote.NewTokenReserve = newReserveIn
	}

	impactBps, err := pricemath.PriceImpactBps(reserveOut, reserveIn, newReserveOut, newReserveIn)
	if err != nil {
		return nil, err
	}
	quote.PriceImpactBps = impactBps

	slippageKeep := new(big.Int).SetUint64(uint64(10000 - slippageToleranceBps))
	minimumReceived, err := ledgermath.MulDivFloor(outputAmount, slippageKeep, basisPointDivisor)
	if err != nil {
		return nil, err
	}
	quote.MinimumReceived = minimumReceived

	return quote, nil
}

// QuoteSwapForExactOutput prices the reverse question: the input amount
// required so the swap produces at least amountOut. The division rounds up by
// one smallest unit, so quoting the returned input forward always covers
// amountOut.
func QuoteSwapForExactOutput(p pool.Pool, dir Direction, amountOut *big.Int) (*big.Int, error) {
	if err := checkAmountIn(amountOut); err != nil {
		return nil, err
	}
	if !p.Live() {
		return nil, ErrPoolUninitialized
	}

	reserveIn, reserveOut := reserves(p, dir)
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	// amountIn = floor(reserveIn * amountOut * 10000 / ((reserveOut - amountOut) * (10000 - fee))) + 1
	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, basisPointDivisor)

	feeKeep := new(big.Int).SetUint64(uint64(10000 - p.FeeBps))
	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeKeep)
	if denominator.Sign() == 0 {
		return nil, ledgermath.ErrDivisionByZero
	}

	amountIn := new(big.Int).Div(numerator, denominator)
	amountIn.Add(amountIn, one)

	if !ledgermath.FitsUint128(amountIn) {
		return nil, ledgermath.ErrArithmeticOverflow
	}
	return amountIn, nil
}

// SimulateSwap prices a swap and returns the pool as it would stand after the
// trade executes. The returned pool shares no memory with p, so chained
// simulations never corrupt the live snapshot.
func SimulateSwap(p pool.Pool, dir Direction, amountIn *big.Int, slippageToleranceBps uint16) (*SwapQuote, pool.Pool, error) {
	quote, err := QuoteSwap(p, dir, amountIn, slippageToleranceBps)
	if err != nil {
		return nil, pool.Pool{}, err
	}

	newPool := pool.DeepCopy(p)
	newPool.BaseReserve.Set(quote.NewBaseReserve)
	newPool.TokenReserve.Set(quote.NewTokenReserve)
	return quote, newPool, nil
}

package calculator

import (
	"math/big"

	"github.com/puckydev/puckswap-client-go/pool"
	"github.com/puckydev/puckswap-client-go/pool/calculator/ledgermath"
)

// QuoteDeposit prices a liquidity deposit of the desired amounts against the
// pool snapshot p.
//
// Bootstrap (lpSupply == 0): lpTokensDelta = floor(sqrt(baseAmount *
// tokenAmount)); both amounts are used exactly as supplied and the deposit
// ratio is unconstrained.
//
// Proportional (lpSupply > 0): when ratioCorrectionEnabled, whichever side
// was supplied in excess of the pool's current ratio is shrunk down to match;
// neither side is ever scaled up beyond what the caller provided. The LP mint
// is computed from the base-asset side, lpTokensDelta = floor(finalBaseAmount
// * lpSupply / baseReserve), because the validator uses base as the canonical
// basis. A deposit that would mint zero LP tokens fails with
// ErrDepositTooSmall rather than silently minting nothing.
func QuoteDeposit(p pool.Pool, baseAmount, tokenAmount *big.Int, ratioCorrectionEnabled bool) (*LiquidityQuote, error) {
	if err := checkAmountIn(baseAmount); err != nil {
		return nil, err
	}
	if err := checkAmountIn(tokenAmount); err != nil {
		return nil, err
	}
	if p.LPSupply == nil {
		return nil, ErrNilAmount
	}

	if p.LPSupply.Sign() == 0 {
		return quoteBootstrapDeposit(baseAmount, tokenAmount)
	}

	if !p.Live() {
		return nil, ErrPoolUninitialized
	}

	finalBase := new(big.Int).Set(baseAmount)
	finalToken := new(big.Int).Set(tokenAmount)

	if ratioCorrectionEnabled {
		matchedToken, err := ledgermath.MulDivFloor(p.TokenReserve, baseAmount, p.BaseReserve)
		if err != nil {
			return nil, err
		}
		if matchedToken.Cmp(tokenAmount) <= 0 {
			// Token was supplied in excess; shrink it to the pool ratio.
			finalToken = matchedToken
		} else {
			// Base was supplied in excess; shrink it instead.
			finalBase, err = ledgermath.MulDivFloor(p.BaseReserve, tokenAmount, p.TokenReserve)
			if err != nil {
				return nil, err
			}
		}
	}

	lpMinted, err := ledgermath.MulDivFloor(finalBase, p.LPSupply, p.BaseReserve)
	if err != nil {
		return nil, err
	}
	if lpMinted.Sign() == 0 {
		return nil, ErrDepositTooSmall
	}

	return &LiquidityQuote{
		BaseAmount:       finalBase,
		TokenAmount:      finalToken,
		LpTokensDelta:    lpMinted,
		PoolSharePercent: sharePercentAfterMint(lpMinted, p.LPSupply),
	}, nil
}

func quoteBootstrapDeposit(baseAmount, tokenAmount *big.Int) (*LiquidityQuote, error) {
	product := new(big.Int).Mul(baseAmount, tokenAmount)
	lpMinted, err := ledgermath.IntegerSqrtFloor(product)
	if err != nil {
		return nil, err
	}
	if lpMinted.Sign() == 0 {
		return nil, ErrDepositTooSmall
	}

	return &LiquidityQuote{
		BaseAmount:       new(big.Int).Set(baseAmount),
		TokenAmount:      new(big.Int).Set(tokenAmount),
		LpTokensDelta:    lpMinted,
		PoolSharePercent: 100.0,
	}, nil
}

// QuoteWithdraw prices burning lpTokensToBurn LP tokens for the proportional
// share of both reserves, integer floor division on each side. Burning the
// entire supply returns exactly (baseReserve, tokenReserve); no dust is left
// behind. The engine only knows pool-wide supply, so checking the burn
// against the caller's own LP balance is the caller's job.
func QuoteWithdraw(p pool.Pool, lpTokensToBurn *big.Int) (*LiquidityQuote, error) {
	if err := checkAmountIn(lpTokensToBurn); err != nil {
		return nil, err
	}
	if p.LPSupply == nil {
		return nil, ErrNilAmount
	}
	if p.LPSupply.Sign() == 0 {
		return nil, ErrPoolUninitialized
	}
	if lpTokensToBurn.Cmp(p.LPSupply) > 0 {
		return nil, ErrInsufficientLpBalance
	}

	baseOut, err := ledgermath.MulDivFloor(p.BaseReserve, lpTokensToBurn, p.LPSupply)
	if err != nil {
		return nil, err
	}
	tokenOut, err := ledgermath.MulDivFloor(p.TokenReserve, lpTokensToBurn, p.LPSupply)
	if err != nil {
		return nil, err
	}

	return &LiquidityQuote{
		BaseAmount:       baseOut,
		TokenAmount:      tokenOut,
		LpTokensDelta:    new(big.Int).Neg(lpTokensToBurn),
		PoolSharePercent: sharePercentBurned(lpTokensToBurn, p.LPSupply),
	}, nil
}

// sharePercentAfterMint returns the depositor's share of the post-mint supply.
// Display-only float.
func sharePercentAfterMint(minted, supply *big.Int) float64 {
	total := new(big.Float).SetInt(new(big.Int).Add(supply, minted))
	share := new(big.Float).SetInt(minted)
	pct, _ := new(big.Float).Quo(share, total).Float64()
	return pct * 100.0
}

// sharePercentBurned returns the burned fraction of the current supply.
// Display-only float.
func sharePercentBurned(burned, supply *big.Int) float64 {
	share := new(big.Float).SetInt(burned)
	total := new(big.Float).SetInt(supply)
	pct, _ := new(big.Float).Quo(share, total).Float64()
	return pct * 100.0
}

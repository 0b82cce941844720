// Package pricemath derives marginal prices and price impact from integer
// reserves using UQ128.128 fixed point. The basis-point impact computed here
// is pure-integer and safe to compare on the quoting path; only the Percent
// helpers are floating point, for display.
package pricemath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

const (
	// Resolution is the number of fractional bits in the UQ128.128 format.
	Resolution = uint(128)

	// MaxImpactBps caps a reported impact at 100%.
	MaxImpactBps = uint32(10000)
)

var (
	// ErrZeroDenominator is returned when a price is requested against a zero reserve.
	ErrZeroDenominator = errors.New("price denominator must be greater than zero")
	// ErrPriceOverflow is returned when a reserve does not fit the UQ128.128 format.
	ErrPriceOverflow = errors.New("reserve exceeds 128 bits")

	bpsDivisor = uint256.NewInt(10000)
)

// MarginalPriceX128 returns the marginal price numerator/denominator as a
// UQ128.128 fixed-point number: floor((numerator << 128) / denominator).
// Both inputs must fit in 128 bits.
func MarginalPriceX128(numerator, denominator *big.Int) (*uint256.Int, error) {
	if numerator == nil || denominator == nil {
		return nil, ErrZeroDenominator
	}
	if denominator.Sign() == 0 {
		return nil, ErrZeroDenominator
	}

	num, overflow := uint256.FromBig(numerator)
	if overflow || num.BitLen() > 128 {
		return nil, ErrPriceOverflow
	}
	den, overflow := uint256.FromBig(denominator)
	if overflow || den.BitLen() > 128 {
		return nil, ErrPriceOverflow
	}

	// num < 2^128, so the shift cannot overflow 256 bits.
	shifted := new(uint256.Int).Lsh(num, Resolution)
	return shifted.Div(shifted, den), nil
}

// PriceImpactBps measures the relative decrease of the marginal price
// outReserve/inReserve caused by a trade, in basis points, floor division,
// clamped to 10000. A price that did not move (or moved in the trader's
// favor, which cannot happen on a constant-product curve) reports zero.
func PriceImpactBps(outBefore, inBefore, outAfter, inAfter *big.Int) (uint32, error) {
	priceBefore, err := MarginalPriceX128(outBefore, inBefore)
	if err != nil {
		return 0, err
	}
	priceAfter, err := MarginalPriceX128(outAfter, inAfter)
	if err != nil {
		return 0, err
	}

	if priceBefore.IsZero() || priceAfter.Cmp(priceBefore) >= 0 {
		return 0, nil
	}

	drop := new(uint256.Int).Sub(priceBefore, priceAfter)
	// drop <= priceBefore, so drop*10000/priceBefore <= 10000 and the
	// 512-bit intermediate division cannot overflow the result.
	bps, _ := new(uint256.Int).MulDivOverflow(drop, bpsDivisor, priceBefore)
	if !bps.IsUint64() || bps.Uint64() > uint64(MaxImpactBps) {
		return MaxImpactBps, nil
	}
	return uint32(bps.Uint64()), nil
}

// ImpactPercent converts a basis-point impact to a display percentage.
// Display-only; never feed this back into a minimum-received bound.
func ImpactPercent(bps uint32) float64 {
	return float64(bps) / 100.0
}

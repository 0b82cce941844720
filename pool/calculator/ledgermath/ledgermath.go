// Package ledgermath provides the integer-only arithmetic primitives shared by
// every quoting path. All monetary quantities are unsigned integers in the
// ledger's smallest unit, capped at 128 bits to match on-chain word width.
// No floating point appears anywhere in this package.
package ledgermath

import (
	"errors"
	"math/big"
	"sync"
)

var (
	// basisPointDivisor is a constant representing 100% in basis points (10000).
	basisPointDivisor = big.NewInt(10000)

	// maxUint128 is the maximum value for a uint128 (2^128 - 1), the widest
	// quantity the on-chain validator manipulates.
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	// ErrNilAmount is returned when a nil pointer is passed as an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrInvalidAmount is returned when an amount is negative or exceeds the uint128 cap.
	ErrInvalidAmount = errors.New("amount must be an unsigned 128-bit integer")
	// ErrArithmeticOverflow is returned when a final result cannot fit in a uint128.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrDivisionByZero is returned when a divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrFeeOutOfRange is returned when a fee exceeds 10000 basis points.
	ErrFeeOutOfRange = errors.New("fee basis points must be in [0, 10000]")
)

// mathState holds reusable big.Int temporaries to avoid allocations on the
// keystroke-hot quoting path. Instances are NOT safe for concurrent use by
// themselves; they are managed by the sync.Pool below.
type mathState struct {
	product *big.Int
	feeBig  *big.Int
}

var statePool = sync.Pool{
	New: func() any {
		return &mathState{
			product: new(big.Int),
			feeBig:  new(big.Int),
		}
	},
}

// checkAmount validates that x is a usable uint128 quantity.
func checkAmount(x *big.Int) error {
	if x == nil {
		return ErrNilAmount
	}
	if x.Sign() < 0 || x.Cmp(maxUint128) > 0 {
		return ErrInvalidAmount
	}
	return nil
}

// FitsUint128 reports whether x is representable as an unsigned 128-bit integer.
func FitsUint128(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(maxUint128) <= 0
}

// ApplyFeeBps splits amount into the fee-reduced net and the fee itself:
// fee = floor(amount * feeBps / 10000), net = amount - fee. The fee never
// rounds up, and a zero amount yields a zero fee rather than an error.
func ApplyFeeBps(amount *big.Int, feeBps uint16) (net, fee *big.Int, err error) {
	if err := checkAmount(amount); err != nil {
		return nil, nil, err
	}
	if feeBps > 10000 {
		return nil, nil, ErrFeeOutOfRange
	}

	s := statePool.Get().(*mathState)
	defer statePool.Put(s)

	s.feeBig.SetUint64(uint64(feeBps))
	s.product.Mul(amount, s.feeBig)

	fee = new(big.Int).Div(s.product, basisPointDivisor)
	net = new(big.Int).Sub(amount, fee)
	return net, fee, nil
}

// MulDivFloor computes floor(a*b/c) with an arbitrary-precision intermediate,
// so the product a*b can never overflow on the way to the division. The final
// result is checked against the uint128 cap and ErrArithmeticOverflow is
// returned if it does not fit. Unreachable at realistic ledger supply caps,
// but checked, not assumed.
func MulDivFloor(a, b, c *big.Int) (*big.Int, error) {
	if err := checkAmount(a); err != nil {
		return nil, err
	}
	if err := checkAmount(b); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNilAmount
	}
	if c.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if c.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	s := statePool.Get().(*mathState)
	defer statePool.Put(s)

	s.product.Mul(a, b)
	result := new(big.Int).Div(s.product, c)

	if result.Cmp(maxUint128) > 0 {
		return nil, ErrArithmeticOverflow
	}
	return result, nil
}

// IntegerSqrtFloor returns floor(sqrt(x)) for an unsigned integer x.
// Deterministic, no floating point; used for the bootstrap LP mint.
func IntegerSqrtFloor(x *big.Int) (*big.Int, error) {
	if x == nil {
		return nil, ErrNilAmount
	}
	if x.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return new(big.Int).Sqrt(x), nil
}

package session

import (
	"math/big"

	"github.com/puckydev/puckswap-client-go/pool/calculator"
	"github.com/puckydev/puckswap-client-go/pool/calculator/ledgermath"
)

var bpsDivisor = big.NewInt(10000)

// slippageFloor applies the slippage tolerance to a quoted amount:
// floor(amount * (10000 - bps) / 10000). Negative quoted deltas are priced on
// their magnitude.
func slippageFloor(amount *big.Int, slippageBps uint16) (*big.Int, error) {
	if slippageBps > 10000 {
		return nil, calculator.ErrSlippageToleranceOutOfRange
	}
	magnitude := new(big.Int).Abs(amount)
	keep := new(big.Int).SetUint64(uint64(10000 - slippageBps))
	return ledgermath.MulDivFloor(magnitude, keep, bpsDivisor)
}

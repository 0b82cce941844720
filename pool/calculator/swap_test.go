package calculator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puckydev/puckswap-client-go/pool"
)

// newBigIntFromString is a helper to create a big.Int from a string, needed
// for values larger than an int64.
func newBigIntFromString(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("failed to set string for big.Int")
	}
	return n
}

// referencePool is the pinned regression pool: 1,000,000 base units against
// 23,019,520 token units at 6-decimal scale, 30 bps fee.
func referencePool() pool.Pool {
	return pool.Pool{
		ID:           "a4c1b9d0",
		Asset:        pool.AssetID{PolicyID: "pid", AssetName: "PUCKY"},
		BaseReserve:  newBigIntFromString("1000000000000"),
		TokenReserve: newBigIntFromString("23019520000000"),
		LPSupply:     newBigIntFromString("4797866192381"),
		FeeBps:       30,
	}
}

func TestQuoteSwap(t *testing.T) {
	testCases := []struct {
		name            string
		pool            pool.Pool
		direction       Direction
		amountIn        *big.Int
		slippageBps     uint16
		expectedFee     *big.Int
		expectedOut     *big.Int
		expectedMin     *big.Int
		expectedImpact  uint32
		expectedErr     error
	}{
		{
			name:        "Regression fixture: 100 base to token at 50 bps tolerance",
			pool:        referencePool(),
			direction:   BaseToToken,
			amountIn:    big.NewInt(100_000000),
			slippageBps: 50,
			// fee = floor(100_000000 * 30 / 10000), out = floor(23019520000000 * 99700000 / 1000000099700000)
			expectedFee:    big.NewInt(300000),
			expectedOut:    big.NewInt(2_294_817_350),
			expectedMin:    big.NewInt(2_283_343_263),
			expectedImpact: 1,
		},
		{
			name:           "Token to base",
			pool:           referencePool(),
			direction:      TokenToBase,
			amountIn:       newBigIntFromString("1000000000000"),
			slippageBps:    0,
			expectedFee:    big.NewInt(3_000000000),
			expectedOut:    big.NewInt(41_513_091_821),
			expectedMin:    big.NewInt(41_513_091_821), // zero tolerance keeps the full output
			expectedImpact: 814,
		},
		{
			name:        "Full slippage tolerance floors the minimum to zero",
			pool:        referencePool(),
			direction:   BaseToToken,
			amountIn:    big.NewInt(100_000000),
			slippageBps: 10000,
			expectedFee: big.NewInt(300000),
			expectedOut: big.NewInt(2_294_817_350),
			expectedMin: big.NewInt(0),
			expectedImpact: 1,
		},
		{
			name: "Net input rounded to zero yields zero output, not an error",
			pool: pool.Pool{
				BaseReserve:  big.NewInt(1_000_000),
				TokenReserve: big.NewInt(1_000_000),
				LPSupply:     big.NewInt(1_000_000),
				FeeBps:       10000,
			},
			direction:   BaseToToken,
			amountIn:    big.NewInt(3),
			slippageBps: 0,
			expectedFee: big.NewInt(3),
			expectedOut: big.NewInt(0),
			expectedMin: big.NewInt(0),
		},
		{
			name:        "Zero input",
			pool:        referencePool(),
			direction:   BaseToToken,
			amountIn:    big.NewInt(0),
			expectedErr: ErrZeroInput,
		},
		{
			name:        "Nil input",
			pool:        referencePool(),
			direction:   BaseToToken,
			amountIn:    nil,
			expectedErr: ErrNilAmount,
		},
		{
			name: "Uninitialized pool",
			pool: pool.Pool{
				BaseReserve:  big.NewInt(0),
				TokenReserve: newBigIntFromString("23019520000000"),
				LPSupply:     big.NewInt(0),
				FeeBps:       30,
			},
			direction:   BaseToToken,
			amountIn:    big.NewInt(100_000000),
			expectedErr: ErrPoolUninitialized,
		},
		{
			name:        "Slippage tolerance out of range",
			pool:        referencePool(),
			direction:   BaseToToken,
			amountIn:    big.NewInt(100_000000),
			slippageBps: 10001,
			expectedErr: ErrSlippageToleranceOutOfRange,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := QuoteSwap(tc.pool, tc.direction, tc.amountIn, tc.slippageBps)

			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, quote)
			assert.Zero(t, tc.expectedFee.Cmp(quote.FeeAmount), "fee: expected %s, got %s", tc.expectedFee, quote.FeeAmount)
			assert.Zero(t, tc.expectedOut.Cmp(quote.OutputAmount), "out: expected %s, got %s", tc.expectedOut, quote.OutputAmount)
			assert.Zero(t, tc.expectedMin.Cmp(quote.MinimumReceived), "min: expected %s, got %s", tc.expectedMin, quote.MinimumReceived)
			assert.Equal(t, tc.expectedImpact, quote.PriceImpactBps)
			assert.True(t, quote.MinimumReceived.Cmp(quote.OutputAmount) <= 0, "minimumReceived must never exceed outputAmount")
		})
	}
}

func TestQuoteSwap_Monotonicity(t *testing.T) {
	// Output must be strictly increasing in the input for fixed reserves,
	// sampled geometrically across [1, baseReserve*1000].
	p := referencePool()
	limit := new(big.Int).Mul(p.BaseReserve, big.NewInt(1000))

	prevOut := new(big.Int).SetInt64(-1)
	for amountIn := big.NewInt(1); amountIn.Cmp(limit) <= 0; amountIn = new(big.Int).Mul(amountIn, big.NewInt(7)) {
		quote, err := QuoteSwap(p, BaseToToken, amountIn, 0)
		require.NoError(t, err)

		assert.Positive(t, quote.OutputAmount.Cmp(prevOut),
			"output %s for input %s not strictly greater than previous %s", quote.OutputAmount, amountIn, prevOut)
		prevOut = quote.OutputAmount
	}
}

func TestQuoteSwap_NeverDrainsReserve(t *testing.T) {
	// Even an absurdly large input cannot pull the full opposite reserve.
	p := referencePool()
	hugeIn := new(big.Int).Mul(p.BaseReserve, newBigIntFromString("1000000000000"))

	quote, err := QuoteSwap(p, BaseToToken, hugeIn, 0)
	require.NoError(t, err)

	assert.Negative(t, quote.OutputAmount.Cmp(p.TokenReserve), "outputAmount must stay below the opposite reserve")
	assert.Positive(t, quote.NewTokenReserve.Sign(), "pool must retain token liquidity")
}

func TestQuoteSwap_RoundTripLeaksFee(t *testing.T) {
	// Swapping X base for token and immediately swapping the proceeds back
	// must return strictly less than X for any positive fee.
	p := referencePool()
	amountIn := big.NewInt(100_000000)

	quoteForward, newPool, err := SimulateSwap(p, BaseToToken, amountIn, 0)
	require.NoError(t, err)

	quoteBack, err := QuoteSwap(newPool, TokenToBase, quoteForward.OutputAmount, 0)
	require.NoError(t, err)

	assert.Negative(t, quoteBack.OutputAmount.Cmp(amountIn), "round trip must lose the fee")
	assert.Zero(t, quoteBack.OutputAmount.Cmp(big.NewInt(99_400_959)), "pinned round-trip proceeds moved")
}

func TestQuoteSwap_ConstantProductNeverDecreases(t *testing.T) {
	p := referencePool()
	kBefore := new(big.Int).Mul(p.BaseReserve, p.TokenReserve)

	for _, amountIn := range []*big.Int{big.NewInt(1), big.NewInt(999), big.NewInt(100_000000), newBigIntFromString("5000000000000")} {
		quote, err := QuoteSwap(p, BaseToToken, amountIn, 0)
		require.NoError(t, err)

		kAfter := new(big.Int).Mul(quote.NewBaseReserve, quote.NewTokenReserve)
		assert.True(t, kAfter.Cmp(kBefore) >= 0, "k decreased for input %s", amountIn)
	}
}

func TestQuoteSwapForExactOutput(t *testing.T) {
	t.Run("Inverts the fixture", func(t *testing.T) {
		p := referencePool()

		amountIn, err := QuoteSwapForExactOutput(p, BaseToToken, big.NewInt(2_294_817_350))
		require.NoError(t, err)
		assert.Zero(t, amountIn.Cmp(big.NewInt(100_000000)))

		// Quoting the returned input forward must cover the requested output.
		quote, err := QuoteSwap(p, BaseToToken, amountIn, 0)
		require.NoError(t, err)
		assert.True(t, quote.OutputAmount.Cmp(big.NewInt(2_294_817_350)) >= 0)
	})

	t.Run("Requesting the full reserve fails", func(t *testing.T) {
		p := referencePool()
		_, err := QuoteSwapForExactOutput(p, BaseToToken, p.TokenReserve)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})

	t.Run("Zero output", func(t *testing.T) {
		_, err := QuoteSwapForExactOutput(referencePool(), BaseToToken, big.NewInt(0))
		assert.ErrorIs(t, err, ErrZeroInput)
	})
}

func TestSimulateSwap_StateIsolation(t *testing.T) {
	originalPool := referencePool()
	amountIn := big.NewInt(100_000000)

	quote1, newPool1, err := SimulateSwap(originalPool, BaseToToken, amountIn, 0)
	require.NoError(t, err)
	quote2, newPool2, err := SimulateSwap(originalPool, BaseToToken, amountIn, 0)
	require.NoError(t, err)

	// The first simulation must not have mutated the original pool, or the
	// second would have priced against different reserves.
	assert.Equal(t, quote1.OutputAmount.String(), quote2.OutputAmount.String())

	// The returned reserves are new big.Int instances, not aliases.
	assert.NotSame(t, originalPool.BaseReserve, newPool1.BaseReserve)
	assert.NotSame(t, originalPool.TokenReserve, newPool1.TokenReserve)

	// Mutating one result must not affect the other.
	newPool1.BaseReserve.Add(newPool1.BaseReserve, big.NewInt(12345))
	assert.NotEqual(t, newPool1.BaseReserve.String(), newPool2.BaseReserve.String())
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "baseToToken", BaseToToken.String())
	assert.Equal(t, "tokenToBase", TokenToBase.String())
	assert.Equal(t, "unknown", Direction(9).String())
}

// --- Benchmarks ---

var benchQuote *SwapQuote

func BenchmarkQuoteSwap(b *testing.B) {
	p := referencePool()
	amountIn := big.NewInt(100_000000)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		quote, _ := QuoteSwap(p, BaseToToken, amountIn, 50)
		benchQuote = quote
	}
}

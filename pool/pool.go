package pool

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrNilReserve is returned when a pool carries a nil reserve or LP supply.
	ErrNilReserve = errors.New("pool reserve must be non-nil")
	// ErrNegativeReserve is returned when a pool carries a negative reserve or LP supply.
	ErrNegativeReserve = errors.New("pool reserve must be non-negative")
	// ErrFeeOutOfRange is returned when the trading fee exceeds 10000 basis points.
	ErrFeeOutOfRange = errors.New("fee basis points must be in [0, 10000]")
)

// AssetID identifies a Cardano native asset by its minting policy and asset name,
// both hex-encoded. The zero value ("" / "") denotes the ledger's native
// settlement asset (lovelace).
type AssetID struct {
	PolicyID  string `json:"policyId"`
	AssetName string `json:"assetName"`
}

// IsNative reports whether the asset is the ledger's native settlement asset.
func (a AssetID) IsNative() bool {
	return a.PolicyID == "" && a.AssetName == ""
}

// Unit returns the concatenated policy ID and asset name, the conventional
// single-string form of a Cardano asset.
func (a AssetID) Unit() string {
	return a.PolicyID + a.AssetName
}

func (a AssetID) String() string {
	if a.IsNative() {
		return "lovelace"
	}
	return a.PolicyID + "." + a.AssetName
}

// ComputePoolID derives the identifier for the pool pairing the native asset
// with the given token: the blake2b-224 digest of the token's asset unit,
// hex-encoded. blake2b-224 is the ledger's script/asset hashing primitive, so
// the ID matches the one carried by the pool's LP NFT.
func ComputePoolID(asset AssetID) string {
	h, err := blake2b.New(28, nil)
	if err != nil {
		// blake2b.New only fails for invalid digest sizes; 28 is valid.
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	h.Write([]byte(asset.Unit()))
	return hex.EncodeToString(h.Sum(nil))
}

// Pool is the authoritative reserve snapshot of one constant-product pool,
// as read from the pool's on-chain datum. Reserves are denominated in the
// asset's smallest unit. A Pool is replaced wholesale when a fresher datum
// arrives; it is never field-mutated in place.
type Pool struct {
	ID           string   `json:"id"`
	Asset        AssetID  `json:"asset"`
	BaseReserve  *big.Int `json:"baseReserve"`
	TokenReserve *big.Int `json:"tokenReserve"`
	LPSupply     *big.Int `json:"lpSupply"`
	FeeBps       uint16   `json:"feeBps"` // i.e 30 for 0.3%
}

// NewPool constructs a pool snapshot from on-chain datum fields, deriving the
// pool ID from the paired asset.
func NewPool(asset AssetID, baseReserve, tokenReserve, lpSupply *big.Int, feeBps uint16) (Pool, error) {
	p := Pool{
		ID:           ComputePoolID(asset),
		Asset:        asset,
		BaseReserve:  baseReserve,
		TokenReserve: tokenReserve,
		LPSupply:     lpSupply,
		FeeBps:       feeBps,
	}
	if err := p.Validate(); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// Validate checks the structural invariants shared by every pool snapshot.
// It does not require the pool to be live; a freshly created pool legitimately
// has zero reserves and zero LP supply.
func (p Pool) Validate() error {
	for _, r := range []*big.Int{p.BaseReserve, p.TokenReserve, p.LPSupply} {
		if r == nil {
			return ErrNilReserve
		}
		if r.Sign() < 0 {
			return ErrNegativeReserve
		}
	}
	if p.FeeBps > 10000 {
		return fmt.Errorf("%w: got %d", ErrFeeOutOfRange, p.FeeBps)
	}
	return nil
}

// Live reports whether the pool can price a swap: both reserves strictly
// positive.
func (p Pool) Live() bool {
	return p.BaseReserve != nil && p.TokenReserve != nil &&
		p.BaseReserve.Sign() > 0 && p.TokenReserve.Sign() > 0
}

// DeepCopy creates a new Pool with its own memory for pointer types like *big.Int.
// This is essential to prevent a new state from sharing memory with the old state.
func DeepCopy(p Pool) Pool {
	newPool := p
	if p.BaseReserve != nil {
		newPool.BaseReserve = new(big.Int).Set(p.BaseReserve)
	}
	if p.TokenReserve != nil {
		newPool.TokenReserve = new(big.Int).Set(p.TokenReserve)
	}
	if p.LPSupply != nil {
		newPool.LPSupply = new(big.Int).Set(p.LPSupply)
	}
	return newPool
}

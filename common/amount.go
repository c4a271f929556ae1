package common

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Bridged amounts travel as decimal strings end to end. They are only ever
// converted to machine integers at the ledger boundary, through the helpers
// below, so no floating point representation exists anywhere in the pipeline.

// ParseDecimalAmount parses a non-negative decimal string ("5", "0.25",
// "5000000") into an arbitrary precision rational.
func ParseDecimalAmount(amount string) (*big.Rat, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount is empty")
	}

	// big.Rat accepts exponents and fractions, persisted amounts must not
	if strings.ContainsAny(amount, "eE/") {
		return nil, fmt.Errorf("amount is not a plain decimal string: %s", amount)
	}

	value, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("could not parse amount: %s", amount)
	}

	if value.Sign() < 0 {
		return nil, fmt.Errorf("amount is negative: %s", amount)
	}

	return value, nil
}

// FungibleUnits converts a destination amount expressed in the token's
// smallest units into whole token units: round(amount / 10^decimals),
// half away from zero.
func FungibleUnits(amount string, decimals uint8) (uint64, error) {
	value, err := ParseDecimalAmount(amount)
	if err != nil {
		return 0, err
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value = new(big.Rat).Quo(value, new(big.Rat).SetInt(scale))

	units := ratRound(value)
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %s with %d decimals overflows unit range", amount, decimals)
	}

	return units.Uint64(), nil
}

// CollectibleCount computes how many collectibles a claim amount settles:
// amount / inscribeAmount. The division must be exact, a fractional
// collectible cannot be delivered.
func CollectibleCount(amount string, inscribeAmount string) (uint64, error) {
	value, err := ParseDecimalAmount(amount)
	if err != nil {
		return 0, err
	}

	perUnit, err := ParseDecimalAmount(inscribeAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid inscribe amount: %w", err)
	}

	if perUnit.Sign() == 0 {
		return 0, fmt.Errorf("inscribe amount is zero")
	}

	count := new(big.Rat).Quo(value, perUnit)
	if !count.IsInt() {
		return 0, fmt.Errorf("amount %s is not an exact multiple of inscribe amount %s", amount, inscribeAmount)
	}

	result := count.Num()
	if !result.IsUint64() || result.Uint64() > math.MaxInt32 {
		return 0, fmt.Errorf("collectible count out of range: %s", result)
	}

	return result.Uint64(), nil
}

func ratRound(value *big.Rat) *big.Int {
	num := new(big.Int).Mul(value.Num(), big.NewInt(2))
	num.Add(num, value.Denom())

	den := new(big.Int).Mul(value.Denom(), big.NewInt(2))

	return num.Div(num, den)
}

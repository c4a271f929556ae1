package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDecimalAmount(t *testing.T) {
	t.Run("valid amounts", func(t *testing.T) {
		for _, amount := range []string{"0", "5", "5000000", "0.25", " 12.5 "} {
			value, err := ParseDecimalAmount(amount)
			require.NoError(t, err)
			require.NotNil(t, value)
		}
	})

	t.Run("invalid amounts", func(t *testing.T) {
		for _, amount := range []string{"", "-1", "1e6", "1/2", "abc", "12.5.6"} {
			_, err := ParseDecimalAmount(amount)
			require.Error(t, err, "amount %q should not parse", amount)
		}
	})
}

func TestFungibleUnits(t *testing.T) {
	t.Run("exact division", func(t *testing.T) {
		units, err := FungibleUnits("5000000", 6)
		require.NoError(t, err)
		require.Equal(t, uint64(5), units)
	})

	t.Run("zero decimals", func(t *testing.T) {
		units, err := FungibleUnits("42", 0)
		require.NoError(t, err)
		require.Equal(t, uint64(42), units)
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		units, err := FungibleUnits("1500000", 6)
		require.NoError(t, err)
		require.Equal(t, uint64(2), units)

		units, err = FungibleUnits("1400000", 6)
		require.NoError(t, err)
		require.Equal(t, uint64(1), units)
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := FungibleUnits("-5", 6)
		require.Error(t, err)
	})
}

func TestCollectibleCount(t *testing.T) {
	t.Run("exact multiple", func(t *testing.T) {
		count, err := CollectibleCount("3000", "1000")
		require.NoError(t, err)
		require.Equal(t, uint64(3), count)
	})

	t.Run("fractional per unit amount", func(t *testing.T) {
		count, err := CollectibleCount("1", "0.25")
		require.NoError(t, err)
		require.Equal(t, uint64(4), count)
	})

	t.Run("not an exact multiple", func(t *testing.T) {
		_, err := CollectibleCount("2500", "1000")
		require.Error(t, err)
		require.ErrorContains(t, err, "not an exact multiple")
	})

	t.Run("zero inscribe amount", func(t *testing.T) {
		_, err := CollectibleCount("1000", "0")
		require.Error(t, err)
	})

	t.Run("zero amount", func(t *testing.T) {
		count, err := CollectibleCount("0", "1000")
		require.NoError(t, err)
		require.Equal(t, uint64(0), count)
	})
}

package cmd

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		v    int64
		want string
	}{
		{0, "0"},
		{1, "0.00000001"},
		{100_000_000, "1"},
		{150_000_000, "1.5"},
		{123_456_789_012, "1234.56789012"},
		{-250_000_000, "-2.5"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatUnits(big.NewInt(c.v), tinybarsPerHbar), c.v)
	}
}

func TestWeibarsToTinybars(t *testing.T) {
	weibars, _ := new(big.Int).SetString("12345000000000000000", 10) // 1234.5 HBAR
	tinybars := new(big.Int).Quo(weibars, weibarsPerTinybar)
	assert.Equal(t, "123450000000", tinybars.String())
	assert.Equal(t, "1234.5", formatUnits(tinybars, tinybarsPerHbar))
}

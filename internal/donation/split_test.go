package donation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAmount_Exact(t *testing.T) {
	tests := []struct {
		name         string
		amount       int64
		platform     float64
		creator      float64
		wantPlatform int64
		wantCreator  int64
		wantPrize    int64
	}{
		{"default split on 10.00", 1000, 0.1, 0.1, 100, 100, 800},
		{"uneven three-way split", 1000, 0.1, 0.2, 100, 200, 700},
		{"all to prize", 1000, 0, 0, 0, 0, 1000},
		{"all to platform", 1000, 1, 0, 1000, 0, 0},
		{"one cent", 1, 0.1, 0.1, 0, 0, 1},
		{"residual lands in prize", 100, 0.333, 0.333, 33, 33, 34},
		{"rounding favors prize", 999, 0.1, 0.1, 100, 100, 799},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c, z := splitAmount(tt.amount, tt.platform, tt.creator)
			assert.Equal(t, tt.wantPlatform, p)
			assert.Equal(t, tt.wantCreator, c)
			assert.Equal(t, tt.wantPrize, z)
		})
	}
}

func TestSplitAmount_ZeroPrizeRatioNeverGoesNegative(t *testing.T) {
	// 0.5/0.5 on an odd amount rounds both halves up.
	p, c, z := splitAmount(5, 0.5, 0.5)
	assert.Equal(t, int64(0), z)
	assert.Equal(t, int64(5), p+c)
	assert.GreaterOrEqual(t, p, int64(0))
	assert.GreaterOrEqual(t, c, int64(0))
}

func TestSplitAmount_ConservesEveryCent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		amount := rng.Int63n(10_000_000) + 1
		platform := rng.Float64() * 0.5
		creator := rng.Float64() * 0.5

		p, c, z := splitAmount(amount, platform, creator)

		require.Equal(t, amount, p+c+z, "amount=%d platform=%g creator=%g", amount, platform, creator)
		require.GreaterOrEqual(t, p, int64(0))
		require.GreaterOrEqual(t, c, int64(0))
		require.GreaterOrEqual(t, z, int64(0))
	}
}

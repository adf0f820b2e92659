package decimal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	money "github.com/rezonia/facturx/internal/decimal"
)

func TestLineNet(t *testing.T) {
	qty := money.MustFromString("2.5")
	price := money.MustFromString("19.99")

	net := money.LineNet(qty, price)
	// 2.5 * 19.99 = 49.975 -> 49.98 half-up
	assert.Equal(t, "49.98", money.Format(net))
}

func TestTaxAmount(t *testing.T) {
	tests := []struct {
		basis, rate, want string
	}{
		{"100.00", "19", "19.00"},
		{"100.00", "0", "0.00"},
		{"33.33", "19", "6.33"},  // 6.3327 rounds down
		{"10.50", "5.5", "0.58"}, // 0.5775 rounds up
	}
	for _, tt := range tests {
		got := money.TaxAmount(money.MustFromString(tt.basis), money.MustFromString(tt.rate))
		assert.Equal(t, tt.want, money.Format(got), "basis=%s rate=%s", tt.basis, tt.rate)
	}
}

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, "0.13", money.Format(money.Round2(money.MustFromString("0.125"))))
	assert.Equal(t, "0.12", money.Format(money.Round2(money.MustFromString("0.124"))))
}

func TestSum(t *testing.T) {
	values := []decimal.Decimal{
		money.MustFromString("0.10"),
		money.MustFromString("0.20"),
		money.MustFromString("0.30"),
	}
	assert.Equal(t, "0.60", money.Format(money.Sum(values)))
	assert.Equal(t, "0.00", money.Format(money.Sum(nil)))
}

func TestFromString(t *testing.T) {
	d, err := money.FromString("123.45")
	require.NoError(t, err)
	assert.Equal(t, "123.45", money.Format(d))

	_, err = money.FromString("not-a-number")
	assert.Error(t, err)
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, money.IsNonNegative(money.Zero))
	assert.True(t, money.IsNonNegative(money.MustFromString("0.01")))
	assert.False(t, money.IsNonNegative(money.MustFromString("-0.01")))
}

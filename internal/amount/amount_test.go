package amount

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func TestToBaseUnitsExact(t *testing.T) {
	got, err := ToBaseUnits("100", Decimals)
	require.NoError(t, err)
	want := new(big.Int).Mul(big.NewInt(100), pow10(18))
	assert.Equal(t, 0, want.Cmp(got), "got %s", got)

	got, err = ToBaseUnits("1000", Decimals)
	require.NoError(t, err)
	want = new(big.Int).Mul(big.NewInt(1000), pow10(18))
	assert.Equal(t, 0, want.Cmp(got), "got %s", got)
}

func TestToBaseUnitsLargeValuesDoNotDrift(t *testing.T) {
	// 2^64 tokens overflows float64 mantissa by a wide margin.
	got, err := ToBaseUnits("18446744073709551617.000000000000000001", Decimals)
	require.NoError(t, err)
	want, ok := new(big.Int).SetString("18446744073709551617000000000000000001", 10)
	require.True(t, ok)
	assert.Equal(t, 0, want.Cmp(got), "got %s", got)
}

func TestToBaseUnitsRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "-5", "1.2.3", "NaN", "0.0000000000000000001"} {
		t.Run(in, func(t *testing.T) {
			_, err := ToBaseUnits(in, Decimals)
			require.Error(t, err)
			assert.True(t, tokenerr.Is(err, tokenerr.KindConversion), "kind %s", tokenerr.KindOf(err))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{
		"0",
		"1",
		"1000",
		"1.5",
		"0.000000000000000001",
		"123456789.123456789123456789",
		"99999999999999999999999.999999999999999999",
	} {
		t.Run(in, func(t *testing.T) {
			raw, err := ToBaseUnits(in, Decimals)
			require.NoError(t, err)
			back := ToDecimal(raw, Decimals)
			assert.True(t, back.Equal(decimal.RequireFromString(in)), "got %s", back.String())
		})
	}
}

func TestToDecimalDisplay(t *testing.T) {
	raw := new(big.Int).Mul(big.NewInt(15), pow10(17))
	assert.Equal(t, "1.5", ToDecimal(raw, Decimals).String())
	assert.Equal(t, "0", ToDecimal(nil, Decimals).String())
	assert.Equal(t, "0", ToDecimal(big.NewInt(0), Decimals).String())
}

func TestParseMintAmount(t *testing.T) {
	got, err := ParseMintAmount("100")
	require.NoError(t, err)
	want := new(big.Int).Mul(big.NewInt(100), pow10(18))
	assert.Equal(t, 0, want.Cmp(got))

	for _, in := range []string{"1.5", "", "ten", "-1"} {
		_, err := ParseMintAmount(in)
		require.Error(t, err, in)
		assert.True(t, tokenerr.Is(err, tokenerr.KindConversion))
	}

	got, err = ParseWholeTokens("7", 6)
	require.NoError(t, err)
	assert.Equal(t, "7000000", got.String())
}

func TestParsePositiveDecimal(t *testing.T) {
	d, err := ParsePositiveDecimal("1000")
	require.NoError(t, err)
	assert.Equal(t, "1000", d.String())

	d, err = ParsePositiveDecimal("0.25")
	require.NoError(t, err)
	assert.Equal(t, "0.25", d.String())

	for _, in := range []string{"0", "-5", "abc", "", "0.000"} {
		_, err := ParsePositiveDecimal(in)
		require.Error(t, err, in)
		assert.True(t, tokenerr.Is(err, tokenerr.KindValidation))
		assert.Equal(t, "Invalid amount", err.Error())
	}
}

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		raw     string
		maxFrac int
		want    string
	}{
		{"1234500000000000000", 18, "1.2345"},
		{"1000000000000000000", 18, "1"},
		{"1", 18, "0.000000000000000001"},
		{"1", 6, "0"},
		{"-1500000000000000000", 6, "-1.5"},
		{"-1", 6, "0"},
		{"0", 6, "0"},
	}
	for _, tc := range cases {
		raw, ok := new(big.Int).SetString(tc.raw, 10)
		require.True(t, ok)
		assert.Equal(t, tc.want, FormatUnits(raw, Decimals, tc.maxFrac), tc.raw)
	}
	assert.Equal(t, "0", FormatUnits(nil, Decimals, 6))
}

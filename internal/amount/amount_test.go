package amount

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Amount
		want string
	}{
		{0, "0.0000"},
		{1, "0.0001"},
		{9_999, "0.9999"},
		{10_000, "1.0000"},
		{10_001, "1.0001"},
		{MaxAmount, "922337203685477.5807"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in), "Format(%d)", uint64(tt.in))
	}
}

func TestFormatSigned(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.0000"},
		{1, "0.0001"},
		{9_999, "0.9999"},
		{10_001, "1.0001"},
		{-0, "0.0000"},
		{-1, "-0.0001"},
		{-9_999, "-0.9999"},
		{-10_000, "-1.0000"},
		{-10_001, "-1.0001"},
		{-10_000_000_000_000, "-1000000000.0000"},
		{math.MinInt64, "-922337203685477.5808"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSigned(tt.in), "FormatSigned(%d)", tt.in)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Amount
	}{
		{"zero", "0", 0},
		{"smallest unit", "0.0001", 1},
		{"max fraction", "0.9999", 9_999},
		{"whole", "1.0000", 10_000},
		{"whole and unit", "1.0001", 10_001},
		{"no fraction digits", "7.", 70_000},
		{"short fraction padded", "0.99", 9_900},
		{"trailing zero padded", "0.990", 9_900},
		{"excess digits truncated", "1.00019999", 10_001},
		{"excess zeros truncated", "1.00010000", 10_001},
		{"excess non digits truncated", "2.5000abc", 25_000},
		{"max amount", "922337203685477.5807", MaxAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Truncates(t *testing.T) {
	t.Parallel()

	long, err := Parse("1.00019999")
	require.NoError(t, err)

	short, err := Parse("1.0001")
	require.NoError(t, err)

	assert.Equal(t, short, long)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		".5",
		"-1",
		"+1",
		"1 ",
		"abc",
		"1.2x",
		"1.-001",
		"1,5",
		"922337203685477.5808",
		"18446744073709551616",
	}

	for _, in := range inputs {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrParse, "Parse(%q)", in)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	values := []Amount{0, 1, 9_999, 10_000, MaxAmount}
	for range 1000 {
		values = append(values, Amount(rng.Uint64N(uint64(MaxAmount))))
	}

	for _, v := range values {
		text := Format(v)

		// decimal is an independent oracle for the rendering.
		assert.Equal(t, decimal.New(int64(v), -Digits).StringFixed(Digits), text)

		got, err := Parse(text)
		require.NoError(t, err)
		assert.Equal(t, v, got, "round trip of %s", text)
	}
}

func TestAmount_Text(t *testing.T) {
	t.Parallel()

	var a Amount

	require.NoError(t, a.UnmarshalText([]byte("42.5")))
	assert.Equal(t, Amount(425_000), a)

	b, err := a.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "42.5000", string(b))

	require.ErrorIs(t, a.UnmarshalText([]byte("x")), ErrParse)
	assert.Equal(t, Amount(425_000), a, "failed unmarshal must not modify the value")
}

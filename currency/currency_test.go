package currency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		minor int64
		want  float64
	}{
		{0, 0},
		{1, 0.01},
		{10, 0.10},
		{100, 1},
		{123456, 1234.56},
		{123450, 1234.50},
		{100000, 1000},
		{987654321, 9876543.21},
	}
	for _, tc := range cases {
		s := FormatDisplay(tc.minor)
		assert.Truef(t, strings.HasPrefix(s, "R$ "), "FormatDisplay(%d) = %q", tc.minor, s)
		assert.InDeltaf(t, tc.want, ParseDisplayToAmount(s), 1e-9, "round trip %d via %q", tc.minor, s)
	}
}

func TestFormatDisplay_TwoDecimals(t *testing.T) {
	s := FormatDisplay(123450)
	// 两位小数保留尾随 0
	assert.True(t, strings.HasSuffix(s, "50"), s)
	assert.Equal(t, "R$ 0,00", Default.FormatDisplay(0))
}

func TestParseDisplayToAmount(t *testing.T) {
	assert.Equal(t, float64(0), ParseDisplayToAmount(""))
	assert.Equal(t, float64(0), ParseDisplayToAmount("R$ "))
	assert.InDelta(t, 12.34, ParseDisplayToAmount("1234"), 1e-9)
	assert.InDelta(t, 1234.56, ParseDisplayToAmount("R$ 1.234,56"), 1e-9)
	assert.InDelta(t, 0.05, ParseDisplayToAmount("abc5"), 1e-9)
}

func TestFormatInput(t *testing.T) {
	c := New("pt-BR", "R$")
	assert.Equal(t, "", c.FormatInput(""))
	assert.Equal(t, "", c.FormatInput("R$ ,"))

	// 每次按键整体重新格式化
	s := c.FormatInput("R$ 12,345")
	assert.InDelta(t, 123.45, c.ParseDisplayToAmount(s), 1e-9)
	assert.Equal(t, c.FormatDisplay(12345), s)
}

func TestFormatAmount(t *testing.T) {
	c := New("pt-BR", "R$")
	assert.Equal(t, c.FormatDisplay(380000), c.FormatAmount(3800))
	assert.Equal(t, "-"+c.FormatDisplay(1250), c.FormatAmount(-12.5))
}

func TestNew_InvalidLocaleFallsBack(t *testing.T) {
	c := New("not a locale!!", "R$")
	assert.Equal(t, "R$", c.Symbol())
	assert.InDelta(t, 1234.56, c.ParseDisplayToAmount(c.FormatDisplay(123456)), 1e-9)
}

func TestToMinor(t *testing.T) {
	assert.Equal(t, int64(123456), ToMinor(1234.56))
	assert.Equal(t, int64(10), ToMinor(0.1))
	assert.Equal(t, int64(0), ToMinor(0))
}

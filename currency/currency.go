// Package currency 在界面显示字符串与金额数值之间转换。
//
// 输入框每次按键都会整体重新格式化：去掉所有非数字字符，按"分"解释，
// 再输出带货币符号、千分位和两位小数的字符串。只支持配置的单一币种。
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Codec 货币编解码器
type Codec struct {
	symbol  string
	printer *message.Printer
}

// Default 默认编解码器（pt-BR, R$）
var Default = New("pt-BR", "R$")

// New 按 locale 和货币符号创建编解码器，locale 无法解析时回退 pt-BR
func New(locale, symbol string) *Codec {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	return &Codec{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// Symbol 货币符号
func (c *Codec) Symbol() string {
	return c.symbol
}

// FormatDisplay 以"分"为单位的整数格式化为显示字符串，如 123456 -> "R$ 1.234,56"
func (c *Codec) FormatDisplay(amountMinor int64) string {
	return c.format(decimal.New(amountMinor, -2))
}

// FormatAmount 以元为单位的数值格式化为显示字符串
func (c *Codec) FormatAmount(v float64) string {
	return c.format(decimal.NewFromFloat(v).Round(2))
}

func (c *Codec) format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	body := c.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
	return sign + c.symbol + " " + body
}

// ParseDisplayToAmount 去掉所有非数字字符后除以 100，空输入返回 0
func (c *Codec) ParseDisplayToAmount(raw string) float64 {
	return ParseDisplayToAmount(raw)
}

// FormatInput 按键后的整体重新格式化，没有数字时返回空串
func (c *Codec) FormatInput(raw string) string {
	digits := onlyDigits(raw)
	if digits == "" {
		return ""
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return ""
	}
	return c.format(d.Shift(-2))
}

// ParseDisplayToAmount 使用 Default 编解码器的规则解析
func ParseDisplayToAmount(raw string) float64 {
	digits := onlyDigits(raw)
	if digits == "" {
		return 0
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0
	}
	return d.Shift(-2).InexactFloat64()
}

// FormatDisplay 使用 Default 编解码器格式化
func FormatDisplay(amountMinor int64) string {
	return Default.FormatDisplay(amountMinor)
}

// ToMinor 元转分（四舍五入到分）
func ToMinor(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

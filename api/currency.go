package api

import (
	"financeiro/currency"

	"github.com/gin-gonic/gin"
)

// CurrencyHandler 货币输入格式化
type CurrencyHandler struct {
	codec *currency.Codec
}

// NewCurrencyHandler 创建货币处理器
func NewCurrencyHandler(codec *currency.Codec) *CurrencyHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &CurrencyHandler{codec: codec}
}

// FormatResult 输入格式化结果
type FormatResult struct {
	Display string  `json:"display" example:"R$ 1.234,56"`
	Amount  float64 `json:"amount" example:"1234.56"`
	Symbol  string  `json:"symbol" example:"R$"`
}

// Format 把按键输入重新格式化为货币显示
// @Summary 货币输入格式化
// @Description 只保留数字并按分解析，返回显示字符串和数值。没有数字时 display 为空
// @Tags 货币
// @Produce json
// @Param raw query string false "原始输入，如 R$ 1.234,567"
// @Success 200 {object} Response{data=FormatResult} "格式化成功"
// @Router /api/v1/currency/format [get]
func (h *CurrencyHandler) Format(c *gin.Context) {
	raw := c.Query("raw")
	Success(c, FormatResult{
		Display: h.codec.FormatInput(raw),
		Amount:  h.codec.ParseDisplayToAmount(raw),
		Symbol:  h.codec.Symbol(),
	})
}

package models

import (
	"strings"
	"time"
)

// DateLayout 日期格式（ISO 日历日期）
const DateLayout = "2006-01-02"

// Expense 消费记录
type Expense struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Value       float64 `json:"value"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
}

// Month 返回 YYYY-MM 前缀
func (e Expense) Month() string {
	if len(e.Date) < 7 {
		return ""
	}
	return e.Date[:7]
}

// Year 返回 YYYY 前缀
func (e Expense) Year() string {
	if len(e.Date) < 4 {
		return ""
	}
	return e.Date[:4]
}

// ValidDate 校验 YYYY-MM-DD
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

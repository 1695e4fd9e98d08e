package models

// 应急金流水类型
const (
	ContributionDeposit    = "deposit"
	ContributionWithdrawal = "withdrawal"
)

// EmergencyFundContribution 应急金存取记录（只追加的流水）
type EmergencyFundContribution struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type"`
}

// Signed 存入为正，取出为负
func (c EmergencyFundContribution) Signed() float64 {
	if c.Type == ContributionWithdrawal {
		return -c.Amount
	}
	return c.Amount
}

// IsValidContributionType 校验流水类型
func IsValidContributionType(t string) bool {
	return t == ContributionDeposit || t == ContributionWithdrawal
}

// FoldContributions 计算应急金余额：存入相加、取出相减，不做下限截断
func FoldContributions(list []EmergencyFundContribution) float64 {
	var balance float64
	for _, c := range list {
		balance += c.Signed()
	}
	return balance
}

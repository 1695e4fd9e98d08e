package models

// DefaultSavingsGoalPercentage 新用户默认储蓄目标百分比
const DefaultSavingsGoalPercentage = 10

// FinancialProfile 财务档案（每个用户一条，upsert 语义）
// EmergencyFund 是应急金流水的折叠结果，只读缓存，不允许直接修改
type FinancialProfile struct {
	UserID                string  `json:"userId"`
	MonthlySalary         float64 `json:"monthlySalary"`
	EmergencyFund         float64 `json:"emergencyFund"`
	SavingsGoalPercentage int     `json:"savingsGoalPercentage"`
}

// DefaultProfile 返回默认档案
func DefaultProfile(userID string) FinancialProfile {
	return FinancialProfile{
		UserID:                userID,
		SavingsGoalPercentage: DefaultSavingsGoalPercentage,
	}
}

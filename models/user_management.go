package models

import "time"

// UserManagement 后台用户管理视图（由注册表和各用户数据拼装而成）
type UserManagement struct {
	ID                   string            `json:"id"`
	Email                string            `json:"email"`
	Name                 string            `json:"name"`
	IsActive             bool              `json:"isActive"`
	CreatedAt            time.Time         `json:"createdAt"`
	LastLogin            *time.Time        `json:"lastLogin,omitempty"`
	FinancialProfile     *FinancialProfile `json:"financialProfile,omitempty"`
	TotalExpenses        float64           `json:"totalExpenses"`
	ExpenseCount         int               `json:"expenseCount"`
	EmergencyFundBalance float64           `json:"emergencyFundBalance"`
	// DiscoveredOnly 仅由 financial_profile_{id} 等键推断出的用户，注册表中不存在
	DiscoveredOnly bool `json:"discoveredOnly"`
}

// UserStats 后台用户计数，按过滤前的完整列表统计
type UserStats struct {
	Total    int `json:"total"`
	Active   int `json:"ativos"`
	Inactive int `json:"inativos"`
}

// UserList 后台用户列表及计数
type UserList struct {
	Users []UserManagement `json:"users"`
	Stats UserStats        `json:"stats"`
}

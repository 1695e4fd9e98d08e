package models

import "time"

// UserActivity 管理员操作日志
type UserActivity struct {
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// 操作日志动作
const (
	ActivityUserActivated   = "Usuário ativado"
	ActivityUserDeactivated = "Usuário desativado"
	ActivityUserDeleted     = "Usuário excluído"
)

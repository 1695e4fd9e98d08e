package models

import (
	"strings"
	"time"
)

// AdminUserID 管理员账号固定 ID（不在用户注册表中）
const AdminUserID = "admin-1"

// User 用户
// PasswordHash 只用于持久化，返回给客户端前需调用 Sanitized
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"passwordHash,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	IsActive     bool       `json:"isActive"`
	IsAdmin      bool       `json:"isAdmin"`
}

// Sanitized 返回去除密码哈希的副本
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// NormalizeEmail 邮箱统一小写、去空格后比较
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

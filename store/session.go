package store

import (
	"context"
	"encoding/json"

	"financeiro/models"
	"financeiro/storage"
)

// SessionStore 持久化的当前会话，键 currentUser
type SessionStore struct {
	kv storage.KV
}

// Get 读取当前会话用户，没有会话时返回 nil
func (s *SessionStore) Get(ctx context.Context) (*models.User, error) {
	var u models.User
	found, err := readJSON(ctx, s.kv, KeyCurrentUser, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// Set 写入会话（不含密码哈希）
func (s *SessionStore) Set(ctx context.Context, u models.User) error {
	return writeJSON(ctx, s.kv, KeyCurrentUser, u.Sanitized())
}

// Clear 清除会话
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyCurrentUser)
}

// ClearIf 仅当会话属于 userID 时清除，返回是否清除
func (s *SessionStore) ClearIf(ctx context.Context, userID string) (bool, error) {
	u, err := s.Get(ctx)
	if err != nil || u == nil || u.ID != userID {
		return false, err
	}
	return true, s.Clear(ctx)
}

// ActiveFlags 用户启用标记，键 user_active_{userId}，值为 JSON 布尔
type ActiveFlags struct {
	kv storage.KV
}

// IsActive 未设置或损坏时视为启用
func (a *ActiveFlags) IsActive(ctx context.Context, userID string) (bool, error) {
	raw, found, err := a.kv.Get(ctx, PrefixActive+userID)
	if err != nil {
		return true, err
	}
	if !found {
		return true, nil
	}
	var active bool
	if err := json.Unmarshal(raw, &active); err != nil {
		return true, nil
	}
	return active, nil
}

// Set 写入启用标记
func (a *ActiveFlags) Set(ctx context.Context, userID string, active bool) error {
	return writeJSON(ctx, a.kv, PrefixActive+userID, active)
}

package store

import (
	"context"
	"time"

	"financeiro/models"
	"financeiro/storage"
)

// UserStore 用户注册表，键 users。注册表是用户列表的权威来源
type UserStore struct {
	kv    storage.KV
	locks *keyLocks
	now   func() time.Time
	newID func() string
}

// List 按注册顺序列出用户
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := readJSON(ctx, s.kv, KeyUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// FindByEmail 按邮箱查找（忽略大小写和首尾空格）
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	users, err := s.List(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	email = models.NormalizeEmail(email)
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == email {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// FindByID 按 ID 查找
func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	users, err := s.List(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// Create 注册新用户，邮箱重复时返回 ErrDuplicateEmail
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	defer s.locks.lock(KeyUsers)()

	users, err := s.List(ctx)
	if err != nil {
		return u, err
	}
	u.Email = models.NormalizeEmail(u.Email)
	for _, existing := range users {
		if models.NormalizeEmail(existing.Email) == u.Email {
			return u, ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = s.newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	users = append(users, u)
	if err := writeJSON(ctx, s.kv, KeyUsers, users); err != nil {
		return u, err
	}
	return u, nil
}

// Update 修改注册表中的用户，不存在时返回 ErrNotFound
func (s *UserStore) Update(ctx context.Context, id string, patch func(*models.User)) (models.User, error) {
	defer s.locks.lock(KeyUsers)()

	users, err := s.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		patch(&users[i])
		users[i].ID = id
		if err := writeJSON(ctx, s.kv, KeyUsers, users); err != nil {
			return models.User{}, err
		}
		return users[i], nil
	}
	return models.User{}, ErrNotFound
}

// Remove 从注册表移除用户，返回是否存在
func (s *UserStore) Remove(ctx context.Context, id string) (bool, error) {
	defer s.locks.lock(KeyUsers)()

	users, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	kept := users[:0]
	removed := false
	for _, u := range users {
		if u.ID == id {
			removed = true
			continue
		}
		kept = append(kept, u)
	}
	if !removed {
		return false, nil
	}
	return true, writeJSON(ctx, s.kv, KeyUsers, kept)
}

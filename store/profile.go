package store

import (
	"context"
	"strings"

	"financeiro/models"
	"financeiro/storage"
)

// ProfileStore 财务档案仓库，键 financial_profile_{userId}
type ProfileStore struct {
	kv            storage.KV
	locks         *keyLocks
	contributions *ContributionStore
}

// ProfilePatch 档案部分更新；emergencyFund 是派生值，不在此处
type ProfilePatch struct {
	MonthlySalary         *float64
	SavingsGoalPercentage *int
}

func (s *ProfileStore) key(userID string) string {
	return PrefixProfile + userID
}

// Find 读取档案，不存在时返回 nil
func (s *ProfileStore) Find(ctx context.Context, userID string) (*models.FinancialProfile, error) {
	var p models.FinancialProfile
	found, err := readJSON(ctx, s.kv, s.key(userID), &p)
	if err != nil || !found {
		return nil, err
	}
	p.UserID = userID
	return &p, nil
}

// Get 读取档案，不存在或损坏时返回默认值 {0, 0, 10}
func (s *ProfileStore) Get(ctx context.Context, userID string) (models.FinancialProfile, error) {
	p, err := s.Find(ctx, userID)
	if err != nil {
		return models.DefaultProfile(userID), err
	}
	if p == nil {
		return models.DefaultProfile(userID), nil
	}
	return *p, nil
}

// Update 合并字段，按流水重新计算 emergencyFund 后写入
func (s *ProfileStore) Update(ctx context.Context, userID string, patch ProfilePatch) (models.FinancialProfile, error) {
	key := s.key(userID)
	defer s.locks.lock(key)()

	p, err := s.Get(ctx, userID)
	if err != nil {
		return p, err
	}
	if patch.MonthlySalary != nil {
		p.MonthlySalary = *patch.MonthlySalary
	}
	if patch.SavingsGoalPercentage != nil {
		p.SavingsGoalPercentage = *patch.SavingsGoalPercentage
	}
	fund, err := s.contributions.Balance(ctx, userID)
	if err != nil {
		return p, err
	}
	p.EmergencyFund = fund

	if err := writeJSON(ctx, s.kv, key, p); err != nil {
		return p, err
	}
	return p, nil
}

// SyncEmergencyFund 只重新折叠 emergencyFund
func (s *ProfileStore) SyncEmergencyFund(ctx context.Context, userID string) error {
	_, err := s.Update(ctx, userID, ProfilePatch{})
	return err
}

// UserIDs 扫描所有 financial_profile_{id} 键，返回其中的用户 ID
func (s *ProfileStore) UserIDs(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, PrefixProfile)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id := strings.TrimPrefix(k, PrefixProfile)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

package store

import (
	"context"

	"financeiro/models"
)

// ContributionStore 应急金流水仓库，键 emergency_contributions_{userId}。
// 每次新增或删除后都会重新折叠并写回财务档案中的 emergencyFund
type ContributionStore struct {
	c        *Collection[models.EmergencyFundContribution]
	profiles *ProfileStore
}

// List 按插入顺序列出流水
func (s *ContributionStore) List(ctx context.Context, userID string) ([]models.EmergencyFundContribution, error) {
	return s.c.List(ctx, userID)
}

// Balance 流水折叠后的余额
func (s *ContributionStore) Balance(ctx context.Context, userID string) (float64, error) {
	list, err := s.c.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	return models.FoldContributions(list), nil
}

// Add 追加一条流水并同步档案。取出金额超过当前余额时返回 ErrInsufficientFunds，
// 余额校验与写入在同一把键锁内完成
func (s *ContributionStore) Add(ctx context.Context, userID string, c models.EmergencyFundContribution) (models.EmergencyFundContribution, error) {
	c.ID = ""
	c.UserID = userID
	var check func([]models.EmergencyFundContribution) error
	if c.Type == models.ContributionWithdrawal {
		check = func(list []models.EmergencyFundContribution) error {
			if c.Amount > models.FoldContributions(list) {
				return ErrInsufficientFunds
			}
			return nil
		}
	}
	added, err := s.c.AddIf(ctx, userID, c, check)
	if err != nil {
		return added, err
	}
	if err := s.profiles.SyncEmergencyFund(ctx, userID); err != nil {
		return added, err
	}
	return added, nil
}

// Delete 删除一条流水并同步档案，记录不存在时返回 ErrNotFound
func (s *ContributionStore) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.c.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return s.profiles.SyncEmergencyFund(ctx, userID)
}

// Purge 删除用户全部流水
func (s *ContributionStore) Purge(ctx context.Context, userID string) error {
	return s.c.Purge(ctx, userID)
}

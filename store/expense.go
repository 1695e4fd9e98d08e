package store

import (
	"context"

	"financeiro/models"
)

// ExpenseStore 消费记录仓库，键 expenses_{userId}
type ExpenseStore struct {
	c *Collection[models.Expense]
}

// ExpensePatch 部分字段更新，nil 表示不修改
type ExpensePatch struct {
	Value       *float64
	Category    *string
	Date        *string
	Description *string
}

// List 按插入顺序列出用户的消费记录
func (s *ExpenseStore) List(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.c.List(ctx, userID)
}

// Add 新增消费记录
func (s *ExpenseStore) Add(ctx context.Context, userID string, e models.Expense) (models.Expense, error) {
	e.ID = ""
	e.UserID = userID
	return s.c.Add(ctx, userID, e)
}

// Update 合并部分字段，记录不存在时返回 ErrNotFound
func (s *ExpenseStore) Update(ctx context.Context, userID, id string, p ExpensePatch) (models.Expense, error) {
	e, ok, err := s.c.Update(ctx, userID, id, func(e *models.Expense) {
		if p.Value != nil {
			e.Value = *p.Value
		}
		if p.Category != nil {
			e.Category = *p.Category
		}
		if p.Date != nil {
			e.Date = *p.Date
		}
		if p.Description != nil {
			e.Description = *p.Description
		}
	})
	if err != nil {
		return e, err
	}
	if !ok {
		return e, ErrNotFound
	}
	return e, nil
}

// Delete 删除消费记录，记录不存在时返回 ErrNotFound
func (s *ExpenseStore) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.c.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Purge 删除用户全部消费记录
func (s *ExpenseStore) Purge(ctx context.Context, userID string) error {
	return s.c.Purge(ctx, userID)
}

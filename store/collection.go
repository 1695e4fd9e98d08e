package store

import (
	"context"

	"financeiro/storage"
)

// Collection 按用户划分的记录集合，键为 prefix + userID，
// 值为按插入顺序排列的完整 JSON 数组
type Collection[T any] struct {
	kv     storage.KV
	locks  *keyLocks
	prefix string
	newID  func() string
	id     func(*T) *string
}

func newCollection[T any](kv storage.KV, locks *keyLocks, prefix string, newID func() string, id func(*T) *string) *Collection[T] {
	return &Collection[T]{kv: kv, locks: locks, prefix: prefix, newID: newID, id: id}
}

// Key 用户集合所在的键
func (c *Collection[T]) Key(userID string) string {
	return c.prefix + userID
}

// List 按插入顺序返回集合，缺失或损坏时为空
func (c *Collection[T]) List(ctx context.Context, userID string) ([]T, error) {
	var items []T
	if _, err := readJSON(ctx, c.kv, c.Key(userID), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Add 分配 ID（未设置时）并追加到末尾
func (c *Collection[T]) Add(ctx context.Context, userID string, rec T) (T, error) {
	return c.AddIf(ctx, userID, rec, nil)
}

// AddIf 与 Add 相同，但先在键锁内用 check 校验现有集合，check 返回错误时不写入
func (c *Collection[T]) AddIf(ctx context.Context, userID string, rec T, check func(items []T) error) (T, error) {
	key := c.Key(userID)
	defer c.locks.lock(key)()

	items, err := c.List(ctx, userID)
	if err != nil {
		return rec, err
	}
	if check != nil {
		if err := check(items); err != nil {
			return rec, err
		}
	}
	if id := c.id(&rec); *id == "" {
		*id = c.newID()
	}
	items = append(items, rec)
	if err := writeJSON(ctx, c.kv, key, items); err != nil {
		return rec, err
	}
	return rec, nil
}

// Update 对匹配 ID 的记录应用 patch，记录不存在时不写入并返回 false
func (c *Collection[T]) Update(ctx context.Context, userID, id string, patch func(*T)) (T, bool, error) {
	var zero T
	key := c.Key(userID)
	defer c.locks.lock(key)()

	items, err := c.List(ctx, userID)
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		if *c.id(&items[i]) != id {
			continue
		}
		patch(&items[i])
		// ID 不允许被 patch 修改
		*c.id(&items[i]) = id
		if err := writeJSON(ctx, c.kv, key, items); err != nil {
			return zero, false, err
		}
		return items[i], true, nil
	}
	return zero, false, nil
}

// Delete 删除匹配 ID 的记录，其余记录保持原顺序
func (c *Collection[T]) Delete(ctx context.Context, userID, id string) (bool, error) {
	key := c.Key(userID)
	defer c.locks.lock(key)()

	items, err := c.List(ctx, userID)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	removed := false
	for _, item := range items {
		if *c.id(&item) == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return false, nil
	}
	if err := writeJSON(ctx, c.kv, key, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Purge 删除整个集合
func (c *Collection[T]) Purge(ctx context.Context, userID string) error {
	key := c.Key(userID)
	defer c.locks.lock(key)()
	return c.kv.Delete(ctx, key)
}

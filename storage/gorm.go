package storage

import (
	"context"
	"errors"
	"time"

	"financeiro/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKV 基于 gorm 的实现（生产环境 MySQL）
type GormKV struct {
	db *gorm.DB
}

// NewGormKV 使用已打开的 gorm 连接
func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := g.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (g *GormKV) Set(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	return wrap("set", key, err)
}

func (g *GormKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := g.db.WithContext(ctx).Where("storage_key IN ?", keys).Delete(&models.KVEntry{}).Error
	return wrap("delete", keys[0], err)
}

func (g *GormKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := g.db.WithContext(ctx).Model(&models.KVEntry{}).
		Where("storage_key LIKE ?", escapeLikeValue(prefix)+"%").
		Order("storage_key ASC").
		Pluck("storage_key", &keys).Error
	if err != nil {
		return nil, wrap("keys", prefix, err)
	}
	return keys, nil
}

func (g *GormKV) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

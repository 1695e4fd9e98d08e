package store

import (
	"context"

	"financeiro/models"
	"financeiro/storage"
)

// ActivityLog 管理员操作日志，键 admin_activities，最新的在前
type ActivityLog struct {
	kv    storage.KV
	locks *keyLocks
}

// List 最新的在前
func (l *ActivityLog) List(ctx context.Context) ([]models.UserActivity, error) {
	var list []models.UserActivity
	if _, err := readJSON(ctx, l.kv, KeyAdminActivities, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.UserActivity{}
	}
	return list, nil
}

// Prepend 插入到最前，超过 limit 的旧记录被丢弃（limit<=0 不截断）
func (l *ActivityLog) Prepend(ctx context.Context, a models.UserActivity, limit int) error {
	defer l.locks.lock(KeyAdminActivities)()

	list, err := l.List(ctx)
	if err != nil {
		return err
	}
	list = append([]models.UserActivity{a}, list...)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return writeJSON(ctx, l.kv, KeyAdminActivities, list)
}

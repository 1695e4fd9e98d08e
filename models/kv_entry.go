package models

import "time"

// KVEntry 键值存储表：每个键保存一个完整的 JSON 快照
type KVEntry struct {
	Key       string    `json:"key" gorm:"column:storage_key;primaryKey;size:191"`
	Value     string    `json:"value" gorm:"type:longtext;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (KVEntry) TableName() string {
	return "kv_entries"
}

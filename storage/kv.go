// Package storage 提供持久化键值空间。
//
// 每个键保存一个完整的 JSON 文档，写入是对单个键的原子替换，
// 不存在增量写或事务日志。上层的记录仓库以"整个集合"为单位读写。
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// KV 键值存储
type KV interface {
	// Get 读取键值，found=false 表示键不存在
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set 原子替换（upsert）
	Set(ctx context.Context, key string, value []byte) error
	// Delete 删除若干键，不存在的键忽略
	Delete(ctx context.Context, keys ...string) error
	// Keys 按前缀扫描键，升序返回；prefix 为空返回全部
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ErrUnknownDriver 未知的存储驱动
var ErrUnknownDriver = errors.New("未知的存储驱动")

// escapeLikeValue 转义 LIKE 查询中的通配符 % 和 _，前缀扫描按字面匹配
func escapeLikeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("storage %s %q: %w", op, key, err)
}

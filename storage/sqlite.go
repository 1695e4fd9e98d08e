package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// 纯 Go 的 sqlite 驱动
	_ "modernc.org/sqlite"
)

// SQLiteKV 单机 sqlite 实现
type SQLiteKV struct {
	conn *sql.DB
}

// NewSQLiteKV 打开 sqlite 文件并执行迁移
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败: %w", err)
	}
	// 单连接串行写，避免 database is locked
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("连接 sqlite 失败: %w", err)
	}

	kv := &SQLiteKV{conn: conn}
	if err := kv.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return kv, nil
}

func (s *SQLiteKV) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv_entries (
			storage_key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("sqlite 迁移失败: %w", err)
		}
	}
	return nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE storage_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv_entries (storage_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(storage_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now())
	return wrap("set", key, err)
}

func (s *SQLiteKV) Delete(ctx context.Context, keys ...string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return wrap("delete", "", err)
	}
	defer tx.Rollback()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE storage_key = ?`, k); err != nil {
			return wrap("delete", k, err)
		}
	}
	return wrap("delete", "", tx.Commit())
}

func (s *SQLiteKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT storage_key FROM kv_entries WHERE storage_key LIKE ? ESCAPE '\' ORDER BY storage_key ASC`,
		escapeLikeValue(prefix)+"%")
	if err != nil {
		return nil, wrap("keys", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, wrap("keys", prefix, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteKV) Close() error {
	return s.conn.Close()
}

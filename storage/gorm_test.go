package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockGormKV(t *testing.T) (*GormKV, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewGormKV(gormDB), mock, func() { sqlDB.Close() }
}

func TestGormKV_Get(t *testing.T) {
	kv, mock, cleanup := setupMockGormKV(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `kv_entries`").
		WithArgs("expenses_u1").
		WillReturnRows(sqlmock.NewRows([]string{"storage_key", "value", "updated_at"}).
			AddRow("expenses_u1", `[{"id":"1"}]`, time.Now()))

	v, found, err := kv.Get(context.Background(), "expenses_u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, string(v))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormKV_Get_NotFound(t *testing.T) {
	kv, mock, cleanup := setupMockGormKV(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `kv_entries`").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{}))

	_, found, err := kv.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormKV_Set_Upsert(t *testing.T) {
	kv, mock, cleanup := setupMockGormKV(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `kv_entries`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, kv.Set(context.Background(), "users", []byte(`[]`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormKV_Delete(t *testing.T) {
	kv, mock, cleanup := setupMockGormKV(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `kv_entries`").
		WithArgs("expenses_u1", "user_active_u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, kv.Delete(context.Background(), "expenses_u1", "user_active_u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormKV_Keys(t *testing.T) {
	kv, mock, cleanup := setupMockGormKV(t)
	defer cleanup()

	mock.ExpectQuery("SELECT `storage_key` FROM `kv_entries`").
		WithArgs(`financial\_profile\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"storage_key"}).
			AddRow("financial_profile_a").
			AddRow("financial_profile_b"))

	keys, err := kv.Keys(context.Background(), "financial_profile_")
	require.NoError(t, err)
	assert.Equal(t, []string{"financial_profile_a", "financial_profile_b"}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}

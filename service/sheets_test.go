package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"financeiro/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeCall struct {
	op   string
	rng  string
	rows [][]any
}

type fakeValues struct {
	mu    sync.Mutex
	calls []writeCall
	err   error
	done  chan struct{}
}

func (f *fakeValues) record(op, rng string, rows [][]any) error {
	f.mu.Lock()
	f.calls = append(f.calls, writeCall{op: op, rng: rng, rows: rows})
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func (f *fakeValues) Append(_ context.Context, rng string, rows [][]any) error {
	return f.record("append", rng, rows)
}

func (f *fakeValues) Update(_ context.Context, rng string, rows [][]any) error {
	return f.record("update", rng, rows)
}

func newTestSyncer() (*SheetsSyncer, *fakeValues) {
	f := &fakeValues{}
	return &SheetsSyncer{
		cfg: &config.SheetsConfig{
			Enabled:       true,
			SpreadsheetID: "sheet-id",
			UsersRange:    "Usuarios!A:H",
			ExpensesRange: "Gastos!A:H",
			Timeout:       time.Second,
		},
		values: f,
	}, f
}

func TestNewSheetsSyncer_Disabled(t *testing.T) {
	s, err := NewSheetsSyncer(context.Background(), &config.SheetsConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, s.Enabled())
	assert.ErrorIs(t, s.SyncUser(context.Background(), UserRow{}), ErrSheetsDisabled)
	assert.ErrorIs(t, s.SetupHeaders(context.Background()), ErrSheetsDisabled)

	// 禁用时异步调用直接返回
	s.SyncExpenseAsync(ExpenseRow{})
}

func TestNewSheetsSyncer_MissingCredentials(t *testing.T) {
	s, err := NewSheetsSyncer(context.Background(), &config.SheetsConfig{Enabled: true, SpreadsheetID: "x"})
	assert.Error(t, err)
	assert.False(t, s.Enabled())
}

func TestSyncExpense(t *testing.T) {
	s, f := newTestSyncer()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err := s.SyncExpense(context.Background(), ExpenseRow{
		UserID: "u1", UserName: "Ana", ExpenseID: "e1", Value: 12.5,
		Category: "lazer", Date: "2024-05-01", CreatedAt: created,
	})
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "append", f.calls[0].op)
	assert.Equal(t, "Gastos!A:H", f.calls[0].rng)
	assert.Equal(t, []any{"u1", "Ana", "e1", 12.5, "lazer", "2024-05-01", "", "2024-05-01T10:00:00Z"}, f.calls[0].rows[0])
}

func TestSyncUser(t *testing.T) {
	s, f := newTestSyncer()
	err := s.SyncUser(context.Background(), UserRow{UserID: "u1", Name: "Ana", Email: "ana@example.com", MonthlySalary: 5000, SavingsGoalPercentage: 10, TotalExpenses: 1200})
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "Usuarios!A:H", f.calls[0].rng)
	assert.Len(t, f.calls[0].rows[0], 8)
}

func TestSync_ErrorIsWrapped(t *testing.T) {
	s, f := newTestSyncer()
	f.err = errors.New("quota exceeded")
	err := s.SyncUser(context.Background(), UserRow{})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestSetupHeaders(t *testing.T) {
	s, f := newTestSyncer()
	require.NoError(t, s.SetupHeaders(context.Background()))
	require.Len(t, f.calls, 2)
	assert.Equal(t, "Usuarios!A1:H1", f.calls[0].rng)
	assert.Equal(t, "Gastos!A1:H1", f.calls[1].rng)
	assert.Equal(t, "ID do Usuário", f.calls[0].rows[0][0])
	assert.Equal(t, "Criado em", f.calls[1].rows[0][7])
}

func TestHeaderRange(t *testing.T) {
	assert.Equal(t, "Usuarios!A1:H1", headerRange("Usuarios!A:H"))
	assert.Equal(t, "Gastos!A1:H1", headerRange("Gastos!A2:H"))
	assert.Equal(t, "Plan!A1", headerRange("Plan!A"))
	assert.Equal(t, "Plan!A1:H1", headerRange("Plan"))
}

func TestSyncExpenseAsync(t *testing.T) {
	s, f := newTestSyncer()
	f.done = make(chan struct{}, 1)
	f.err = errors.New("network down")

	s.SyncExpenseAsync(ExpenseRow{UserID: "u1"})
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("同步未执行")
	}
}

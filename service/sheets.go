package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"financeiro/config"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputRaw 按原样写入，不做公式解析
const valueInputRaw = "RAW"

var (
	// 用户表头
	userHeaders = []any{"ID do Usuário", "Nome", "Email", "Salário Mensal", "Reserva Emergência", "Meta Economia (%)", "Total Gastos", "Última Atualização"}
	// 消费表头
	expenseHeaders = []any{"ID do Usuário", "Nome do Usuário", "ID do Gasto", "Valor", "Categoria", "Data", "Descrição", "Criado em"}
)

// ErrSheetsDisabled 表格同步未配置
var ErrSheetsDisabled = errors.New("表格同步未配置")

// UserRow 同步到"Usuarios"表的一行
type UserRow struct {
	UserID                string
	Name                  string
	Email                 string
	MonthlySalary         float64
	EmergencyFund         float64
	SavingsGoalPercentage int
	TotalExpenses         float64
	LastUpdated           time.Time
}

func (r UserRow) values() []any {
	return []any{r.UserID, r.Name, r.Email, r.MonthlySalary, r.EmergencyFund, r.SavingsGoalPercentage, r.TotalExpenses, r.LastUpdated.UTC().Format(time.RFC3339)}
}

// ExpenseRow 同步到"Gastos"表的一行
type ExpenseRow struct {
	UserID      string
	UserName    string
	ExpenseID   string
	Value       float64
	Category    string
	Date        string
	Description string
	CreatedAt   time.Time
}

func (r ExpenseRow) values() []any {
	return []any{r.UserID, r.UserName, r.ExpenseID, r.Value, r.Category, r.Date, r.Description, r.CreatedAt.UTC().Format(time.RFC3339)}
}

// valuesWriter 表格写入端口
type valuesWriter interface {
	Append(ctx context.Context, rng string, rows [][]any) error
	Update(ctx context.Context, rng string, rows [][]any) error
}

// googleValues 基于 Sheets API v4 的实现
type googleValues struct {
	svc           *sheets.Service
	spreadsheetID string
}

func (g *googleValues) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	return err
}

func (g *googleValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	return err
}

// SheetsSyncer 把用户和消费数据追加到 Google 表格。
// 同步是尽力而为：失败只记录日志，不影响本地数据和接口响应
type SheetsSyncer struct {
	cfg    *config.SheetsConfig
	values valuesWriter
}

// NewSheetsSyncer 创建表格同步服务，未启用或未配置时返回一个禁用的实例
func NewSheetsSyncer(ctx context.Context, cfg *config.SheetsConfig) (*SheetsSyncer, error) {
	s := &SheetsSyncer{cfg: cfg}
	if !cfg.Enabled || strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return s, nil
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return s, err
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return s, fmt.Errorf("创建 Sheets 服务失败: %w", err)
	}
	s.values = &googleValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}
	return s, nil
}

// loadCredentials 优先使用内联 JSON，其次读取凭据文件
func loadCredentials(cfg *config.SheetsConfig) ([]byte, error) {
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	if cfg.CredentialsFile == "" {
		return nil, errors.New("缺少服务账号凭据 (sheets.credentials_json 或 sheets.credentials_file)")
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("读取凭据文件失败: %w", err)
	}
	return data, nil
}

// Enabled 是否已配置
func (s *SheetsSyncer) Enabled() bool {
	return s != nil && s.values != nil
}

// SyncUser 追加一行用户数据
func (s *SheetsSyncer) SyncUser(ctx context.Context, row UserRow) error {
	if !s.Enabled() {
		return ErrSheetsDisabled
	}
	if err := s.values.Append(ctx, s.cfg.UsersRange, [][]any{row.values()}); err != nil {
		return fmt.Errorf("同步用户数据失败: %w", err)
	}
	return nil
}

// SyncExpense 追加一行消费数据
func (s *SheetsSyncer) SyncExpense(ctx context.Context, row ExpenseRow) error {
	if !s.Enabled() {
		return ErrSheetsDisabled
	}
	if err := s.values.Append(ctx, s.cfg.ExpensesRange, [][]any{row.values()}); err != nil {
		return fmt.Errorf("同步消费数据失败: %w", err)
	}
	return nil
}

// SetupHeaders 写入两张表的表头行
func (s *SheetsSyncer) SetupHeaders(ctx context.Context) error {
	if !s.Enabled() {
		return ErrSheetsDisabled
	}
	if err := s.values.Update(ctx, headerRange(s.cfg.UsersRange), [][]any{userHeaders}); err != nil {
		return fmt.Errorf("写入用户表头失败: %w", err)
	}
	if err := s.values.Update(ctx, headerRange(s.cfg.ExpensesRange), [][]any{expenseHeaders}); err != nil {
		return fmt.Errorf("写入消费表头失败: %w", err)
	}
	return nil
}

// headerRange "Usuarios!A:H" -> "Usuarios!A1:H1"
func headerRange(rng string) string {
	sheet, cols, ok := strings.Cut(rng, "!")
	if !ok {
		return rng + "!A1:H1"
	}
	from, to, ok := strings.Cut(cols, ":")
	if !ok {
		return sheet + "!" + cols + "1"
	}
	return sheet + "!" + strings.TrimRight(from, "0123456789") + "1:" + strings.TrimRight(to, "0123456789") + "1"
}

// SyncUserAsync 后台同步用户数据，不等待结果
func (s *SheetsSyncer) SyncUserAsync(row UserRow) {
	s.goAsync("用户", func(ctx context.Context) error { return s.SyncUser(ctx, row) })
}

// SyncExpenseAsync 后台同步消费数据，不等待结果
func (s *SheetsSyncer) SyncExpenseAsync(row ExpenseRow) {
	s.goAsync("消费", func(ctx context.Context) error { return s.SyncExpense(ctx, row) })
}

func (s *SheetsSyncer) goAsync(what string, fn func(ctx context.Context) error) {
	if !s.Enabled() {
		return
	}
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("警告: %s数据同步到表格失败: %v", what, err)
		}
	}()
}

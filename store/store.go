// Package store 在键值空间之上实现各类记录仓库。
//
// 每个集合都保存在单个键下，写入时整体替换。进程内通过按键加锁
// 避免并发请求交错执行"读-改-写"，跨进程则是后写者胜出。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"financeiro/models"
	"financeiro/storage"
)

// 键空间（对外契约，与已有数据兼容）
const (
	KeyCurrentUser     = "currentUser"
	KeyUsers           = "users"
	KeyAdminActivities = "admin_activities"

	PrefixProfile       = "financial_profile_"
	PrefixExpenses      = "expenses_"
	PrefixContributions = "emergency_contributions_"
	PrefixActive        = "user_active_"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicateEmail 邮箱已注册
	ErrDuplicateEmail = errors.New("邮箱已注册")
	// ErrInsufficientFunds 取出金额超过应急金余额
	ErrInsufficientFunds = errors.New("应急金余额不足")
)

// UserKeys 返回某个用户名下的全部命名空间键
func UserKeys(userID string) []string {
	return []string{
		PrefixProfile + userID,
		PrefixExpenses + userID,
		PrefixContributions + userID,
		PrefixActive + userID,
	}
}

// NewID 生成按时间有序的记录 ID（UUIDv7）
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// keyLocks 按键加锁
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]*sync.Mutex)}
}

func (l *keyLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.m[key]
	if !ok {
		m = &sync.Mutex{}
		l.m[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// readJSON 读取并解析键值。键不存在或数据损坏时返回 found=false，
// 损坏的数据只记录日志，不向上传播
func readJSON(ctx context.Context, kv storage.KV, key string, dst any) (bool, error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("警告: 键 %s 的数据无法解析，按空值处理: %v", key, err)
		return false, nil
	}
	return true, nil
}

func writeJSON(ctx context.Context, kv storage.KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, raw)
}

// Option 仓库选项
type Option func(*Stores)

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Stores) {
		s.now = now
	}
}

// WithIDGenerator 注入 ID 生成器（测试用）
func WithIDGenerator(gen func() string) Option {
	return func(s *Stores) {
		s.newID = gen
	}
}

// Stores 应用状态的全部仓库，由 main 构造后显式传入各处理器
type Stores struct {
	KV            storage.KV
	Users         *UserStore
	Session       *SessionStore
	Active        *ActiveFlags
	Profiles      *ProfileStore
	Expenses      *ExpenseStore
	Contributions *ContributionStore
	Activities    *ActivityLog

	now   func() time.Time
	newID func() string
}

// New 在给定键值存储上构造全部仓库
func New(kv storage.KV, opts ...Option) *Stores {
	s := &Stores{
		KV:    kv,
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}

	locks := newKeyLocks()
	s.Users = &UserStore{kv: kv, locks: locks, now: s.now, newID: s.newID}
	s.Session = &SessionStore{kv: kv}
	s.Active = &ActiveFlags{kv: kv}
	s.Activities = &ActivityLog{kv: kv, locks: locks}
	s.Expenses = &ExpenseStore{c: newCollection(kv, locks, PrefixExpenses, s.newID,
		func(e *models.Expense) *string { return &e.ID })}
	s.Contributions = &ContributionStore{c: newCollection(kv, locks, PrefixContributions, s.newID,
		func(c *models.EmergencyFundContribution) *string { return &c.ID })}
	s.Profiles = &ProfileStore{kv: kv, locks: locks, contributions: s.Contributions}
	s.Contributions.profiles = s.Profiles
	return s
}

// Now 当前时间（使用注入的时钟）
func (s *Stores) Now() time.Time {
	return s.now()
}

// PurgeUser 删除用户名下的四个命名空间键
func (s *Stores) PurgeUser(ctx context.Context, userID string) error {
	return s.KV.Delete(ctx, UserKeys(userID)...)
}

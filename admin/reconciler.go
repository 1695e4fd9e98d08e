// Package admin 实现后台用户管理：重建用户列表、启用/停用、删除和操作日志。
//
// 用户注册表（users 键）是权威来源；只存在 financial_profile_{id} 等零散键、
// 不在注册表中的用户也会被列出，并标记为 DiscoveredOnly。
package admin

import (
	"context"
	"errors"
	"log"

	"financeiro/models"
	"financeiro/report"
	"financeiro/store"
)

// ActivityLimit 操作日志最多保留的条数
const ActivityLimit = 100

var (
	// ErrProtectedUser 管理员账号不能被停用或删除
	ErrProtectedUser = errors.New("管理员账号不能被修改")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("用户不存在")
	// ErrInvalidStatus 未知的状态过滤值
	ErrInvalidStatus = errors.New("未知的状态过滤值")
)

// 用户列表状态过滤值
const (
	StatusAll      = "todos"
	StatusActive   = "ativos"
	StatusInactive = "inativos"
)

// Notifier 账号状态通知（邮件），尽力而为
type Notifier interface {
	Enabled() bool
	SendAccountStatusEmail(toEmail, name string, active bool) error
	SendAccountDeletedEmail(toEmail, name string) error
}

// Reconciler 后台用户管理
type Reconciler struct {
	stores   *store.Stores
	notifier Notifier
}

// NewReconciler 创建用户管理器，notifier 可以为 nil
func NewReconciler(stores *store.Stores, notifier Notifier) *Reconciler {
	return &Reconciler{stores: stores, notifier: notifier}
}

// ListUsers 注册表用户在前（保持注册顺序），其后是只出现在会话中的用户，
// 最后是只由 financial_profile_{id} 键推断出的用户
func (r *Reconciler) ListUsers(ctx context.Context) ([]models.UserManagement, error) {
	registry, err := r.stores.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(registry))
	out := make([]models.UserManagement, 0, len(registry))
	add := func(u models.User, discovered bool) error {
		if u.ID == "" || u.ID == models.AdminUserID || seen[u.ID] {
			return nil
		}
		seen[u.ID] = true
		m, err := r.build(ctx, u, discovered)
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	}

	for _, u := range registry {
		if err := add(u, false); err != nil {
			return nil, err
		}
	}

	session, err := r.stores.Session.Get(ctx)
	if err != nil {
		return nil, err
	}
	if session != nil {
		if err := add(*session, true); err != nil {
			return nil, err
		}
	}

	ids, err := r.stores.Profiles.UserIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := add(r.placeholder(id), true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListUsersByStatus 按状态过滤用户列表，计数始终基于完整列表。
// status 为空时等同于 StatusAll
func (r *Reconciler) ListUsersByStatus(ctx context.Context, status string) (models.UserList, error) {
	var keep func(models.UserManagement) bool
	switch status {
	case "", StatusAll:
		keep = func(models.UserManagement) bool { return true }
	case StatusActive:
		keep = func(u models.UserManagement) bool { return u.IsActive }
	case StatusInactive:
		keep = func(u models.UserManagement) bool { return !u.IsActive }
	default:
		return models.UserList{}, ErrInvalidStatus
	}

	all, err := r.ListUsers(ctx)
	if err != nil {
		return models.UserList{}, err
	}
	out := models.UserList{Users: make([]models.UserManagement, 0, len(all))}
	for _, u := range all {
		if keep(u) {
			out.Users = append(out.Users, u)
		}
	}
	out.Stats = CountUsers(all)
	return out, nil
}

// CountUsers 统计启用与停用人数
func CountUsers(users []models.UserManagement) models.UserStats {
	stats := models.UserStats{Total: len(users)}
	for _, u := range users {
		if u.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats
}

// placeholder 只有数据键的用户：邮箱 N/A，名称取 ID 前 8 位
func (r *Reconciler) placeholder(id string) models.User {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return models.User{
		ID:        id,
		Email:     "N/A",
		Name:      "Usuário " + short,
		CreatedAt: r.stores.Now(),
		IsActive:  true,
	}
}

// build 拼装单个用户的管理视图
func (r *Reconciler) build(ctx context.Context, u models.User, discovered bool) (models.UserManagement, error) {
	profile, err := r.stores.Profiles.Find(ctx, u.ID)
	if err != nil {
		return models.UserManagement{}, err
	}
	expenses, err := r.stores.Expenses.List(ctx, u.ID)
	if err != nil {
		return models.UserManagement{}, err
	}
	balance, err := r.stores.Contributions.Balance(ctx, u.ID)
	if err != nil {
		return models.UserManagement{}, err
	}
	active, err := r.isActive(ctx, u, discovered)
	if err != nil {
		return models.UserManagement{}, err
	}

	var total float64
	for _, e := range expenses {
		total += e.Value
	}

	email := u.Email
	if email == "" {
		email = "N/A"
	}
	name := u.Name
	if name == "" {
		name = "Usuário"
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.stores.Now()
	}

	return models.UserManagement{
		ID:                   u.ID,
		Email:                email,
		Name:                 name,
		IsActive:             active,
		CreatedAt:            createdAt,
		LastLogin:            u.LastLogin,
		FinancialProfile:     profile,
		TotalExpenses:        total,
		ExpenseCount:         len(expenses),
		EmergencyFundBalance: balance,
		DiscoveredOnly:       discovered,
	}, nil
}

// isActive 启用标记为准；注册表中的用户还需注册表状态为启用
func (r *Reconciler) isActive(ctx context.Context, u models.User, discovered bool) (bool, error) {
	flag, err := r.stores.Active.IsActive(ctx, u.ID)
	if err != nil {
		return false, err
	}
	if discovered {
		return flag, nil
	}
	return flag && u.IsActive, nil
}

// find 在重建后的列表中查找用户
func (r *Reconciler) find(ctx context.Context, userID string) (models.UserManagement, error) {
	if userID == models.AdminUserID {
		return models.UserManagement{}, ErrProtectedUser
	}
	users, err := r.ListUsers(ctx)
	if err != nil {
		return models.UserManagement{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.UserManagement{}, ErrUserNotFound
}

// ToggleStatus 切换启用状态，同步写入注册表并记录日志，返回刷新后的列表
func (r *Reconciler) ToggleStatus(ctx context.Context, userID string) ([]models.UserManagement, error) {
	u, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := !u.IsActive

	if err := r.stores.Active.Set(ctx, userID, active); err != nil {
		return nil, err
	}
	if !u.DiscoveredOnly {
		_, err := r.stores.Users.Update(ctx, userID, func(m *models.User) { m.IsActive = active })
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	action := models.ActivityUserDeactivated
	if active {
		action = models.ActivityUserActivated
	}
	if err := r.logActivity(ctx, userID, action, u.Email); err != nil {
		return nil, err
	}

	r.notify(u, func(n Notifier) error { return n.SendAccountStatusEmail(u.Email, u.Name, active) })
	return r.ListUsers(ctx)
}

// DeleteUser 删除用户的四个命名空间键和注册表记录，会话属于该用户时一并清除。
// 删除不可恢复
func (r *Reconciler) DeleteUser(ctx context.Context, userID string) ([]models.UserManagement, error) {
	u, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := r.stores.PurgeUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := r.stores.Users.Remove(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := r.stores.Session.ClearIf(ctx, userID); err != nil {
		return nil, err
	}
	if err := r.logActivity(ctx, userID, models.ActivityUserDeleted, u.Email); err != nil {
		return nil, err
	}

	r.notify(u, func(n Notifier) error { return n.SendAccountDeletedEmail(u.Email, u.Name) })
	return r.ListUsers(ctx)
}

// Activities 操作日志，最新的在前
func (r *Reconciler) Activities(ctx context.Context) ([]models.UserActivity, error) {
	return r.stores.Activities.List(ctx)
}

// UserDashboard 管理员查看某个用户的仪表盘
func (r *Reconciler) UserDashboard(ctx context.Context, userID string) (report.Dashboard, error) {
	if _, err := r.find(ctx, userID); err != nil {
		return report.Dashboard{}, err
	}
	expenses, err := r.stores.Expenses.List(ctx, userID)
	if err != nil {
		return report.Dashboard{}, err
	}
	profile, err := r.stores.Profiles.Get(ctx, userID)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.Build(report.Snapshot{Expenses: expenses, Profile: profile}, r.stores.Now()), nil
}

func (r *Reconciler) logActivity(ctx context.Context, userID, action, details string) error {
	return r.stores.Activities.Prepend(ctx, models.UserActivity{
		UserID:    userID,
		Action:    action,
		Timestamp: r.stores.Now(),
		Details:   details,
	}, ActivityLimit)
}

// notify 后台发送通知邮件，只对有真实邮箱的用户发送
func (r *Reconciler) notify(u models.UserManagement, send func(Notifier) error) {
	if r.notifier == nil || !r.notifier.Enabled() || u.DiscoveredOnly || u.Email == "" || u.Email == "N/A" {
		return
	}
	go func() {
		if err := send(r.notifier); err != nil {
			log.Printf("警告: 向 %s 发送通知失败: %v", u.Email, err)
		}
	}()
}

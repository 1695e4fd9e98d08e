package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"financeiro/config"
	"financeiro/models"
	"financeiro/store"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 6

// 返回给用户的提示（葡语界面）
const (
	MsgInvalidCredentials = "Email ou senha incorretos"
	MsgAccountDisabled    = "Sua conta foi desativada. Entre em contato com o administrador."
	MsgEmailReserved      = "Este email não pode ser usado para registro"
	MsgEmailTaken         = "Este email já está cadastrado"
	MsgMissingFields      = "Preencha todos os campos"
	MsgPasswordTooShort   = "A senha deve ter pelo menos 6 caracteres"
	MsgRegistered         = "Conta criada com sucesso"
)

var (
	// ErrWrongPassword 原密码错误
	ErrWrongPassword = errors.New("原密码错误")
	// ErrPasswordTooShort 新密码过短
	ErrPasswordTooShort = errors.New("密码长度不足")
)

// AuthResult 认证结果：业务失败通过 Success=false 和 Message 返回，不作为 error
type AuthResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	IsAdmin bool         `json:"isAdmin"`
	User    *models.User `json:"user,omitempty"`
}

func fail(msg string) AuthResult {
	return AuthResult{Success: false, Message: msg}
}

// AuthService 注册、登录、登出
type AuthService struct {
	stores    *store.Stores
	admin     models.User
	adminHash []byte
	cost      int
}

// NewAuthService 创建认证服务。管理员只配置了明文密码时在此计算哈希；
// 两者都未配置时管理员登录被禁用
func NewAuthService(stores *store.Stores, cfg *config.AdminConfig) (*AuthService, error) {
	s := &AuthService{
		stores: stores,
		admin: models.User{
			ID:       models.AdminUserID,
			Email:    models.NormalizeEmail(cfg.Email),
			Name:     cfg.Name,
			IsActive: true,
			IsAdmin:  true,
		},
		cost: bcrypt.DefaultCost,
	}

	switch {
	case cfg.PasswordHash != "":
		s.adminHash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("管理员密码加密失败: %w", err)
		}
		s.adminHash = hash
	default:
		log.Println("警告: 未配置管理员密码 (admin.password / admin.password_hash)，管理员登录已禁用")
	}
	return s, nil
}

// AdminUser 管理员账号（不含密码哈希）
func (s *AuthService) AdminUser() models.User {
	return s.admin
}

func (s *AuthService) isAdminEmail(email string) bool {
	return s.admin.Email != "" && models.NormalizeEmail(email) == s.admin.Email
}

// Register 注册新用户，默认启用
func (s *AuthService) Register(ctx context.Context, email, password, name string) (AuthResult, error) {
	email = models.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return fail(MsgMissingFields), nil
	}
	if s.isAdminEmail(email) {
		return fail(MsgEmailReserved), nil
	}
	if len(password) < MinPasswordLength {
		return fail(MsgPasswordTooShort), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("密码加密失败: %w", err)
	}

	user, err := s.stores.Users.Create(ctx, models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return fail(MsgEmailTaken), nil
	}
	if err != nil {
		return AuthResult{}, err
	}

	u := user.Sanitized()
	return AuthResult{Success: true, Message: MsgRegistered, User: &u}, nil
}

// Login 登录。管理员账号走快速通道，不查注册表
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if s.isAdminEmail(email) && s.adminHash != nil {
		if bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) != nil {
			return fail(MsgInvalidCredentials), nil
		}
		admin := s.admin
		now := s.stores.Now()
		admin.CreatedAt = now
		admin.LastLogin = &now
		if err := s.stores.Session.Set(ctx, admin); err != nil {
			return AuthResult{}, err
		}
		return AuthResult{Success: true, IsAdmin: true, User: &admin}, nil
	}

	user, found, err := s.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return fail(MsgInvalidCredentials), nil
	}

	active, err := s.IsActive(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	if !active {
		return fail(MsgAccountDisabled), nil
	}

	now := s.stores.Now()
	user, err = s.stores.Users.Update(ctx, user.ID, func(u *models.User) {
		u.LastLogin = &now
	})
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.stores.Session.Set(ctx, user); err != nil {
		return AuthResult{}, err
	}

	u := user.Sanitized()
	return AuthResult{Success: true, IsAdmin: false, User: &u}, nil
}

// Logout 会话属于该用户时清除
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	_, err := s.stores.Session.ClearIf(ctx, userID)
	return err
}

// IsActive 用户是否可用：启用标记和注册表状态都必须为启用，
// 不在注册表中的 ID（已删除或仅从数据键发现）视为不可用。管理员始终可用
func (s *AuthService) IsActive(ctx context.Context, userID string) (bool, error) {
	if userID == models.AdminUserID {
		return true, nil
	}
	flag, err := s.stores.Active.IsActive(ctx, userID)
	if err != nil || !flag {
		return false, err
	}
	user, found, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return found && user.IsActive, nil
}

// Profile 当前用户信息（不含密码哈希）
func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	if userID == models.AdminUserID {
		return s.admin, nil
	}
	user, found, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, store.ErrNotFound
	}
	return user.Sanitized(), nil
}

// ChangePassword 修改密码，需校验原密码
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	user, found, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return store.ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	_, err = s.stores.Users.Update(ctx, userID, func(u *models.User) {
		u.PasswordHash = string(hash)
	})
	return err
}

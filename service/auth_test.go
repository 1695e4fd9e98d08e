package service

import (
	"context"
	"testing"
	"time"

	"financeiro/config"
	"financeiro/models"
	"financeiro/storage"
	"financeiro/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestAuth(t *testing.T) (*AuthService, *store.Stores) {
	t.Helper()
	stores := store.New(storage.NewMemoryKV(), store.WithClock(func() time.Time { return testNow }))
	s, err := NewAuthService(stores, &config.AdminConfig{
		Email:    "Admin@Financeiro.com",
		Name:     "Administrador",
		Password: "admin123",
	})
	require.NoError(t, err)
	s.cost = bcrypt.MinCost
	return s, stores
}

func TestRegister(t *testing.T) {
	s, stores := newTestAuth(t)
	ctx := context.Background()

	res, err := s.Register(ctx, " Ana@Example.com ", "segredo1", "Ana")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
	assert.True(t, res.User.IsActive)
	assert.False(t, res.User.IsAdmin)

	// 不保存明文密码
	stored, found, err := stores.Users.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, "segredo1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("segredo1")))

	res, err = s.Register(ctx, "ANA@example.com", "outra123", "Ana 2")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgEmailTaken, res.Message)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestAuth(t)
	ctx := context.Background()

	cases := []struct {
		email, password, name, msg string
	}{
		{"admin@financeiro.com", "segredo1", "X", MsgEmailReserved},
		{"", "segredo1", "X", MsgMissingFields},
		{"a@b.c", "", "X", MsgMissingFields},
		{"a@b.c", "segredo1", "  ", MsgMissingFields},
		{"a@b.c", "12345", "X", MsgPasswordTooShort},
	}
	for _, tc := range cases {
		res, err := s.Register(ctx, tc.email, tc.password, tc.name)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, tc.msg, res.Message)
	}
}

func TestLogin_Admin(t *testing.T) {
	s, stores := newTestAuth(t)
	ctx := context.Background()

	res, err := s.Login(ctx, "admin@financeiro.com", "admin123")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, res.IsAdmin)
	assert.Equal(t, models.AdminUserID, res.User.ID)

	session, _ := stores.Session.Get(ctx)
	require.NotNil(t, session)
	assert.Equal(t, models.AdminUserID, session.ID)

	res, err = s.Login(ctx, "admin@financeiro.com", "errada")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidCredentials, res.Message)
}

func TestLogin_AdminWithConfiguredHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	require.NoError(t, err)
	stores := store.New(storage.NewMemoryKV())
	s, err := NewAuthService(stores, &config.AdminConfig{Email: "root@x.com", PasswordHash: string(hash)})
	require.NoError(t, err)

	res, err := s.Login(context.Background(), "ROOT@x.com", "s3nha")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
}

func TestLogin_AdminDisabledWithoutPassword(t *testing.T) {
	stores := store.New(storage.NewMemoryKV())
	s, err := NewAuthService(stores, &config.AdminConfig{Email: "admin@financeiro.com"})
	require.NoError(t, err)

	res, err := s.Login(context.Background(), "admin@financeiro.com", "")
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestLogin_User(t *testing.T) {
	s, stores := newTestAuth(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "segredo1", "Ana")
	require.NoError(t, err)

	res, err := s.Login(ctx, "ana@example.com", "errada1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidCredentials, res.Message)

	res, err = s.Login(ctx, "nobody@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidCredentials, res.Message)

	res, err = s.Login(ctx, "ANA@example.com", "segredo1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.False(t, res.IsAdmin)
	require.NotNil(t, res.User.LastLogin)
	assert.Equal(t, testNow, *res.User.LastLogin)
	assert.Empty(t, res.User.PasswordHash)

	session, _ := stores.Session.Get(ctx)
	require.NotNil(t, session)
	assert.Equal(t, reg.User.ID, session.ID)

	require.NoError(t, s.Logout(ctx, reg.User.ID))
	session, _ = stores.Session.Get(ctx)
	assert.Nil(t, session)
}

func TestLogin_Deactivated(t *testing.T) {
	s, stores := newTestAuth(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "segredo1", "Ana")
	require.NoError(t, err)

	require.NoError(t, stores.Active.Set(ctx, reg.User.ID, false))
	res, err := s.Login(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgAccountDisabled, res.Message)

	require.NoError(t, stores.Active.Set(ctx, reg.User.ID, true))
	res, err = s.Login(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	active, err := s.IsActive(ctx, models.AdminUserID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestIsActive_RequiresRegistryEntry(t *testing.T) {
	s, stores := newTestAuth(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "segredo1", "Ana")
	require.NoError(t, err)
	id := reg.User.ID

	active, err := s.IsActive(ctx, id)
	require.NoError(t, err)
	assert.True(t, active)

	// 只有数据键、从未注册的 ID
	active, err = s.IsActive(ctx, "legacy-user")
	require.NoError(t, err)
	assert.False(t, active)

	// 从注册表移除后，即使启用标记仍在也不可用
	removed, err := stores.Users.Remove(ctx, id)
	require.NoError(t, err)
	require.True(t, removed)
	active, err = s.IsActive(ctx, id)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestChangePassword(t *testing.T) {
	s, _ := newTestAuth(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "segredo1", "Ana")
	require.NoError(t, err)
	id := reg.User.ID

	assert.ErrorIs(t, s.ChangePassword(ctx, id, "errada", "novasenha"), ErrWrongPassword)
	assert.ErrorIs(t, s.ChangePassword(ctx, id, "segredo1", "123"), ErrPasswordTooShort)
	assert.ErrorIs(t, s.ChangePassword(ctx, "missing", "segredo1", "novasenha"), store.ErrNotFound)
	require.NoError(t, s.ChangePassword(ctx, id, "segredo1", "novasenha"))

	res, _ := s.Login(ctx, "ana@example.com", "novasenha")
	assert.True(t, res.Success)
}

func TestProfile(t *testing.T) {
	s, _ := newTestAuth(t)
	ctx := context.Background()

	admin, err := s.Profile(ctx, models.AdminUserID)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	_, err = s.Profile(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

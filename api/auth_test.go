package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financeiro/config"
	"financeiro/middleware"
	"financeiro/service"
	"financeiro/storage"
	"financeiro/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminEmail    = "admin@financeiro.app"
	testAdminPassword = "admin123"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	cfg    *config.Config
	stores *store.Stores
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seq := 0
	stores := store.New(storage.NewMemoryKV(),
		store.WithClock(func() time.Time { return testNow }),
		store.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}))

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Admin: config.AdminConfig{
			Email:    testAdminEmail,
			Name:     "Administrador",
			Password: testAdminPassword,
		},
	}
	middleware.InitJWT(cfg)

	auth, err := service.NewAuthService(stores, &cfg.Admin)
	require.NoError(t, err)
	return &testEnv{cfg: cfg, stores: stores, auth: auth}
}

// register 通过服务层注册用户，返回用户 ID
func (e *testEnv) register(t *testing.T, email, name string) string {
	t.Helper()
	res, err := e.auth.Register(context.Background(), email, "segredo123", name)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return res.User.ID
}

func setUserIDMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	router := gin.New()
	router.POST("/register", NewAuthHandler(env.cfg, env.auth).Register)

	w := doJSON(router, "POST", "/register", `{"email":"Ana@Example.com","password":"segredo123","name":"Ana"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, service.MsgRegistered, resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", data["email"])
	assert.Equal(t, true, data["isActive"])
	assert.NotContains(t, data, "passwordHash")

	w = doJSON(router, "POST", "/register", `{"email":"ana@example.com","password":"outra123","name":"Ana 2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgEmailTaken, decode(t, w)["message"])
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	router := gin.New()
	router.POST("/register", NewAuthHandler(env.cfg, env.auth).Register)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"缺少字段", `{"email":"a@b.com","password":"segredo123"}`, service.MsgMissingFields},
		{"管理员邮箱", `{"email":"ADMIN@financeiro.app","password":"segredo123","name":"X"}`, service.MsgEmailReserved},
		{"密码过短", `{"email":"a@b.com","password":"123","name":"X"}`, service.MsgPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, decode(t, w)["message"])
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "ana@example.com", "Ana")

	router := gin.New()
	router.POST("/login", NewAuthHandler(env.cfg, env.auth).Login)

	w := doJSON(router, "POST", "/login", `{"email":"ana@example.com","password":"segredo123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["isAdmin"])

	claims, err := middleware.ParseToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.False(t, claims.IsAdmin)

	session, err := env.stores.Session.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, id, session.ID)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "ana@example.com", "Ana")
	require.NoError(t, env.stores.Active.Set(context.Background(), id, false))

	router := gin.New()
	router.POST("/login", NewAuthHandler(env.cfg, env.auth).Login)

	w := doJSON(router, "POST", "/login", `{"email":"ana@example.com","password":"errada"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.MsgInvalidCredentials, decode(t, w)["message"])

	w = doJSON(router, "POST", "/login", `{"email":"ana@example.com","password":"segredo123"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, service.MsgAccountDisabled, decode(t, w)["message"])

	w = doJSON(router, "POST", "/login", `{"email":"ana@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_Admin(t *testing.T) {
	env := newTestEnv(t)
	router := gin.New()
	router.POST("/login", NewAuthHandler(env.cfg, env.auth).Login)

	w := doJSON(router, "POST", "/login", fmt.Sprintf(`{"email":%q,"password":%q}`, testAdminEmail, testAdminPassword))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["isAdmin"])

	claims, err := middleware.ParseToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestAuthHandler_ProfileAndPassword(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "ana@example.com", "Ana")
	h := NewAuthHandler(env.cfg, env.auth)

	router := gin.New()
	router.Use(setUserIDMiddleware(id))
	router.GET("/profile", h.GetProfile)
	router.PUT("/password", h.ChangePassword)
	router.POST("/logout", h.Logout)

	w := doJSON(router, "GET", "/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decode(t, w)["data"].(map[string]interface{})["name"])

	w = doJSON(router, "PUT", "/password", `{"old_password":"errada","new_password":"novasenha"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "PUT", "/password", `{"old_password":"segredo123","new_password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "PUT", "/password", `{"old_password":"segredo123","new_password":"novasenha"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	res, err := env.auth.Login(context.Background(), "ana@example.com", "novasenha")
	require.NoError(t, err)
	assert.True(t, res.Success)

	w = doJSON(router, "POST", "/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sessão encerrada", decode(t, w)["message"])
	session, err := env.stores.Session.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financeiro/admin"
	"financeiro/config"
	"financeiro/middleware"
	"financeiro/service"
	"financeiro/storage"
	"financeiro/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: "router-test", ExpireTime: time.Hour},
		Admin:  config.AdminConfig{Email: "admin@financeiro.com", Name: "Administrador", Password: "admin123"},
		RateLimit: config.RateLimitConfig{
			LoginAttempts: 100,
			LoginWindow:   time.Minute,
		},
	}
	middleware.InitJWT(cfg)

	stores := store.New(storage.NewMemoryKV())
	auth, err := service.NewAuthService(stores, &cfg.Admin)
	require.NoError(t, err)

	return SetupRouter(Deps{
		Config:     cfg,
		Stores:     stores,
		Auth:       auth,
		Reconciler: admin.NewReconciler(stores, nil),
	})
}

func call(r http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	w, resp := call(r, "POST", "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return resp["data"].(map[string]interface{})["token"].(string)
}

func TestRouter_UserFlow(t *testing.T) {
	r := setupTestRouter(t)

	w, _ := call(r, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(r, "GET", "/api/v1/expenses", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(r, "POST", "/api/v1/auth/register", "", `{"email":"ana@example.com","password":"segredo123","name":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	token := login(t, r, "ana@example.com", "segredo123")

	w, _ = call(r, "PUT", "/api/v1/profile", token, `{"monthlySalary":4000}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = call(r, "POST", "/api/v1/expenses", token, `{"value":1000,"category":"moradia"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := call(r, "GET", "/api/v1/dashboard", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	headline := resp["data"].(map[string]interface{})["headline"].(map[string]interface{})
	assert.EqualValues(t, 1000, headline["currentMonthTotal"])
	assert.EqualValues(t, 25, headline["expensePercentage"])

	// 普通用户不能访问后台
	w, _ = call(r, "GET", "/admin/users", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(r, "GET", "/api/v1/categories", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminDeactivatesUser(t *testing.T) {
	r := setupTestRouter(t)

	w, resp := call(r, "POST", "/api/v1/auth/register", "", `{"email":"ana@example.com","password":"segredo123","name":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	userID := resp["data"].(map[string]interface{})["id"].(string)
	userToken := login(t, r, "ana@example.com", "segredo123")
	adminToken := login(t, r, "admin@financeiro.com", "admin123")

	w, resp = call(r, "GET", "/admin/users", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"].(map[string]interface{})["users"], 1)

	w, _ = call(r, "PUT", "/admin/users/"+userID+"/toggle-status", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	// 停用后旧 token 立即失效，重新登录返回 403
	w, _ = call(r, "GET", "/api/v1/expenses", userToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(r, "POST", "/api/v1/auth/login", "", `{"email":"ana@example.com","password":"segredo123"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(r, "DELETE", "/admin/users/"+userID, adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = call(r, "POST", "/api/v1/auth/login", "", `{"email":"ana@example.com","password":"segredo123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_DeletedUserTokenRejected(t *testing.T) {
	r := setupTestRouter(t)

	w, resp := call(r, "POST", "/api/v1/auth/register", "", `{"email":"ana@example.com","password":"segredo123","name":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	userID := resp["data"].(map[string]interface{})["id"].(string)
	userToken := login(t, r, "ana@example.com", "segredo123")
	adminToken := login(t, r, "admin@financeiro.com", "admin123")

	w, _ = call(r, "PUT", "/api/v1/profile", userToken, `{"monthlySalary":4000}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(r, "DELETE", "/admin/users/"+userID, adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	// 删除后旧 token 不能再写入任何数据
	w, _ = call(r, "PUT", "/api/v1/profile", userToken, `{"monthlySalary":4000}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(r, "POST", "/api/v1/expenses", userToken, `{"value":10,"category":"lazer"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(r, "POST", "/api/v1/contributions", userToken, `{"amount":10,"type":"deposit"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 已删除用户不会被重新发现
	w, resp = call(r, "GET", "/admin/users", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Empty(t, data["users"])
	assert.EqualValues(t, 0, data["stats"].(map[string]interface{})["total"])
}

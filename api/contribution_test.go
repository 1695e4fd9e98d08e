package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contributionRouter(env *testEnv, userID string) *gin.Engine {
	h := NewContributionHandler(env.stores, nil)
	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.GET("/contributions", h.List)
	router.POST("/contributions", h.Create)
	router.DELETE("/contributions/:id", h.Delete)
	return router
}

func TestContributionHandler_Flow(t *testing.T) {
	env := newTestEnv(t)
	router := contributionRouter(env, "u1")

	w := doJSON(router, "POST", "/contributions", `{"amount":500,"type":"deposit","date":"2024-05-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, "POST", "/contributions", `{"amountDisplay":"R$ 200,00","type":"withdrawal"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-05-10", decode(t, w)["data"].(map[string]interface{})["date"])

	w = doJSON(router, "GET", "/contributions", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 300, data["balance"])
	assert.Len(t, data["contributions"], 2)

	profile, err := env.stores.Profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 300.0, profile.EmergencyFund)

	// 删除取出记录后余额恢复
	w = doJSON(router, "DELETE", "/contributions/id-002", "")
	require.Equal(t, http.StatusOK, w.Code)
	profile, err = env.stores.Profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, profile.EmergencyFund)

	w = doJSON(router, "DELETE", "/contributions/id-002", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContributionHandler_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	router := contributionRouter(env, "u1")

	w := doJSON(router, "POST", "/contributions", `{"amount":100,"type":"deposit"}`)
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"金额为零", `{"amount":0,"type":"deposit"}`, msgInvalidAmount},
		{"无数字", `{"amountDisplay":"abc","type":"deposit"}`, msgInvalidAmount},
		{"类型错误", `{"amount":10,"type":"transfer"}`, msgInvalidType},
		{"日期错误", `{"amount":10,"type":"deposit","date":"2024-13-01"}`, msgInvalidDate},
		{"余额不足", `{"amount":100.01,"type":"withdrawal"}`, msgInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/contributions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, decode(t, w)["message"])
		})
	}

	// 恰好取完是允许的
	w = doJSON(router, "POST", "/contributions", `{"amount":100,"type":"withdrawal"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	balance, err := env.stores.Contributions.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

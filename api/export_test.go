package api

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"financeiro/currency"
	"financeiro/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportRouter(env *testEnv, userID string) *gin.Engine {
	h := NewExportHandler(env.stores, nil)
	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	router.GET("/export/csv", h.ExportCSV)
	router.GET("/export/json", h.ExportJSON)
	router.GET("/export/excel", h.ExportExcel)
	return router
}

func seedExportData(t *testing.T, env *testEnv) {
	seedExpenses(t, env, "u1",
		models.Expense{Value: 10.5, Category: models.CategoryFood, Date: "2024-04-02", Description: "pão, leite"},
		models.Expense{Value: 20, Category: models.CategoryLeisure, Date: "2024-05-01"},
	)
}

func TestExportHandler_ExportCSV(t *testing.T) {
	env := newTestEnv(t)
	seedExportData(t, env)
	router := exportRouter(env, "u1")

	w := doJSON(router, "GET", "/export/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gastos_completo.csv")

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(body, "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "Valor (R$)", records[0][5])
	// 日期倒序，类别转为显示名称
	assert.Equal(t, "2024-05-01", records[1][1])
	assert.Equal(t, "Lazer", records[1][2])
	assert.Equal(t, "pão, leite", records[2][3])
	assert.Equal(t, "10.50", records[2][4])
}

func TestExportHandler_ExportCSV_ConfiguredSymbol(t *testing.T) {
	env := newTestEnv(t)
	seedExportData(t, env)
	codec := currency.New("pt-BR", "US$")
	h := NewExportHandler(env.stores, codec)
	router := gin.New()
	router.Use(setUserIDMiddleware("u1"))
	router.GET("/export/csv", h.ExportCSV)

	w := doJSON(router, "GET", "/export/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(w.Body.String(), "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Valor (US$)", records[0][5])
	assert.Equal(t, codec.FormatAmount(20), records[1][5])
}

func TestExportHandler_ExportCSV_Range(t *testing.T) {
	env := newTestEnv(t)
	seedExportData(t, env)
	router := exportRouter(env, "u1")

	w := doJSON(router, "GET", "/export/csv?start_time=2024-05-01&end_time=2024-05-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gastos_2024-05-01_2024-05-31.csv")
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(w.Body.String(), "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	w = doJSON(router, "GET", "/export/csv?start_time=01-05-2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler_ExportJSON(t *testing.T) {
	env := newTestEnv(t)
	seedExportData(t, env)
	router := exportRouter(env, "u1")

	w := doJSON(router, "GET", "/export/json?end_time=2024-04-30", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total_count"])
	assert.InDelta(t, 10.5, data["total_amount"], 1e-9)
	assert.Len(t, data["expenses"], 1)
}

func TestExportHandler_ExportExcel(t *testing.T) {
	env := newTestEnv(t)
	seedExportData(t, env)
	router := exportRouter(env, "u1")

	w := doJSON(router, "GET", "/export/excel", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gastos_completo.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(expenseSheet)
	require.NoError(t, err)
	// 表头 + 2 条数据 + 合计
	require.Len(t, rows, 4)
	assert.Equal(t, "Categoria", rows[0][2])
	assert.Equal(t, "Lazer", rows[1][2])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "30.5", rows[3][4])
}

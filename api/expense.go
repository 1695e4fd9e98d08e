package api

import (
	"context"
	"log"
	"sort"
	"strings"

	"financeiro/currency"
	"financeiro/middleware"
	"financeiro/models"
	"financeiro/service"
	"financeiro/store"

	"github.com/gin-gonic/gin"
)

// 消费校验提示
const (
	msgValueRequired   = "Valor é obrigatório"
	msgValuePositive   = "Valor deve ser maior que 0"
	msgInvalidCategory = "Categoria inválida"
	msgInvalidDate     = "Data inválida, use o formato AAAA-MM-DD"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	stores *store.Stores
	auth   *service.AuthService
	sheets *service.SheetsSyncer
	codec  *currency.Codec
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(stores *store.Stores, auth *service.AuthService, sheets *service.SheetsSyncer, codec *currency.Codec) *ExpenseHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &ExpenseHandler{stores: stores, auth: auth, sheets: sheets, codec: codec}
}

// CreateExpenseRequest 创建消费记录请求
// value 与 valueDisplay 二选一，valueDisplay 为界面上的货币字符串（如 "R$ 1.234,56"）
type CreateExpenseRequest struct {
	Value        *float64 `json:"value" example:"99.90"`
	ValueDisplay string   `json:"valueDisplay" example:"R$ 99,90"`
	Category     string   `json:"category" binding:"required" example:"alimentacao"`
	Date         string   `json:"date" example:"2024-05-10"`
	Description  string   `json:"description" example:"Almoço"`
}

// UpdateExpenseRequest 更新消费记录请求，未传字段保持不变
type UpdateExpenseRequest struct {
	Value        *float64 `json:"value" example:"99.90"`
	ValueDisplay *string  `json:"valueDisplay" example:"R$ 99,90"`
	Category     *string  `json:"category" example:"alimentacao"`
	Date         *string  `json:"date" example:"2024-05-10"`
	Description  *string  `json:"description" example:"Almoço"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Category  string `form:"category" example:"alimentacao"`
	Month     string `form:"month" example:"2024-05"`
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// resolveValue 统一 value / valueDisplay 两种输入
func (h *ExpenseHandler) resolveValue(value *float64, display *string) (float64, string) {
	var v float64
	switch {
	case value != nil:
		v = *value
	case display != nil && strings.TrimSpace(*display) != "":
		v = h.codec.ParseDisplayToAmount(*display)
	default:
		return 0, msgValueRequired
	}
	if v <= 0 {
		return 0, msgValuePositive
	}
	return v, ""
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录，成功后异步同步到表格
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos"))
		return
	}

	value, msg := h.resolveValue(req.Value, &req.ValueDisplay)
	if msg != "" {
		BadRequest(c, msg)
		return
	}
	req.Category = strings.TrimSpace(req.Category)
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, msgInvalidCategory)
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		req.Date = h.stores.Now().Format(models.DateLayout)
	}
	if !models.ValidDate(req.Date) {
		BadRequest(c, msgInvalidDate)
		return
	}

	expense, err := h.stores.Expenses.Add(c.Request.Context(), userID, models.Expense{
		Value:       value,
		Category:    req.Category,
		Date:        req.Date,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		storeError(c, err, "Erro ao registrar gasto")
		return
	}

	h.syncExpense(c.Request.Context(), expense)
	SuccessWithMessage(c, "Gasto registrado", expense)
}

func (h *ExpenseHandler) syncExpense(ctx context.Context, e models.Expense) {
	if h.sheets == nil || !h.sheets.Enabled() {
		return
	}
	var name string
	if user, err := h.auth.Profile(ctx, e.UserID); err == nil {
		name = user.Name
	}
	h.sheets.SyncExpenseAsync(service.ExpenseRow{
		UserID:      e.UserID,
		UserName:    name,
		ExpenseID:   e.ID,
		Value:       e.Value,
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   h.stores.Now(),
	})
}

// filterExpenses 按类别、月份和日期区间筛选（日期为 YYYY-MM-DD，可直接按字符串比较）
func filterExpenses(list []models.Expense, category, month, start, end string) []models.Expense {
	out := make([]models.Expense, 0, len(list))
	for _, e := range list {
		if category != "" && e.Category != category {
			continue
		}
		if month != "" && e.Month() != month {
			continue
		}
		if start != "" && e.Date < start {
			continue
		}
		if end != "" && e.Date > end {
			continue
		}
		out = append(out, e)
	}
	return out
}

// validRange 校验可选的起止日期
func validRange(start, end string) bool {
	return (start == "" || models.ValidDate(start)) && (end == "" || models.ValidDate(end))
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前用户的消费记录列表，按日期倒序，支持分页和筛选
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别筛选"
// @Param month query string false "月份筛选 (2024-05)"
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}
	if !validRange(req.StartTime, req.EndTime) {
		BadRequest(c, msgInvalidDate)
		return
	}

	all, err := h.stores.Expenses.List(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err, "Erro ao consultar dados")
		return
	}
	list := filterExpenses(all, req.Category, req.Month, req.StartTime, req.EndTime)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date > list[j].Date })

	total := len(list)
	from := (req.Page - 1) * req.PageSize
	if from > total {
		from = total
	}
	to := from + req.PageSize
	if to > total {
		to = total
	}

	Success(c, PageResponse{
		Total:    int64(total),
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     list[from:to],
	})
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 部分字段更新
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Param request body UpdateExpenseRequest true "更新信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos"))
		return
	}

	var patch store.ExpensePatch
	if req.Value != nil || req.ValueDisplay != nil {
		value, msg := h.resolveValue(req.Value, req.ValueDisplay)
		if msg != "" {
			BadRequest(c, msg)
			return
		}
		patch.Value = &value
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if !models.IsValidCategory(category) {
			BadRequest(c, msgInvalidCategory)
			return
		}
		patch.Category = &category
	}
	if req.Date != nil {
		date := strings.TrimSpace(*req.Date)
		if !models.ValidDate(date) {
			BadRequest(c, msgInvalidDate)
			return
		}
		patch.Date = &date
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		patch.Description = &desc
	}

	expense, err := h.stores.Expenses.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		storeError(c, err, "Erro ao atualizar gasto")
		return
	}
	SuccessWithMessage(c, "Gasto atualizado", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.stores.Expenses.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		storeError(c, err, "Erro ao excluir gasto")
		return
	}
	log.Printf("用户 %s 删除消费记录 %s", userID, c.Param("id"))
	SuccessWithMessage(c, "Gasto excluído", nil)
}

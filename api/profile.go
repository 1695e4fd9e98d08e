package api

import (
	"context"
	"strings"

	"financeiro/currency"
	"financeiro/middleware"
	"financeiro/models"
	"financeiro/report"
	"financeiro/service"
	"financeiro/store"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 财务档案处理器
type ProfileHandler struct {
	stores *store.Stores
	auth   *service.AuthService
	sheets *service.SheetsSyncer
	codec  *currency.Codec
}

// NewProfileHandler 创建财务档案处理器
func NewProfileHandler(stores *store.Stores, auth *service.AuthService, sheets *service.SheetsSyncer, codec *currency.Codec) *ProfileHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &ProfileHandler{stores: stores, auth: auth, sheets: sheets, codec: codec}
}

// UpdateProfileRequest 更新档案请求，emergencyFund 由应急金流水计算，不可直接修改
type UpdateProfileRequest struct {
	MonthlySalary         *float64 `json:"monthlySalary" example:"5000"`
	MonthlySalaryDisplay  *string  `json:"monthlySalaryDisplay" example:"R$ 5.000,00"`
	SavingsGoalPercentage *int     `json:"savingsGoalPercentage" example:"20"`
}

// Get 获取财务档案
// @Summary 获取财务档案
// @Description 未设置时返回默认值（储蓄目标 10%）
// @Tags 财务档案
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.FinancialProfile} "获取成功"
// @Router /api/v1/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.stores.Profiles.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		storeError(c, err, "Erro ao carregar perfil")
		return
	}
	Success(c, profile)
}

// Update 更新财务档案
// @Summary 更新财务档案
// @Description 合并月薪和储蓄目标，重新计算应急金余额，成功后异步同步到表格
// @Tags 财务档案
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "档案信息"
// @Success 200 {object} Response{data=models.FinancialProfile} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos"))
		return
	}

	var patch store.ProfilePatch
	switch {
	case req.MonthlySalary != nil:
		patch.MonthlySalary = req.MonthlySalary
	case req.MonthlySalaryDisplay != nil && strings.TrimSpace(*req.MonthlySalaryDisplay) != "":
		salary := h.codec.ParseDisplayToAmount(*req.MonthlySalaryDisplay)
		patch.MonthlySalary = &salary
	}
	if patch.MonthlySalary != nil && *patch.MonthlySalary < 0 {
		BadRequest(c, "Por favor, insira um salário válido")
		return
	}
	if req.SavingsGoalPercentage != nil {
		switch goal := *req.SavingsGoalPercentage; {
		case goal < 0:
			BadRequest(c, "Meta deve ser positiva")
			return
		case goal > 100:
			BadRequest(c, "Meta não pode ser maior que 100%")
			return
		}
		patch.SavingsGoalPercentage = req.SavingsGoalPercentage
	}

	profile, err := h.stores.Profiles.Update(c.Request.Context(), userID, patch)
	if err != nil {
		storeError(c, err, "Erro ao atualizar perfil")
		return
	}

	h.syncUser(c.Request.Context(), profile)
	SuccessWithMessage(c, "Perfil atualizado", profile)
}

// syncUser 同步用户行，总消费取当月合计
func (h *ProfileHandler) syncUser(ctx context.Context, p models.FinancialProfile) {
	if h.sheets == nil || !h.sheets.Enabled() {
		return
	}
	user, err := h.auth.Profile(ctx, p.UserID)
	if err != nil {
		return
	}
	expenses, err := h.stores.Expenses.List(ctx, p.UserID)
	if err != nil {
		return
	}
	now := h.stores.Now()
	h.sheets.SyncUserAsync(service.UserRow{
		UserID:                p.UserID,
		Name:                  user.Name,
		Email:                 user.Email,
		MonthlySalary:         p.MonthlySalary,
		EmergencyFund:         p.EmergencyFund,
		SavingsGoalPercentage: p.SavingsGoalPercentage,
		TotalExpenses:         report.ComputeHeadline(expenses, p, now).CurrentMonthTotal,
		LastUpdated:           now,
	})
}

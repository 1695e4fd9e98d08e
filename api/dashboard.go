package api

import (
	"financeiro/currency"
	"financeiro/middleware"
	"financeiro/report"
	"financeiro/store"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	stores *store.Stores
	codec  *currency.Codec
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(stores *store.Stores, codec *currency.Codec) *DashboardHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &DashboardHandler{stores: stores, codec: codec}
}

// DashboardResponse 仪表盘数据，附带格式化后的金额
type DashboardResponse struct {
	report.Dashboard
	Display HeadlineDisplay `json:"display"`
}

// HeadlineDisplay 顶部指标的货币显示字符串
type HeadlineDisplay struct {
	MonthlySalary     string `json:"monthlySalary" example:"R$ 5.000,00"`
	CurrentMonthTotal string `json:"currentMonthTotal" example:"R$ 1.234,56"`
	Balance           string `json:"balance"`
	SavingsTarget     string `json:"savingsTarget"`
	ActualSavings     string `json:"actualSavings"`
	EmergencyFund     string `json:"emergencyFund"`
}

func newDashboardResponse(d report.Dashboard, codec *currency.Codec) DashboardResponse {
	h := d.Headline
	return DashboardResponse{
		Dashboard: d,
		Display: HeadlineDisplay{
			MonthlySalary:     codec.FormatAmount(d.Profile.MonthlySalary),
			CurrentMonthTotal: codec.FormatAmount(h.CurrentMonthTotal),
			Balance:           codec.FormatAmount(h.Balance),
			SavingsTarget:     codec.FormatAmount(h.SavingsTarget),
			ActualSavings:     codec.FormatAmount(h.ActualSavings),
			EmergencyFund:     codec.FormatAmount(h.EmergencyFund),
		},
	}
}

// Get 获取仪表盘
// @Summary 获取仪表盘
// @Description 当月指标、类别分布、近 6 个月走势、近 12 个月对比、年度对比和支出趋势
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=DashboardResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	ctx := c.Request.Context()

	expenses, err := h.stores.Expenses.List(ctx, userID)
	if err != nil {
		storeError(c, err, "Erro ao consultar dados")
		return
	}
	profile, err := h.stores.Profiles.Get(ctx, userID)
	if err != nil {
		storeError(c, err, "Erro ao consultar dados")
		return
	}

	d := report.Build(report.Snapshot{Expenses: expenses, Profile: profile}, h.stores.Now())
	Success(c, newDashboardResponse(d, h.codec))
}

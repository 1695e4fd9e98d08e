package api

import (
	"errors"
	"strings"

	"financeiro/currency"
	"financeiro/middleware"
	"financeiro/models"
	"financeiro/store"

	"github.com/gin-gonic/gin"
)

// 应急金校验提示
const (
	msgInvalidAmount     = "Por favor, insira um valor válido"
	msgInvalidType       = "Tipo inválido: use deposit ou withdrawal"
	msgInsufficientFunds = "Saldo insuficiente na reserva de emergência"
)

// ContributionHandler 应急金处理器
type ContributionHandler struct {
	stores *store.Stores
	codec  *currency.Codec
}

// NewContributionHandler 创建应急金处理器
func NewContributionHandler(stores *store.Stores, codec *currency.Codec) *ContributionHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &ContributionHandler{stores: stores, codec: codec}
}

// CreateContributionRequest 新增存取记录请求
type CreateContributionRequest struct {
	Amount        *float64 `json:"amount" example:"500"`
	AmountDisplay string   `json:"amountDisplay" example:"R$ 500,00"`
	Type          string   `json:"type" binding:"required" example:"deposit"`
	Date          string   `json:"date" example:"2024-05-10"`
	Description   string   `json:"description" example:"Depósito mensal"`
}

// ContributionList 流水列表和余额
type ContributionList struct {
	Balance       float64                            `json:"balance"`
	Contributions []models.EmergencyFundContribution `json:"contributions"`
}

// List 获取应急金流水
// @Summary 获取应急金流水
// @Description 按插入顺序返回存取记录和当前余额
// @Tags 应急金
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=ContributionList} "获取成功"
// @Router /api/v1/contributions [get]
func (h *ContributionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	list, err := h.stores.Contributions.List(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err, "Erro ao consultar dados")
		return
	}
	Success(c, ContributionList{
		Balance:       models.FoldContributions(list),
		Contributions: list,
	})
}

// Create 新增存取记录
// @Summary 新增应急金存取记录
// @Description 存入或取出，取出金额不能超过当前余额。成功后同步档案中的应急金余额
// @Tags 应急金
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateContributionRequest true "存取信息"
// @Success 200 {object} Response{data=models.EmergencyFundContribution} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/contributions [post]
func (h *ContributionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos"))
		return
	}

	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		amount = h.codec.ParseDisplayToAmount(req.AmountDisplay)
	}
	if amount <= 0 {
		BadRequest(c, msgInvalidAmount)
		return
	}
	if !models.IsValidContributionType(req.Type) {
		BadRequest(c, msgInvalidType)
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

	rec, err := h.stores.Contributions.Add(c.Request.Context(), userID, models.EmergencyFundContribution{
		Amount:      amount,
		Type:        req.Type,
		Date:        req.Date,
		Description: strings.TrimSpace(req.Description),
	})
	if errors.Is(err, store.ErrInsufficientFunds) {
		BadRequest(c, msgInsufficientFunds)
		return
	}
	if err != nil {
		storeError(c, err, "Erro ao registrar movimentação")
		return
	}
	SuccessWithMessage(c, "Movimentação registrada", rec)
}

// Delete 删除存取记录
// @Summary 删除应急金存取记录
// @Tags 应急金
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/contributions/{id} [delete]
func (h *ContributionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.stores.Contributions.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		storeError(c, err, "Erro ao excluir movimentação")
		return
	}
	SuccessWithMessage(c, "Movimentação excluída", nil)
}

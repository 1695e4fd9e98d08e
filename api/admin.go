package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"financeiro/admin"
	"financeiro/currency"
	"financeiro/models"
	"financeiro/service"
	"financeiro/store"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// AdminHandler 后台管理处理器
type AdminHandler struct {
	stores     *store.Stores
	reconciler *admin.Reconciler
	sheets     *service.SheetsSyncer
	codec      *currency.Codec
}

// NewAdminHandler 创建后台管理处理器
func NewAdminHandler(stores *store.Stores, reconciler *admin.Reconciler, sheets *service.SheetsSyncer, codec *currency.Codec) *AdminHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &AdminHandler{stores: stores, reconciler: reconciler, sheets: sheets, codec: codec}
}

// GetAllUsers 获取所有用户
// @Summary 获取用户列表
// @Description 注册表用户在前，其后是只由存储键推断出的用户（discoveredOnly）。
// @Description stats 按过滤前的完整列表统计
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态过滤" Enums(todos, ativos, inativos)
// @Success 200 {object} AdminResponse{data=models.UserList} "获取成功"
// @Failure 400 {object} AdminResponse "状态过滤值无效"
// @Failure 403 {object} AdminResponse "权限不足"
// @Router /admin/users [get]
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	list, err := h.reconciler.ListUsersByStatus(c.Request.Context(), c.DefaultQuery("status", admin.StatusAll))
	if err != nil {
		adminError(c, err, "Erro ao consultar dados")
		return
	}
	AdminSuccess(c, "", list)
}

// ToggleUserStatus 启用/停用用户
// @Summary 启用或停用用户
// @Description 切换用户启用状态，记录操作日志并尽力发送邮件通知，返回刷新后的用户列表
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} AdminResponse{data=[]models.UserManagement} "操作成功"
// @Failure 400 {object} AdminResponse "管理员账号不可修改"
// @Failure 404 {object} AdminResponse "用户不存在"
// @Router /admin/users/{id}/toggle-status [put]
func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	users, err := h.reconciler.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		adminError(c, err, "Erro ao atualizar status")
		return
	}
	AdminSuccess(c, "Status do usuário atualizado", users)
}

// DeleteUser 删除用户
// @Summary 删除用户
// @Description 删除用户的全部数据（档案、消费、应急金、启用标记）和注册表记录，不可恢复
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} AdminResponse{data=[]models.UserManagement} "删除成功"
// @Failure 400 {object} AdminResponse "管理员账号不可删除"
// @Failure 404 {object} AdminResponse "用户不存在"
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	users, err := h.reconciler.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		adminError(c, err, "Erro ao excluir usuário")
		return
	}
	AdminSuccess(c, "Usuário excluído com sucesso", users)
}

// GetUserDashboard 查看用户仪表盘
// @Summary 查看指定用户的仪表盘
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} AdminResponse{data=DashboardResponse} "获取成功"
// @Failure 404 {object} AdminResponse "用户不存在"
// @Router /admin/users/{id}/dashboard [get]
func (h *AdminHandler) GetUserDashboard(c *gin.Context) {
	d, err := h.reconciler.UserDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		adminError(c, err, "Erro ao consultar dados")
		return
	}
	AdminSuccess(c, "", newDashboardResponse(d, h.codec))
}

// GetActivities 操作日志
// @Summary 获取操作日志
// @Description 最新的在前，最多 100 条
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AdminResponse{data=[]models.UserActivity} "获取成功"
// @Router /admin/activities [get]
func (h *AdminHandler) GetActivities(c *gin.Context) {
	list, err := h.reconciler.Activities(c.Request.Context())
	if err != nil {
		adminError(c, err, "Erro ao consultar dados")
		return
	}
	AdminSuccess(c, "", list)
}

// SetupSheets 写入表格表头
// @Summary 初始化 Google Sheets 表头
// @Description 向 Usuarios 和 Gastos 两个工作表写入表头
// @Tags 后台管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AdminResponse "初始化成功"
// @Failure 400 {object} AdminResponse "表格同步未配置"
// @Failure 502 {object} AdminResponse "表格服务调用失败"
// @Router /admin/sheets/setup [post]
func (h *AdminHandler) SetupSheets(c *gin.Context) {
	if h.sheets == nil || !h.sheets.Enabled() {
		AdminError(c, http.StatusBadRequest, "Google Sheets não está configurado")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	if err := h.sheets.SetupHeaders(ctx); err != nil {
		log.Printf("初始化表格表头失败: %v", err)
		AdminError(c, http.StatusBadGateway, SafeErrorMessage(err, "Erro ao configurar a planilha"))
		return
	}
	AdminSuccess(c, "Planilha configurada com sucesso", nil)
}

// ExportExcel 导出全部用户数据为 Excel
// @Summary 导出全部用户数据
// @Description 两个工作表：Gastos（所有用户的消费明细）和 Usuários（用户汇总）
// @Tags 后台管理
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} AdminResponse "日期格式错误"
// @Router /admin/export/excel [get]
func (h *AdminHandler) ExportExcel(c *gin.Context) {
	start, end := c.Query("start_time"), c.Query("end_time")
	if !validRange(start, end) {
		AdminError(c, http.StatusBadRequest, msgInvalidDate)
		return
	}

	ctx := c.Request.Context()
	users, err := h.reconciler.ListUsers(ctx)
	if err != nil {
		adminError(c, err, "Erro ao consultar dados")
		return
	}

	var rows []expenseSheetRow
	for _, u := range users {
		list, err := h.stores.Expenses.List(ctx, u.ID)
		if err != nil {
			adminError(c, err, "Erro ao consultar dados")
			return
		}
		for _, e := range filterExpenses(list, "", "", start, end) {
			rows = append(rows, expenseSheetRow{Expense: e, UserName: u.Name})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", expenseSheet)
	if err := writeExpenseSheet(f, expenseSheet, rows, true); err != nil {
		AdminError(c, http.StatusInternalServerError, "Erro ao gerar Excel")
		return
	}
	if err := writeUserSheet(f, users); err != nil {
		AdminError(c, http.StatusInternalServerError, "Erro ao gerar Excel")
		return
	}
	sendWorkbook(c, f, fmt.Sprintf("financeiro_%s.xlsx", rangeSuffix(start, end)))
}

// writeUserSheet 用户汇总工作表
func writeUserSheet(f *excelize.File, users []models.UserManagement) error {
	const sheet = "Usuários"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	headers := []string{"ID", "Nome", "Email", "Status", "Salário Mensal", "Reserva Emergência", "Total Gastos", "Qtd. Gastos", "Criado em"}
	widths := []float64{40, 20, 28, 10, 16, 18, 14, 12, 20}
	if err := writeHeader(f, sheet, styles.header, headers, widths); err != nil {
		return err
	}

	for i, u := range users {
		row := i + 2
		status := "Ativo"
		if !u.IsActive {
			status = "Inativo"
		}
		var salary float64
		if u.FinancialProfile != nil {
			salary = u.FinancialProfile.MonthlySalary
		}
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{u.ID, u.Name, u.Email, status, salary, u.EmergencyFundBalance, u.TotalExpenses, u.ExpenseCount, created}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), styles.data); err != nil {
			return err
		}
	}
	return nil
}

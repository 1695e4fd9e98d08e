package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"financeiro/currency"
	"financeiro/middleware"
	"financeiro/models"
	"financeiro/store"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	stores *store.Stores
	codec  *currency.Codec
}

// NewExportHandler 创建导出处理器
func NewExportHandler(stores *store.Stores, codec *currency.Codec) *ExportHandler {
	if codec == nil {
		codec = currency.Default
	}
	return &ExportHandler{stores: stores, codec: codec}
}

// categoryName 类别显示名称，未知类别原样返回
func categoryName(id string) string {
	if cat, ok := models.FindCategory(id); ok {
		return cat.Name
	}
	return id
}

// rangeSuffix 文件名中的日期区间
func rangeSuffix(start, end string) string {
	if start == "" && end == "" {
		return "completo"
	}
	return start + "_" + end
}

// attachment 设置下载文件名（RFC 5987 编码）
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
}

// userExpenses 当前用户在日期区间内的消费，按日期倒序
func (h *ExportHandler) userExpenses(c *gin.Context) ([]models.Expense, string, string, bool) {
	start, end := c.Query("start_time"), c.Query("end_time")
	if !validRange(start, end) {
		BadRequest(c, msgInvalidDate)
		return nil, "", "", false
	}
	all, err := h.stores.Expenses.List(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		storeError(c, err, "Erro ao consultar dados")
		return nil, "", "", false
	}
	list := filterExpenses(all, "", "", start, end)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date > list[j].Date })
	return list, start, end, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 导出当前用户的消费记录为 CSV 文件，不传时间范围则导出全部
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, start, end, ok := h.userExpenses(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以便 Excel 正确识别 UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	headers := []string{"ID", "Data", "Categoria", "Descrição", "Valor", "Valor (" + h.codec.Symbol() + ")"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "Erro ao gerar CSV")
		return
	}

	for _, e := range expenses {
		row := []string{
			e.ID,
			e.Date,
			categoryName(e.Category),
			e.Description,
			fmt.Sprintf("%.2f", e.Value),
			h.codec.FormatAmount(e.Value),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "Erro ao gerar CSV")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "Erro ao gerar CSV")
		return
	}

	attachment(c, fmt.Sprintf("gastos_%s.csv", rangeSuffix(start, end)))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Description 导出当前用户的消费记录和合计，不传时间范围则导出全部
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]models.Expense} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	expenses, start, end, ok := h.userExpenses(c)
	if !ok {
		return
	}

	var totalAmount float64
	for _, e := range expenses {
		totalAmount += e.Value
	}

	Success(c, gin.H{
		"start_time":    start,
		"end_time":      end,
		"total_count":   len(expenses),
		"total_amount":  totalAmount,
		"total_display": h.codec.FormatAmount(totalAmount),
		"expenses":      expenses,
	})
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 导出当前用户的消费记录为 xlsx 文件，末行为合计
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string false "开始日期 (2024-01-01)"
// @Param end_time query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, start, end, ok := h.userExpenses(c)
	if !ok {
		return
	}

	rows := make([]expenseSheetRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseSheetRow{Expense: e})
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", expenseSheet)
	if err := writeExpenseSheet(f, expenseSheet, rows, false); err != nil {
		InternalError(c, "Erro ao gerar Excel")
		return
	}
	sendWorkbook(c, f, fmt.Sprintf("gastos_%s.xlsx", rangeSuffix(start, end)))
}

// expenseSheet 消费明细工作表名
const expenseSheet = "Gastos"

// expenseSheetRow Excel 中的一行消费，后台导出时带上用户名
type expenseSheetRow struct {
	models.Expense
	UserName string
}

// sheetStyles 表头、数据和合计行样式
type sheetStyles struct {
	header, data, summary int
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return s, err
	}
	s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return s, err
	}
	s.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	return s, err
}

// writeHeader 写入表头并设置列宽
func writeHeader(f *excelize.File, sheet string, style int, headers []string, widths []float64) error {
	for i, header := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if i < len(widths) {
			if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return err
			}
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

// writeExpenseSheet 向已存在的工作表写入消费明细，withUser 为 true 时多一列用户名
func writeExpenseSheet(f *excelize.File, target string, rows []expenseSheetRow, withUser bool) error {
	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	headers := []string{"ID", "Data", "Categoria", "Descrição", "Valor"}
	widths := []float64{40, 12, 14, 30, 14}
	if withUser {
		headers = append(headers, "Usuário")
		widths = append(widths, 20)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := writeHeader(f, target, styles.header, headers, widths); err != nil {
		return err
	}

	var total float64
	for i, r := range rows {
		row := i + 2
		values := []interface{}{r.ID, r.Date, categoryName(r.Category), r.Description, r.Value}
		if withUser {
			values = append(values, r.UserName)
		}
		if err := f.SetSheetRow(target, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(target, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), styles.data); err != nil {
			return err
		}
		total += r.Value
	}

	// 合计行
	summaryRow := len(rows) + 2
	cells := []struct {
		cell  string
		value interface{}
	}{
		{fmt.Sprintf("A%d", summaryRow), "Total"},
		{fmt.Sprintf("E%d", summaryRow), total},
	}
	for _, cv := range cells {
		if err := f.SetCellValue(target, cv.cell, cv.value); err != nil {
			return err
		}
	}
	if err := f.MergeCell(target, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("D%d", summaryRow)); err != nil {
		return err
	}
	if withUser {
		if err := f.SetCellValue(target, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("%d registros", len(rows))); err != nil {
			return err
		}
	}
	return f.SetCellStyle(target, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("%s%d", last, summaryRow), styles.summary)
}

// sendWorkbook 把工作簿写入响应
func sendWorkbook(c *gin.Context, f *excelize.File, filename string) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "Erro ao gerar Excel")
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

package api

import (
	"financeiro/models"

	"github.com/gin-gonic/gin"
)

// ListCategories 消费类别固定集合
// @Summary 获取消费类别列表
// @Description 返回固定的消费类别（ID、名称、颜色），顺序即仪表盘的展示顺序
// @Tags 消费记录
// @Produce json
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func ListCategories(c *gin.Context) {
	Success(c, models.GetCategories())
}

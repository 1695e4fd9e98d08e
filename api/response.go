package api

import (
	"errors"
	"log"
	"net/http"

	"financeiro/admin"
	"financeiro/store"

	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AdminResponse 后台接口响应结构
type AdminResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	List     interface{} `json:"list"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// AdminSuccess 后台成功响应
func AdminSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, AdminResponse{Success: true, Message: message, Data: data})
}

// AdminError 后台错误响应
func AdminError(c *gin.Context, code int, message string) {
	c.JSON(code, AdminResponse{Success: false, Message: message})
}

// storeError 把仓库层错误映射为 HTTP 状态码
func storeError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		NotFound(c, "Registro não encontrado")
		return
	}
	log.Printf("存储错误: %v", err)
	InternalError(c, SafeErrorMessage(err, fallback))
}

// adminError 把用户管理错误映射为 HTTP 状态码
func adminError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, admin.ErrProtectedUser):
		AdminError(c, http.StatusBadRequest, "A conta de administrador não pode ser alterada")
	case errors.Is(err, admin.ErrUserNotFound):
		AdminError(c, http.StatusNotFound, "Usuário não encontrado")
	case errors.Is(err, admin.ErrInvalidStatus):
		AdminError(c, http.StatusBadRequest, "Filtro de status inválido: use todos, ativos ou inativos")
	default:
		log.Printf("用户管理错误: %v", err)
		AdminError(c, http.StatusInternalServerError, SafeErrorMessage(err, fallback))
	}
}

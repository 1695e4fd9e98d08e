package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// msgAccountDisabled 与登录时的停用提示一致
const msgAccountDisabled = "Sua conta foi desativada. Entre em contato com o administrador."

// ActiveChecker 查询用户是否处于启用状态
type ActiveChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// AdminRequired 后台管理接口权限校验，需在 JWTAuth 之后使用
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUserID(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Faça login para continuar"})
			c.Abort()
			return
		}
		if !IsCurrentUserAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Acesso restrito a administradores"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireActiveUser 每次请求都检查启用状态，被管理员停用的用户已签发的 token 立即失效。
// 需在 JWTAuth 之后使用
func RequireActiveUser(checker ActiveChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)
		if userID == "" {
			unauthorized(c, "Faça login para continuar")
			return
		}
		active, err := checker.IsActive(c.Request.Context(), userID)
		if err != nil {
			log.Printf("查询用户 %s 状态失败: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Erro interno do servidor"})
			c.Abort()
			return
		}
		if !active {
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": msgAccountDisabled})
			c.Abort()
			return
		}
		c.Next()
	}
}

package api

import (
	"errors"
	"log"
	"net/http"

	"financeiro/config"
	"financeiro/middleware"
	"financeiro/models"
	"financeiro/service"
	"financeiro/store"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg  *config.Config
	auth *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{cfg: cfg, auth: auth}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"segredo123"`
	Name     string `json:"name" binding:"required" example:"Ana"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"segredo123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token   string      `json:"token"`
	IsAdmin bool        `json:"isAdmin"`
	User    models.User `json:"user"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required" example:"segredo123"`
	NewPassword string `json:"new_password" binding:"required" example:"novasenha123"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号，默认启用。管理员邮箱不可注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "请求参数错误或邮箱已注册"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, service.MsgMissingFields)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		log.Printf("注册失败: %v", err)
		InternalError(c, SafeErrorMessage(err, "Erro ao criar conta"))
		return
	}
	if !res.Success {
		BadRequest(c, res.Message)
		return
	}

	SuccessWithMessage(c, res.Message, res.User)
}

// Login 用户登录
// @Summary 用户登录
// @Description 登录获取 JWT token。管理员账号同样通过此接口登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "邮箱或密码错误"
// @Failure 403 {object} Response "账号已停用"
// @Failure 429 {object} AdminResponse "尝试过于频繁"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, service.MsgMissingFields)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("登录失败: %v", err)
		InternalError(c, SafeErrorMessage(err, "Erro ao entrar"))
		return
	}
	if !res.Success {
		code := http.StatusUnauthorized
		if res.Message == service.MsgAccountDisabled {
			code = http.StatusForbidden
		}
		Error(c, code, res.Message)
		return
	}

	token, err := middleware.GenerateToken(res.User.ID, res.User.Email, res.IsAdmin, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "Erro ao gerar token")
		return
	}

	Success(c, LoginResponse{
		Token:   token,
		IsAdmin: res.IsAdmin,
		User:    *res.User,
	})
}

// GetProfile 获取用户信息
// @Summary 获取当前用户信息
// @Description 获取当前登录用户的详细信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		storeError(c, err, "Erro ao carregar usuário")
		return
	}
	Success(c, user)
}

// Logout 登出，清除持久化的会话
// @Summary 登出
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "登出成功"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetCurrentUserID(c)); err != nil {
		storeError(c, err, "Erro ao sair")
		return
	}
	SuccessWithMessage(c, "Sessão encerrada", nil)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Description 修改当前用户密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "密码信息"
// @Success 200 {object} Response "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "原密码错误"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos"))
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), middleware.GetCurrentUserID(c), req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		SuccessWithMessage(c, "Senha alterada com sucesso", nil)
	case errors.Is(err, service.ErrWrongPassword):
		Unauthorized(c, "Senha atual incorreta")
	case errors.Is(err, service.ErrPasswordTooShort):
		BadRequest(c, service.MsgPasswordTooShort)
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "Usuário não encontrado")
	default:
		InternalError(c, SafeErrorMessage(err, "Erro ao alterar senha"))
	}
}

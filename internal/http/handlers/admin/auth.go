package admin

import (
	"strings"
	"time"

	"github.com/bloodlink-next/internal/http/response"
	"github.com/bloodlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string            `json:"token"`
	Admin     *service.Identity `json:"admin"`
	ExpiresAt string            `json:"expires_at"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if h.CaptchaService != nil {
		payload := service.CaptchaVerifyPayload{CaptchaID: req.CaptchaID, CaptchaCode: req.CaptchaCode}
		if err := h.CaptchaService.VerifyLogin(payload); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	identity, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 顺带触发一次过期会话清理，失败不影响登录
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueSessionPurge(); err != nil {
			requestLog(c).Warnw("enqueue_session_purge_failed", "error", err)
		}
	}

	h.setSessionCookie(c, token, expiresAt)
	response.Success(c, LoginResponse{
		Token:     token,
		Admin:     identity,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// Logout 注销当前会话
func (h *Handler) Logout(c *gin.Context) {
	token := extractToken(c, h.Cfg.Session.CookieName)
	if err := h.AuthService.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}
	h.clearSessionCookie(c)
	response.Success(c, nil)
}

// Me 当前管理员信息
func (h *Handler) Me(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	response.Success(c, identity)
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改当前管理员密码
func (h *Handler) ChangePassword(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthService.ChangePassword(c.Request.Context(), identity, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// Captcha 生成登录图片验证码
func (h *Handler) Captcha(c *gin.Context) {
	if h.CaptchaService == nil || !h.CaptchaService.LoginEnabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	name := h.Cfg.Session.CookieName
	if name == "" {
		return
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetCookie(name, token, maxAge, "/", "", false, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	name := h.Cfg.Session.CookieName
	if name == "" {
		return
	}
	c.SetCookie(name, "", -1, "/", "", false, true)
}

// extractToken 从 Authorization 头或会话 Cookie 中取令牌
func extractToken(c *gin.Context, cookieName string) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

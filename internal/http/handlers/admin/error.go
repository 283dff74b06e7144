package admin

import (
	"errors"

	handlershared "github.com/bloodlink-next/internal/http/handlers/shared"
	"github.com/bloodlink-next/internal/http/response"
	"github.com/bloodlink-next/internal/service"
	"github.com/bloodlink-next/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// respondServiceError 服务层错误到响应码的统一映射
// 认证失败与存储故障一律使用笼统的客户端文案，细节只进日志
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrWeakPassword):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidPassword):
		respondError(c, response.CodeBadRequest, "current password is incorrect", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, response.CodeUnauthorized, "authentication required", nil)
	case errors.Is(err, service.ErrForbidden):
		respondError(c, response.CodeForbidden, "access denied", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "resource not found", nil)
	case errors.Is(err, service.ErrConflict):
		respondError(c, response.CodeConflict, "resource state conflict", nil)
	case errors.Is(err, service.ErrCaptchaRequired):
		respondError(c, response.CodeBadRequest, "captcha required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondError(c, response.CodeBadRequest, "captcha invalid", nil)
	case errors.Is(err, store.ErrConnection):
		respondError(c, response.CodeInternal, "service temporarily unavailable, please try again later", err)
	default:
		respondError(c, response.CodeInternal, "internal error", err)
	}
}

package admin

import (
	"github.com/bloodlink-next/internal/http/response"
	"github.com/bloodlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// getIdentity 读取认证中间件写入的主体信息
func getIdentity(c *gin.Context) (*service.Identity, bool) {
	value, exists := c.Get("identity")
	if !exists {
		respondError(c, response.CodeUnauthorized, "authentication required", nil)
		return nil, false
	}
	identity, ok := value.(*service.Identity)
	if !ok || identity == nil || identity.AdminID == 0 {
		respondError(c, response.CodeUnauthorized, "authentication required", nil)
		return nil, false
	}
	return identity, true
}

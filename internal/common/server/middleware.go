package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/ParkEasy/ParkEasy/internal/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// Recovery 防止 panic 直接把进程打崩，并记录栈信息。
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Errorf("panic in http path=%s err=%v stack=%s", c.FullPath(), r, string(debug.Stack()))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}

// AccessLog 记录每个 HTTP 请求的耗时/状态码。
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cost := time.Since(start)

		if log == nil {
			return
		}
		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"cost":   cost.String(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).Warn("http request failed")
		} else {
			log.WithFields(fields).Info("http request ok")
		}
	}
}

// Tracing 基于 OpenTracing 的最小 HTTP server 中间件：
// - 从请求头提取上游 span context
// - 创建 server span 并注入 request ctx，业务侧可用 StartSpanFromContext 续接
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()

		var parent opentracing.SpanContext
		if sc, err := tracer.Extract(opentracing.HTTPHeaders,
			opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			parent = sc
		}

		operation := c.Request.Method + " " + c.FullPath()
		var span opentracing.Span
		if parent != nil {
			span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
		} else {
			span = tracer.StartSpan(operation)
		}
		defer span.Finish()

		ext.SpanKindRPCServer.Set(span)
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		if serviceName != "" {
			span.SetTag("service", serviceName)
		}

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
	}
}

type authContextKey struct{}

// AuthInfo 从 session token 解析出的最小用户信息。
type AuthInfo struct {
	Subject string   // 用户 ID
	Email   string
	Roles   []string // 角色列表（RBAC）
}

// IsOperator 是否运营角色。
func (ai AuthInfo) IsOperator() bool {
	for _, r := range ai.Roles {
		if strings.EqualFold(strings.TrimSpace(r), "operator") {
			return true
		}
	}
	return false
}

// AuthFromContext 从 request ctx 中取出鉴权信息（JWTAuth 注入）。
func AuthFromContext(ctx context.Context) (AuthInfo, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// JWTAuth session token 鉴权：
// - 读取 `Authorization: Bearer <token>`
// - 校验 HS256 签名、exp/nbf、typ=session、iss/aud
// - 把解析结果写入 request ctx
func JWTAuth(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			if log != nil {
				log.Warn("auth enabled but jwt_secret is empty")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth not configured"})
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		tokenStr := raw
		if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}

		claims, err := auth.ParseSessionToken(cfg, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ai := AuthInfo{Subject: claims.Subject, Email: claims.Email, Roles: claims.Roles}
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), authContextKey{}, ai))
		c.Next()
	}
}

// RequireRole 要求 token roles 与 required 有交集（大小写不敏感）。
// 挂在 JWTAuth 之后。
func RequireRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ai, ok := AuthFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if hasAnyRole(ai.Roles, required) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

func hasAnyRole(got, required []string) bool {
	if len(got) == 0 || len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(got))
	for _, r := range got {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	for _, r := range required {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

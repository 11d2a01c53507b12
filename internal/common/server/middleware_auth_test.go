package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/gin-gonic/gin"
)

func TestJWTAuthAndRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "parkeasy",
		Audience:  "parkeasy",
	}

	r := gin.New()
	grp := r.Group("/", JWTAuth(authCfg, nil))
	grp.GET("/me", func(c *gin.Context) {
		ai, ok := AuthFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing auth info"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": ai.Subject})
	})
	grp.GET("/admin", RequireRole("operator"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	operatorToken, _, err := auth.GenerateSessionToken(authCfg, "u-1", "", []string{"regular", "operator"}, time.Hour)
	if err != nil {
		t.Fatalf("sign operator token: %v", err)
	}
	regularToken, _, err := auth.GenerateSessionToken(authCfg, "u-2", "", []string{"regular"}, time.Hour)
	if err != nil {
		t.Fatalf("sign regular token: %v", err)
	}

	do := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("/me", operatorToken); code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", code)
	}
	if code := do("/me", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := do("/me", "not-a-token"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", code)
	}
	if code := do("/admin", operatorToken); code != http.StatusOK {
		t.Fatalf("expected 200 for operator, got %d", code)
	}
	// 只有 regular 角色的 token，应被 RequireRole 拒绝
	if code := do("/admin", regularToken); code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular user, got %d", code)
	}
}

// 入场二维码 token 不是 session token，不能用来访问 API。
func TestJWTAuthRejectsCheckInToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "parkeasy",
		Audience:  "parkeasy",
	}

	r := gin.New()
	r.GET("/me", JWTAuth(authCfg, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	checkin, _, err := auth.GenerateCheckInToken(authCfg, "b-1", "u-1", time.Hour)
	if err != nil {
		t.Fatalf("sign checkin token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+checkin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for checkin token, got %d", w.Code)
	}
}

package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/ParkEasy/ParkEasy/internal/common/server"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HTTPHandler struct {
	svc     *Service
	authCfg config.AuthConfig
}

func NewHTTPHandler(svc *Service, authCfg config.AuthConfig) *HTTPHandler {
	return &HTTPHandler{svc: svc, authCfg: authCfg}
}

type sessionRequest struct {
	ExternalUID string `json:"externalUid" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toView(u *User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// CreateSession POST /api/auth/session
// 身份源回调入口：三元组换 session token，首次见到的用户自动建档。
func (h *HTTPHandler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "externalUid and email are required"})
		return
	}

	u, err := h.svc.ResolveIdentity(c.Request.Context(), IdentityInput{
		ExternalUID: req.ExternalUID,
		Email:       req.Email,
		Name:        req.Name,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve identity"})
		return
	}

	token, exp, err := auth.GenerateSessionToken(h.authCfg, u.ID, u.Email, []string{u.Role}, h.authCfg.SessionTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": exp.UTC().Format(time.RFC3339),
		"user":      toView(u),
	})
}

// Me GET /api/users/me
func (h *HTTPHandler) Me(c *gin.Context) {
	ai, ok := server.AuthFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}
	u, err := h.svc.Get(c.Request.Context(), ai.Subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toView(u)})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole PATCH /api/admin/users/:userId/role（运营专用）
func (h *HTTPHandler) SetRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	if !ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	u, err := h.svc.SetRole(c.Request.Context(), c.Param("userId"), req.Role)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update role"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toView(u)})
}

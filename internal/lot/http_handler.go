package lot

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HTTPHandler struct {
	repo *Repo
}

func NewHTTPHandler(repo *Repo) *HTTPHandler {
	return &HTTPHandler{repo: repo}
}

// ListLots GET /api/lots
func (h *HTTPHandler) ListLots(c *gin.Context) {
	lots, err := h.repo.ListLots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch parking lots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parkingLots": lots})
}

// ListSlots GET /api/lots/:lotId/slots?start=&end=
// 给了时间窗就按半开区间现算可用性；没给就只反映 active 标志。
func (h *HTTPHandler) ListSlots(c *gin.Context) {
	lotID := c.Param("lotId")

	var w *Window
	startStr, endStr := c.Query("start"), c.Query("end")
	if startStr != "" || endStr != "" {
		start, err1 := time.Parse(time.RFC3339, startStr)
		end, err2 := time.Parse(time.RFC3339, endStr)
		if err1 != nil || err2 != nil || !end.After(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start/end must be RFC3339 with start < end"})
			return
		}
		w = &Window{Start: start.UTC(), End: end.UTC()}
	}

	slots, err := h.repo.ListSlotsAvailability(c.Request.Context(), lotID, w)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// ---- 运营后台（库存 CRUD 是普通持久化，不走预约核心） ----

type createLotRequest struct {
	Name            string `json:"name" binding:"required"`
	Address         string `json:"address"`
	Description     string `json:"description"`
	HourlyRateCents int64  `json:"hourlyRateCents"`
}

// CreateLot POST /api/admin/lots
func (h *HTTPHandler) CreateLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	l := &ParkingLot{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Address:         strings.TrimSpace(req.Address),
		Description:     strings.TrimSpace(req.Description),
		HourlyRateCents: req.HourlyRateCents,
	}
	if err := h.repo.CreateLot(c.Request.Context(), l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create parking lot"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"parkingLot": l})
}

type updateLotRequest struct {
	Name            *string `json:"name"`
	Address         *string `json:"address"`
	Description     *string `json:"description"`
	HourlyRateCents *int64  `json:"hourlyRateCents"`
}

// UpdateLot PATCH /api/admin/lots/:lotId
func (h *HTTPHandler) UpdateLot(c *gin.Context) {
	var req updateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.HourlyRateCents != nil {
		updates["hourly_rate_cents"] = *req.HourlyRateCents
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	l, err := h.repo.UpdateLot(c.Request.Context(), c.Param("lotId"), updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "parking lot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update parking lot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parkingLot": l})
}

// DeleteLot DELETE /api/admin/lots/:lotId
func (h *HTTPHandler) DeleteLot(c *gin.Context) {
	err := h.repo.DeleteLot(c.Request.Context(), c.Param("lotId"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "parking lot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete parking lot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "parking lot deleted"})
}

type createSlotRequest struct {
	LotID string `json:"lotId" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Type  string `json:"type"`
}

// CreateSlot POST /api/admin/slots
func (h *HTTPHandler) CreateSlot(c *gin.Context) {
	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lotId and code are required"})
		return
	}
	slotType := req.Type
	if slotType == "" {
		slotType = SlotTypeCar
	}
	if !ValidSlotType(slotType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot type"})
		return
	}

	s := &Slot{
		ID:     uuid.NewString(),
		LotID:  req.LotID,
		Code:   strings.TrimSpace(req.Code),
		Type:   slotType,
		Active: true,
	}
	err := h.repo.CreateSlot(c.Request.Context(), s)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "slot code already exists in this parking lot"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create slot"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slot": s})
}

type updateSlotRequest struct {
	Code   *string `json:"code"`
	Type   *string `json:"type"`
	Active *bool   `json:"active"`
}

// UpdateSlot PATCH /api/admin/slots/:slotId
func (h *HTTPHandler) UpdateSlot(c *gin.Context) {
	var req updateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Code != nil {
		updates["code"] = strings.TrimSpace(*req.Code)
	}
	if req.Type != nil {
		if !ValidSlotType(*req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot type"})
			return
		}
		updates["type"] = *req.Type
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	s, err := h.repo.UpdateSlot(c.Request.Context(), c.Param("slotId"), updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "slot code already exists in this parking lot"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update slot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": s})
}

// DeleteSlot DELETE /api/admin/slots/:slotId
func (h *HTTPHandler) DeleteSlot(c *gin.Context) {
	err := h.repo.DeleteSlot(c.Request.Context(), c.Param("slotId"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete slot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "slot deleted"})
}

// Analytics GET /api/admin/analytics
func (h *HTTPHandler) Analytics(c *gin.Context) {
	stats, byLot, err := h.repo.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch analytics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "byParkingLot": byLot})
}

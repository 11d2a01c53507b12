package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
	"github.com/ParkEasy/ParkEasy/internal/common/qr"
	"github.com/ParkEasy/ParkEasy/internal/common/server"
)

type HTTPHandler struct {
	engine *Engine
	lc     *Lifecycle
	repo   *Repo
}

func NewHTTPHandler(engine *Engine, lc *Lifecycle, repo *Repo) *HTTPHandler {
	return &HTTPHandler{engine: engine, lc: lc, repo: repo}
}

type reserveRequest struct {
	SlotID    string `json:"slotId" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	VehicleID string `json:"vehicleId" binding:"required"`
}

// Reserve POST /api/bookings
func (h *HTTPHandler) Reserve(c *gin.Context) {
	info, ok := server.AuthFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slotId, startTime, endTime and vehicleId are required"})
		return
	}
	start, err1 := time.Parse(time.RFC3339, req.StartTime)
	end, err2 := time.Parse(time.RFC3339, req.EndTime)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime/endTime must be RFC3339"})
		return
	}

	b, err := h.engine.Reserve(c.Request.Context(), ReserveInput{
		UserID:    info.Subject,
		SlotID:    req.SlotID,
		StartTime: start,
		EndTime:   end,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingVehicleID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "vehicleId is required"})
		case errors.Is(err, ErrInvalidWindow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking window"})
		case errors.Is(err, ErrSlotInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot is not active"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		case errors.Is(err, ErrSlotConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "slot already booked for this time window"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": b, "qrCode": h.qrFor(b.CheckInToken)})
}

// ListMine GET /api/bookings?status=
func (h *HTTPHandler) ListMine(c *gin.Context) {
	info, _ := server.AuthFromContext(c.Request.Context())

	rows, err := h.repo.ListByUser(c.Request.Context(), info.Subject, Status(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": rows})
}

// Get GET /api/bookings/:bookingId
// 车主看自己的，运营看任意。confirmed 状态附带入场二维码。
func (h *HTTPHandler) Get(c *gin.Context) {
	info, _ := server.AuthFromContext(c.Request.Context())

	d, err := h.repo.GetDetail(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking"})
		return
	}
	if d.UserID != info.Subject && !info.IsOperator() {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	resp := gin.H{"booking": d}
	if d.Status == StatusConfirmed {
		resp["qrCode"] = h.qrFor(d.CheckInToken)
	}
	c.JSON(http.StatusOK, resp)
}

// FromQR GET /api/bookings/qr?token=
// 入场码的只读查询入口：闸机先展示预约信息，再调 CheckIn。
func (h *HTTPHandler) FromQR(c *gin.Context) {
	claims, err := auth.ParseCheckInToken(h.lc.authCfg, c.Query("token"))
	if err != nil {
		status := http.StatusForbidden
		msg := "invalid check-in token"
		if errors.Is(err, auth.ErrTokenExpired) {
			msg = "check-in token expired"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	d, err := h.repo.GetDetail(c.Request.Context(), claims.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": d})
}

// Cancel PATCH /api/bookings/:bookingId/cancel
func (h *HTTPHandler) Cancel(c *gin.Context) {
	info, _ := server.AuthFromContext(c.Request.Context())

	b, err := h.lc.Cancel(c.Request.Context(), c.Param("bookingId"), info.Subject, info.IsOperator(), "")
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking cannot be cancelled in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

type checkInRequest struct {
	Token string `json:"token" binding:"required"`
}

// CheckIn POST /api/checkin
func (h *HTTPHandler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	b, err := h.lc.CheckIn(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			c.JSON(http.StatusForbidden, gin.H{"error": "check-in token expired"})
		case errors.Is(err, auth.ErrTokenInvalid):
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid check-in token"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrAlreadyOccupied):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking is already checked in"})
		case errors.Is(err, ErrCheckInTooEarly):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking window has not started yet"})
		case errors.Is(err, ErrCheckInExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking window has already ended"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking is not in a check-in eligible status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check in"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ---- 运营后台 ----

// ListAll GET /api/admin/bookings?status=&lotId=&page=&pageSize=
func (h *HTTPHandler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	rows, err := h.repo.ListAll(c.Request.Context(), Status(c.Query("status")), c.Query("lotId"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": rows})
}

// Approve PATCH /api/admin/bookings/:bookingId/approve
func (h *HTTPHandler) Approve(c *gin.Context) {
	b, err := h.lc.Approve(c.Request.Context(), c.Param("bookingId"))
	h.respondAdminTransition(c, b, err)
}

type declineRequest struct {
	Reason string `json:"reason"`
}

// Decline PATCH /api/admin/bookings/:bookingId/decline
func (h *HTTPHandler) Decline(c *gin.Context) {
	var req declineRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.lc.Decline(c.Request.Context(), c.Param("bookingId"), req.Reason)
	h.respondAdminTransition(c, b, err)
}

// Complete PATCH /api/admin/bookings/:bookingId/complete
func (h *HTTPHandler) Complete(c *gin.Context) {
	b, err := h.lc.Complete(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking is not checked in"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete booking"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// respondAdminTransition 审批接口对「不存在」与「已处理」统一回 404，
// 不向调用方泄露预约当前处于哪个状态。审批放行时窗口已被占的回 409。
func (h *HTTPHandler) respondAdminTransition(c *gin.Context, b *Booking, err error) {
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found or already processed"})
		case errors.Is(err, ErrSlotConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "slot already booked for this time window"})
		case errors.Is(err, ErrSlotInactive):
			c.JSON(http.StatusConflict, gin.H{"error": "slot is no longer active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// qrFor 把入场 token 渲染成 PNG data URL，渲染失败不阻塞主流程。
func (h *HTTPHandler) qrFor(token string) string {
	if token == "" {
		return ""
	}
	dataURL, err := qr.DataURL(token)
	if err != nil {
		return ""
	}
	return dataURL
}

package lot

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx), nil
}

// ---- parking lots ----

func (r *Repo) CreateLot(ctx context.Context, l *ParkingLot) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(l).Error
}

// UpdateLot 部分更新，updates 只包含要改的列。
func (r *Repo) UpdateLot(ctx context.Context, id string, updates map[string]interface{}) (*ParkingLot, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	res := db.Model(&ParkingLot{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetLot(ctx, id)
}

func (r *Repo) DeleteLot(ctx context.Context, id string) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&ParkingLot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) GetLot(ctx context.Context, id string) (*ParkingLot, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var l ParkingLot
	if err := db.Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// LotWithCounts 列表视图：带车位统计。
type LotWithCounts struct {
	ParkingLot
	TotalSlots  int64 `gorm:"column:total_slots" json:"totalSlots"`
	ActiveSlots int64 `gorm:"column:active_slots" json:"activeSlots"`
}

func (r *Repo) ListLots(ctx context.Context) ([]LotWithCounts, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var lots []LotWithCounts
	err = db.Raw(`
		SELECT pl.*,
			COUNT(s.id) AS total_slots,
			COUNT(CASE WHEN s.active THEN 1 END) AS active_slots
		FROM parking_lots pl
		LEFT JOIN slots s ON pl.id = s.lot_id
		GROUP BY pl.id
		ORDER BY pl.created_at DESC`).Scan(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// ---- slots ----

func (r *Repo) CreateSlot(ctx context.Context, s *Slot) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(s).Error
}

func (r *Repo) UpdateSlot(ctx context.Context, id string, updates map[string]interface{}) (*Slot, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	res := db.Model(&Slot{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetSlot(ctx, id)
}

func (r *Repo) DeleteSlot(ctx context.Context, id string) error {
	db, err := r.withCtx(ctx)
	if err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&Slot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) GetSlot(ctx context.Context, id string) (*Slot, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var s Slot
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ---- availability ----

// Window 查询时间窗，半开区间 [Start, End)。
type Window struct {
	Start time.Time
	End   time.Time
}

// SlotAvailability 可用性视图。WindowChecked=false 表示未给时间窗，
// is_available 只反映 active 标志，不代表当下没人占用。
type SlotAvailability struct {
	Slot
	IsAvailable   bool `gorm:"column:is_available" json:"isAvailable"`
	WindowChecked bool `gorm:"-" json:"windowChecked"`
}

// occupyingStatuses 参与可用性/冲突计算的预约状态
// （与 booking 包的 confirmed / occupied 保持一致）。
var occupyingStatuses = []string{"confirmed", "occupied"}

// ListSlotsAvailability 某停车场全部车位 + 可用性标志。
// 可用性永远从当前预约行现算，不做缓存；半开区间重叠判定：
// NOT (end1 <= start2 OR start1 >= end2)。
func (r *Repo) ListSlotsAvailability(ctx context.Context, lotID string, w *Window) ([]SlotAvailability, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, err
	}

	var rows []SlotAvailability
	if w == nil {
		err = db.Raw(`
			SELECT s.*, s.active AS is_available
			FROM slots s
			WHERE s.lot_id = ?
			ORDER BY s.code`, lotID).Scan(&rows).Error
	} else {
		err = db.Raw(`
			SELECT s.*,
				(s.active AND NOT EXISTS (
					SELECT 1 FROM bookings b
					WHERE b.slot_id = s.id
					AND b.status IN ?
					AND b.start_time < ? AND b.end_time > ?
				)) AS is_available
			FROM slots s
			WHERE s.lot_id = ?
			ORDER BY s.code`, occupyingStatuses, w.End, w.Start, lotID).Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].WindowChecked = w != nil
	}
	return rows, nil
}

// ---- admin analytics ----

type OverallStats struct {
	TotalParkingLots  int64 `gorm:"column:total_parking_lots" json:"totalParkingLots"`
	TotalSlots        int64 `gorm:"column:total_slots" json:"totalSlots"`
	ActiveSlots       int64 `gorm:"column:active_slots" json:"activeSlots"`
	TotalUsers        int64 `gorm:"column:total_users" json:"totalUsers"`
	TotalBookings     int64 `gorm:"column:total_bookings" json:"totalBookings"`
	ConfirmedBookings int64 `gorm:"column:confirmed_bookings" json:"confirmedBookings"`
	CompletedBookings int64 `gorm:"column:completed_bookings" json:"completedBookings"`
	CancelledBookings int64 `gorm:"column:cancelled_bookings" json:"cancelledBookings"`
}

type LotBookingStats struct {
	ID            string `gorm:"column:id" json:"id"`
	Name          string `gorm:"column:name" json:"name"`
	TotalBookings int64  `gorm:"column:total_bookings" json:"totalBookings"`
	ActiveCount   int64  `gorm:"column:active_bookings" json:"activeBookings"`
}

func (r *Repo) Analytics(ctx context.Context) (*OverallStats, []LotBookingStats, error) {
	db, err := r.withCtx(ctx)
	if err != nil {
		return nil, nil, err
	}

	var stats OverallStats
	if err := db.Raw(`
		SELECT
			(SELECT COUNT(*) FROM parking_lots) AS total_parking_lots,
			(SELECT COUNT(*) FROM slots) AS total_slots,
			(SELECT COUNT(*) FROM slots WHERE active) AS active_slots,
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM bookings) AS total_bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'confirmed') AS confirmed_bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'completed') AS completed_bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'cancelled') AS cancelled_bookings
	`).Scan(&stats).Error; err != nil {
		return nil, nil, err
	}

	var byLot []LotBookingStats
	if err := db.Raw(`
		SELECT pl.id, pl.name,
			COUNT(b.id) AS total_bookings,
			COUNT(CASE WHEN b.status IN ? THEN 1 END) AS active_bookings
		FROM parking_lots pl
		LEFT JOIN slots s ON pl.id = s.lot_id
		LEFT JOIN bookings b ON s.id = b.slot_id
		GROUP BY pl.id, pl.name
		ORDER BY total_bookings DESC`, occupyingStatuses).Scan(&byLot).Error; err != nil {
		return nil, nil, err
	}

	return &stats, byLot, nil
}

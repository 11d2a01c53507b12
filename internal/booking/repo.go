package booking

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ParkEasy/ParkEasy/internal/lot"
)

// Repo 封装 bookings 表访问与行锁获取。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// InTx 在单个数据库事务内执行 fn，fn 返回错误则整体回滚。
// 传给 fn 的 Repo 绑定事务句柄，锁在提交/回滚时释放。
func (r *Repo) InTx(ctx context.Context, fn func(tx *Repo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{db: tx})
	})
}

// LockSlot 以 SELECT ... FOR UPDATE 锁定车位行，作为该车位预约的串行化点。
// 必须先于 LockOverlapping 调用，保证全局加锁顺序一致。
func (r *Repo) LockSlot(ctx context.Context, slotID string) (*lot.Slot, error) {
	var s lot.Slot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", slotID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LockOverlapping 锁定并返回与 [start, end) 重叠的占窗预约。
// 半开区间谓词：b.start_time < end AND b.end_time > start。
func (r *Repo) LockOverlapping(ctx context.Context, slotID string, start, end time.Time) ([]Booking, error) {
	var rows []Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			slotID, OccupyingStatuses, end, start).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) Save(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetForUpdate 锁定单条预约行，供状态迁移使用。
func (r *Repo) GetForUpdate(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SlotLotID 查车位所属场库，用于事件路由，不加锁。
func (r *Repo) SlotLotID(ctx context.Context, slotID string) (string, error) {
	var lotID string
	err := r.db.WithContext(ctx).
		Model(&lot.Slot{}).
		Select("lot_id").
		Where("id = ?", slotID).
		Scan(&lotID).Error
	return lotID, err
}

// Detail 是带车位/场库/车主信息的预约视图，供查询接口使用。
type Detail struct {
	Booking
	SlotCode        string `json:"slotCode"`
	SlotType        string `json:"slotType"`
	LotID           string `json:"lotId"`
	LotName         string `json:"lotName"`
	LotAddress      string `json:"lotAddress"`
	HourlyRateCents int64  `json:"hourlyRateCents"`
	UserName        string `json:"userName"`
	UserEmail       string `json:"userEmail"`
}

const detailSelect = `
SELECT b.*,
       s.code AS slot_code, s.type AS slot_type,
       l.id AS lot_id, l.name AS lot_name, l.address AS lot_address, l.hourly_rate_cents,
       u.name AS user_name, u.email AS user_email
FROM bookings b
JOIN slots s ON s.id = b.slot_id
JOIN parking_lots l ON l.id = s.lot_id
JOIN users u ON u.id = b.user_id`

func (r *Repo) GetDetail(ctx context.Context, id string) (*Detail, error) {
	var d Detail
	err := r.db.WithContext(ctx).
		Raw(detailSelect+" WHERE b.id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByUser 返回某车主的预约，按开始时间倒序，可按状态过滤。
func (r *Repo) ListByUser(ctx context.Context, userID string, status Status) ([]Detail, error) {
	q := detailSelect + " WHERE b.user_id = ?"
	args := []interface{}{userID}
	if status != "" {
		q += " AND b.status = ?"
		args = append(args, status)
	}
	q += " ORDER BY b.start_time DESC"

	var rows []Detail
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll 运营侧全量列表，可按状态与场库过滤，分页。
func (r *Repo) ListAll(ctx context.Context, status Status, lotID string, page, pageSize int) ([]Detail, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := detailSelect + " WHERE 1 = 1"
	args := []interface{}{}
	if status != "" {
		q += " AND b.status = ?"
		args = append(args, status)
	}
	if lotID != "" {
		q += " AND l.id = ?"
		args = append(args, lotID)
	}
	q += " ORDER BY b.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	var rows []Detail
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLapsed 返回某状态下时间窗已过期的预约 ID，供后台清扫使用。
func (r *Repo) ListLapsed(ctx context.Context, status Status, before time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("id").
		Where("status = ? AND end_time < ?", status, before).
		Scan(&ids).Error
	return ids, err
}

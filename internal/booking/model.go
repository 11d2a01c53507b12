package booking

import "time"

// Status 预约状态枚举（持久化为字符串）。
type Status string

const (
	StatusRequested Status = "requested" // 待运营审批（审批流配置下的初始状态）
	StatusConfirmed Status = "confirmed" // 已确认，占用时间窗
	StatusOccupied  Status = "occupied"  // 已扫码入场
	StatusCompleted Status = "completed" // 已完成
	StatusCancelled Status = "cancelled" // 已取消（车主/运营/系统）
	StatusDeclined  Status = "declined"  // 审批拒绝
)

// OccupyingStatuses 参与冲突判定与可用性计算的状态。
// requested 不占窗：未审批通过前不阻塞他人预约。
var OccupyingStatuses = []Status{StatusConfirmed, StatusOccupied}

// Booking 是 bookings 表的 GORM 模型。终态行保留不删，作审计历史。
// (slot_id, status, start_time, end_time) 组合索引服务重叠加锁查询。
type Booking struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	UserID string `gorm:"index;size:36;not null" json:"userId"`
	SlotID string `gorm:"index:idx_slot_status_window,priority:1;size:36;not null" json:"slotId"`
	Status Status `gorm:"type:varchar(16);index:idx_slot_status_window,priority:2;not null" json:"status"`

	// 时间窗为半开区间 [StartTime, EndTime)，均为 UTC。
	StartTime time.Time `gorm:"index:idx_slot_status_window,priority:3;not null" json:"startTime"`
	EndTime   time.Time `gorm:"index:idx_slot_status_window,priority:4;not null" json:"endTime"`

	VehicleID     string `gorm:"size:32;not null" json:"vehicleId"` // 车牌，入库前 trim + 大写
	CheckInToken  string `gorm:"size:512" json:"-"`                 // 入场二维码 token，不直接外发，展示层转二维码
	DeclineReason string `gorm:"size:255" json:"declineReason,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"` // 确认时间：审批通过时刻，或直接确认流下的创建时刻
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"` // 入场时间
	CompletedAt *time.Time `json:"completedAt,omitempty"` // 完成时间
	CancelledAt *time.Time `json:"cancelledAt,omitempty"` // 取消/拒绝时间
}

// WindowsOverlap 半开区间重叠判定：
// [s1,e1) 与 [s2,e2) 冲突当且仅当 NOT (e1 <= s2 OR s1 >= e2)。
// 首尾相接（e1 == s2）不算冲突。
func WindowsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

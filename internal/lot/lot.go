package lot

import "time"

// 车位类型枚举
const (
	SlotTypeCar  = "car"
	SlotTypeBike = "bike"
	SlotTypeEV   = "ev"
)

// ValidSlotType 车位类型是否合法。
func ValidSlotType(t string) bool {
	switch t {
	case SlotTypeCar, SlotTypeBike, SlotTypeEV:
		return true
	}
	return false
}

// ParkingLot 是 parking_lots 表的 GORM 模型。
// 预约核心只读（算价用 hourly_rate），增删改走运营后台。
type ParkingLot struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	Address         string    `gorm:"size:255" json:"address"`
	Description     string    `gorm:"size:512" json:"description"`
	HourlyRateCents int64     `gorm:"not null;default:0" json:"hourlyRateCents"` // 单位：分
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ParkingLot) TableName() string { return "parking_lots" }

// Slot 是 slots 表的 GORM 模型。预约核心把它当作可加锁资源：
// active 控制能否接新预约，行本身的生命周期归库存管理。
// (lot_id, code) 唯一。
type Slot struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	LotID     string    `gorm:"uniqueIndex:uk_lot_code;index;size:36;not null" json:"lotId"`
	Code      string    `gorm:"uniqueIndex:uk_lot_code;size:32;not null" json:"code"` // 场内编号，如 A-01
	Type      string    `gorm:"size:16;not null;default:'car'" json:"type"`           // car / bike / ev
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Slot) TableName() string { return "slots" }

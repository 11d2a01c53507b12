package relay

// 领域事件类型。预约核心在事务提交之后发布，fire-and-forget。
const (
	EventSlotReserved     = "slot_reserved"
	EventBookingApproved  = "booking_approved"
	EventBookingDeclined  = "booking_declined"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCheckedIn = "booking_checked_in"
	EventBookingCompleted = "booking_completed"
	EventSlotUpdated      = "slot_updated"
)

// Event 广播给 lot 房间订阅方的载荷。LotID 决定路由（lot 房间），
// 订阅方只收到自己关注的停车场的事件。
type Event struct {
	Type      string `json:"type"`
	LotID     string `json:"lot_id"`
	SlotID    string `json:"slot_id,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

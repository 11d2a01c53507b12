package booking

import "time"

// 状态机定义：键为当前状态，值为允许迁出的目标状态集合。
// completed / cancelled / declined 为终态，无出边。
var stateTransitions = map[Status][]Status{
	StatusRequested: {StatusConfirmed, StatusDeclined, StatusCancelled},
	StatusConfirmed: {StatusOccupied, StatusCancelled},
	StatusOccupied:  {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusDeclined:  {},
}

// CanTransition 检查从 from 到 to 的迁移是否合法。自迁移视为非法。
func CanTransition(from, to Status) bool {
	allowed, ok := stateTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 在内存中应用一次状态迁移并打上对应时间戳。
// 调用方持有行锁，提交前不可见。
func ApplyTransition(b *Booking, to Status, at time.Time) error {
	if !CanTransition(b.Status, to) {
		return ErrInvalidTransition
	}
	b.Status = to
	switch to {
	case StatusConfirmed:
		b.ConfirmedAt = &at
	case StatusOccupied:
		b.CheckedInAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	case StatusCancelled, StatusDeclined:
		b.CancelledAt = &at
	}
	return nil
}

// IsTerminal 判断状态是否为终态。
func IsTerminal(s Status) bool {
	allowed, ok := stateTransitions[s]
	return ok && len(allowed) == 0
}

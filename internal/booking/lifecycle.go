package booking

import (
	"context"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/ParkEasy/ParkEasy/internal/common/logger"
	"github.com/ParkEasy/ParkEasy/internal/relay"
)

// Lifecycle 负责已创建预约的状态迁移。每次迁移都在事务内
// FOR UPDATE 锁定预约行后校验前置状态，并发请求只有一个成功。
type Lifecycle struct {
	repo    *Repo
	authCfg config.AuthConfig
	pub     relay.Publisher
	log     logger.Logger
	now     func() time.Time
}

func NewLifecycle(repo *Repo, authCfg config.AuthConfig, pub relay.Publisher, log logger.Logger) *Lifecycle {
	if pub == nil {
		pub = relay.Noop{}
	}
	return &Lifecycle{
		repo:    repo,
		authCfg: authCfg,
		pub:     pub,
		log:     log,
		now:     time.Now,
	}
}

// approveGate 审批放行前置检查：必须仍处于 requested，
// 且放行后不会与任何已占窗预约重叠。occupying 为行锁内的重查结果。
func approveGate(row *Booking, occupying []Booking) error {
	if row.Status != StatusRequested {
		return ErrInvalidTransition
	}
	for _, o := range occupying {
		if o.ID == row.ID {
			continue
		}
		if WindowsOverlap(row.StartTime, row.EndTime, o.StartTime, o.EndTime) {
			return ErrSlotConflict
		}
	}
	return nil
}

// Approve 运营审批通过：requested -> confirmed。
// requested 不占窗，审批放行才是占窗时刻，所以这里按 Reserve 的
// 加锁顺序（先车位行、再预约行）重查一次重叠：两个窗口互相重叠的
// requested 只有先被审批的能变成 confirmed，后一个报冲突。
func (l *Lifecycle) Approve(ctx context.Context, bookingID string) (*Booking, error) {
	now := l.now().UTC()
	var b *Booking
	var lotID string
	err := l.repo.InTx(ctx, func(tx *Repo) error {
		peek, lockErr := tx.GetByID(ctx, bookingID)
		if lockErr != nil {
			return lockErr
		}
		slot, lockErr := tx.LockSlot(ctx, peek.SlotID)
		if lockErr != nil {
			return lockErr
		}
		if !slot.Active {
			return ErrSlotInactive
		}
		lotID = slot.LotID

		row, lockErr := tx.GetForUpdate(ctx, bookingID)
		if lockErr != nil {
			return lockErr
		}
		occupying, lockErr := tx.LockOverlapping(ctx, row.SlotID, row.StartTime, row.EndTime)
		if lockErr != nil {
			return lockErr
		}
		if gateErr := approveGate(row, occupying); gateErr != nil {
			return gateErr
		}
		if applyErr := ApplyTransition(row, StatusConfirmed, now); applyErr != nil {
			return applyErr
		}
		b = row
		return tx.Save(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(map[string]interface{}{
		"booking_id": b.ID,
		"status":     b.Status,
	}).Info("booking status changed")
	l.publish(ctx, relay.EventBookingApproved, lotID, b, "")
	return b, nil
}

// Decline 运营审批拒绝：requested -> declined，原因落库并随事件广播。
func (l *Lifecycle) Decline(ctx context.Context, bookingID, reason string) (*Booking, error) {
	return l.transition(ctx, bookingID, StatusDeclined, reason, relay.EventBookingDeclined)
}

// Complete 运营标记离场：occupied -> completed。
func (l *Lifecycle) Complete(ctx context.Context, bookingID string) (*Booking, error) {
	return l.transition(ctx, bookingID, StatusCompleted, "", relay.EventBookingCompleted)
}

// Cancel 取消预约。车主只能取消自己的预约，运营可取消任意预约；
// callerID 为空表示系统发起（后台清扫），不做归属校验。
func (l *Lifecycle) Cancel(ctx context.Context, bookingID, callerID string, operator bool, reason string) (*Booking, error) {
	var b *Booking
	var lotID string
	err := l.repo.InTx(ctx, func(tx *Repo) error {
		row, lockErr := tx.GetForUpdate(ctx, bookingID)
		if lockErr != nil {
			return lockErr
		}
		if callerID != "" && !operator && row.UserID != callerID {
			return ErrNotOwner
		}
		if applyErr := ApplyTransition(row, StatusCancelled, l.now().UTC()); applyErr != nil {
			return applyErr
		}
		if reason != "" {
			row.DeclineReason = reason
		}
		b = row
		lotID, lockErr = tx.SlotLotID(ctx, row.SlotID)
		if lockErr != nil {
			return lockErr
		}
		return tx.Save(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithField("booking_id", b.ID).Info("booking cancelled")
	l.publish(ctx, relay.EventBookingCancelled, lotID, b, reason)
	return b, nil
}

// checkInGate 入场前置检查：token 归属、状态、时间窗。
// 时间窗按闭区间 [start, end] 判定：正好在结束时刻扫码仍放行。
func checkInGate(row *Booking, userID string, now time.Time) error {
	if row.UserID != userID {
		return auth.ErrTokenInvalid
	}
	switch row.Status {
	case StatusConfirmed:
	case StatusOccupied:
		return ErrAlreadyOccupied
	default:
		return ErrInvalidTransition
	}
	if now.Before(row.StartTime) {
		return ErrCheckInTooEarly
	}
	if now.After(row.EndTime) {
		return ErrCheckInExpired
	}
	return nil
}

// CheckIn 扫码入场。token 校验（签名 / 过期 / typ）在锁外完成；
// 归属、状态与时间窗校验在行锁内完成，重复扫码第二次会看到 occupied。
func (l *Lifecycle) CheckIn(ctx context.Context, token string) (*Booking, error) {
	claims, err := auth.ParseCheckInToken(l.authCfg, token)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	var b *Booking
	var lotID string
	err = l.repo.InTx(ctx, func(tx *Repo) error {
		row, lockErr := tx.GetForUpdate(ctx, claims.BookingID)
		if lockErr != nil {
			return lockErr
		}
		if gateErr := checkInGate(row, claims.UserID, now); gateErr != nil {
			return gateErr
		}

		if applyErr := ApplyTransition(row, StatusOccupied, now); applyErr != nil {
			return applyErr
		}
		b = row
		lotID, lockErr = tx.SlotLotID(ctx, row.SlotID)
		if lockErr != nil {
			return lockErr
		}
		return tx.Save(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(map[string]interface{}{
		"booking_id": b.ID,
		"user_id":    b.UserID,
	}).Info("booking checked in")
	l.publish(ctx, relay.EventBookingCheckedIn, lotID, b, "")
	return b, nil
}

// transition 通用迁移：锁行、校验、落库、发事件。
func (l *Lifecycle) transition(ctx context.Context, bookingID string, to Status, reason, eventType string) (*Booking, error) {
	var b *Booking
	var lotID string
	err := l.repo.InTx(ctx, func(tx *Repo) error {
		row, lockErr := tx.GetForUpdate(ctx, bookingID)
		if lockErr != nil {
			return lockErr
		}
		if applyErr := ApplyTransition(row, to, l.now().UTC()); applyErr != nil {
			return applyErr
		}
		if reason != "" {
			row.DeclineReason = reason
		}
		b = row
		lotID, lockErr = tx.SlotLotID(ctx, row.SlotID)
		if lockErr != nil {
			return lockErr
		}
		return tx.Save(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(map[string]interface{}{
		"booking_id": b.ID,
		"status":     b.Status,
	}).Info("booking status changed")
	l.publish(ctx, eventType, lotID, b, reason)
	return b, nil
}

func (l *Lifecycle) publish(ctx context.Context, eventType, lotID string, b *Booking, reason string) {
	l.pub.Publish(ctx, relay.Event{
		Type:      eventType,
		LotID:     lotID,
		SlotID:    b.SlotID,
		BookingID: b.ID,
		Status:    string(b.Status),
		Reason:    reason,
	})
}

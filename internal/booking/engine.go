package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ParkEasy/ParkEasy/internal/common/auth"
	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/ParkEasy/ParkEasy/internal/common/logger"
	"github.com/ParkEasy/ParkEasy/internal/relay"
)

// clockSkewTolerance 允许的客户端时钟偏差：开始时间最多比服务器当前时间早这么多。
const clockSkewTolerance = 5 * time.Minute

// Engine 预约创建核心。冲突检测不依赖唯一约束，
// 而是通过「先锁车位行、再锁重叠预约行」的悲观锁串行化同车位的并发请求。
type Engine struct {
	repo    *Repo
	authCfg config.AuthConfig
	cfg     config.BookingConfig
	pub     relay.Publisher
	log     logger.Logger
	now     func() time.Time // 可注入，测试用
}

func NewEngine(repo *Repo, authCfg config.AuthConfig, cfg config.BookingConfig, pub relay.Publisher, log logger.Logger) *Engine {
	if pub == nil {
		pub = relay.Noop{}
	}
	return &Engine{
		repo:    repo,
		authCfg: authCfg,
		cfg:     cfg,
		pub:     pub,
		log:     log,
		now:     time.Now,
	}
}

// ReserveInput 创建预约的入参。
type ReserveInput struct {
	UserID    string
	SlotID    string
	StartTime time.Time
	EndTime   time.Time
	VehicleID string
}

// Validate 纯内存校验，进事务之前完成。
func (in *ReserveInput) Validate(now time.Time) error {
	in.VehicleID = strings.ToUpper(strings.TrimSpace(in.VehicleID))
	if in.VehicleID == "" {
		return ErrMissingVehicleID
	}
	if in.SlotID == "" || in.UserID == "" {
		return ErrInvalidWindow
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return ErrInvalidWindow
	}
	if !in.StartTime.Before(in.EndTime) {
		return ErrInvalidWindow
	}
	if in.StartTime.Before(now.Add(-clockSkewTolerance)) {
		return ErrInvalidWindow
	}
	return nil
}

// Reserve 创建预约。事务内：
//  1. FOR UPDATE 锁车位行（该车位的串行化点），校验存在且 active；
//  2. FOR UPDATE 锁重叠的 confirmed/occupied 预约行，有则冲突回滚；
//  3. 写入预约行并签发入场码。
//
// 两个并发请求竞争同一车位时，后到者在第 1 步阻塞，先到者提交后
// 能看到新插入的行，不存在检查与插入之间的窗口。
// 锁等待上限由连接串的 innodb_lock_wait_timeout 控制，超时回滚报错。
func (e *Engine) Reserve(ctx context.Context, in ReserveInput) (*Booking, error) {
	now := e.now().UTC()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	initial := StatusConfirmed
	if e.cfg.RequireApproval {
		initial = StatusRequested
	}

	b := &Booking{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		SlotID:    in.SlotID,
		Status:    initial,
		StartTime: in.StartTime.UTC(),
		EndTime:   in.EndTime.UTC(),
		VehicleID: in.VehicleID,
	}
	if initial == StatusConfirmed {
		b.ConfirmedAt = &now
	}

	var lotID string
	err := e.repo.InTx(ctx, func(tx *Repo) error {
		slot, lockErr := tx.LockSlot(ctx, in.SlotID)
		if lockErr != nil {
			return lockErr
		}
		if !slot.Active {
			return ErrSlotInactive
		}
		lotID = slot.LotID

		overlapping, lockErr := tx.LockOverlapping(ctx, in.SlotID, b.StartTime, b.EndTime)
		if lockErr != nil {
			return lockErr
		}
		if len(overlapping) > 0 {
			return ErrSlotConflict
		}

		// 入场码有效期覆盖整个预约窗，外加宽限期
		ttl := b.EndTime.Sub(now) + e.cfg.CheckInGrace()
		token, _, signErr := auth.GenerateCheckInToken(e.authCfg, b.ID, b.UserID, ttl)
		if signErr != nil {
			return signErr
		}
		b.CheckInToken = token

		return tx.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"booking_id": b.ID,
		"slot_id":    b.SlotID,
		"user_id":    b.UserID,
		"status":     b.Status,
	}).Info("booking created")

	e.pub.Publish(ctx, relay.Event{
		Type:      relay.EventSlotReserved,
		LotID:     lotID,
		SlotID:    b.SlotID,
		BookingID: b.ID,
		Status:    string(b.Status),
	})
	return b, nil
}

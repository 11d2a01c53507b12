package booking

import (
	"context"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/logger"
)

// ReasonExpiredUnused 系统取消原因：确认后到结束时间一直未入场。
const ReasonExpiredUnused = "expired_unused"

// Sweeper 后台清扫：
//   - confirmed 且时间窗已过 -> cancelled（原因 expired_unused）
//   - occupied 且时间窗已过  -> completed
//
// 逐条走 Lifecycle 的行锁迁移，与在线请求竞争同一把锁，先到先得。
type Sweeper struct {
	repo     *Repo
	lc       *Lifecycle
	interval time.Duration
	log      logger.Logger
}

func NewSweeper(repo *Repo, lc *Lifecycle, interval time.Duration, log logger.Logger) *Sweeper {
	return &Sweeper{repo: repo, lc: lc, interval: interval, log: log}
}

// Run 周期执行清扫直到 ctx 取消。interval <= 0 时不启动。
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce 执行一轮清扫。单条失败只记日志，不影响其余行。
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := time.Now().UTC()

	lapsed, err := s.repo.ListLapsed(ctx, StatusConfirmed, now)
	if err != nil {
		s.log.Errorf("sweep: list lapsed confirmed failed: %v", err)
	} else {
		for _, id := range lapsed {
			if _, err := s.lc.Cancel(ctx, id, "", true, ReasonExpiredUnused); err != nil {
				s.log.Warnf("sweep: cancel %s failed: %v", id, err)
			}
		}
	}

	overdue, err := s.repo.ListLapsed(ctx, StatusOccupied, now)
	if err != nil {
		s.log.Errorf("sweep: list lapsed occupied failed: %v", err)
		return
	}
	for _, id := range overdue {
		if _, err := s.lc.Complete(ctx, id); err != nil {
			s.log.Warnf("sweep: complete %s failed: %v", id, err)
		}
	}
}

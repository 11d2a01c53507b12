package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMySQL 初始化 gorm + MySQL 连接池。
//
// 预约核心依赖行锁（SELECT ... FOR UPDATE），lockWaitSeconds 通过 DSN
// 下发 innodb_lock_wait_timeout，锁等待超时后语句报错、事务整体回滚，
// 调用方可安全重试（未提交不会留下任何写入）。
func NewMySQL(host string, port int, user, password, database string, maxIdle, maxOpen, lockWaitSeconds int) (*gorm.DB, error) {
	if lockWaitSeconds <= 0 {
		lockWaitSeconds = 5
	}

	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&innodb_lock_wait_timeout=%d",
		user, password, host, port, database, lockWaitSeconds,
	)

	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// 唯一键冲突等转成 gorm.ErrDuplicatedKey，上层用 errors.Is 分支
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return gormDB, nil
}

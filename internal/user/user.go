package user

import (
	"strings"
	"time"
)

// 角色是封闭集合：regular 普通用户，operator 运营（审批/后台）。
const (
	RoleRegular  = "regular"
	RoleOperator = "operator"
)

// ValidRole 角色是否合法。
func ValidRole(r string) bool {
	switch r {
	case RoleRegular, RoleOperator:
		return true
	}
	return false
}

// User 是 users 表的 GORM 模型。身份校验由外部身份源完成，
// 首次见到某个 external_uid 时落库；用户从不物理删除。
type User struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:64;not null"`
	Email       string    `gorm:"size:128;not null"`
	ExternalUID string    `gorm:"uniqueIndex;size:128;not null"` // 身份源下发的稳定标识
	Role        string    `gorm:"size:16;not null"`              // regular / operator
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// IsOperator 运营角色判断。
func (u User) IsOperator() bool {
	return u.Role == RoleOperator
}

// DisplayName 回落顺序：显式 name -> email 前缀。
func DisplayName(name, email string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

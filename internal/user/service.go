package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 封装用户领域用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// IdentityInput 身份源回调下发的三元组。校验本身在外部完成，
// 这里只做映射：首次见到 external_uid 就建用户（角色 regular）。
type IdentityInput struct {
	ExternalUID string
	Email       string
	Name        string
}

func (s *Service) ResolveIdentity(ctx context.Context, in IdentityInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	uid := strings.TrimSpace(in.ExternalUID)
	email := strings.TrimSpace(in.Email)
	if uid == "" || email == "" {
		return nil, fmt.Errorf("external_uid/email required")
	}

	u, err := s.repo.FindByExternalUID(ctx, uid)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u = &User{
		ID:          uuid.NewString(),
		Name:        DisplayName(in.Name, email),
		Email:       email,
		ExternalUID: uid,
		Role:        RoleRegular,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetRole 角色只能由运营操作改动，合法性在这里把关。
func (s *Service) SetRole(ctx context.Context, userID, role string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id required")
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, offset, limit)
}

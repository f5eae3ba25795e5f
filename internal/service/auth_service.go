package service

import (
	"context"
	"errors"
	"strings"

	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/model"
	"scorm_host_backend/internal/repository"
	"scorm_host_backend/internal/util"

	"gorm.io/gorm"
)

// AuthService 学习者登记与令牌签发。身份源由外部系统负责，这里只保存运行时需要的最少信息
type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=learner admin"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterUserRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrEmailRegistered
	}

	user := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: email,
		Role:  model.RoleLearner,
	}
	if req.Role != "" {
		user.Role = model.UserRole(req.Role)
	}
	if req.ID != "" {
		if user.ID, err = util.ParseID(req.ID); err != nil {
			return nil, err
		}
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}
	return user, nil
}

// IssueToken 按邮箱签发令牌，仅在非 release 模式下开放
func (s *AuthService) IssueToken(ctx context.Context, email string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, util.ErrUserNotFound
	}

	token, err := util.GenerateJWT(user.ID, user.Email, string(user.Role), s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

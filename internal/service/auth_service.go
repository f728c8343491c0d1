package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bidmarket/internal/domain"
	"bidmarket/pkg/utils"
)

// AuthService 按请求校验用户名/密码，没有 token/session 层
type AuthService struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewAuthService(users domain.UserRepository, log *zap.Logger) *AuthService {
	return &AuthService{users: users, log: log}
}

type SignupInput struct {
	Username string
	LEI      string
	Email    string
	Phone    string
	Role     domain.Role
	City     string
	Address1 string
	Address2 string
	Password string
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		s.log.Error("signup duplicate check", zap.Error(err))
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUser
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		s.log.Error("password hash", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Username:     in.Username,
		LEI:          in.LEI,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		City:         in.City,
		Address1:     in.Address1,
		Address2:     in.Address2,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		s.log.Error("signup insert", zap.Error(err))
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login 区分“用户不存在”和“密码错误”，历史客户端依赖 404/401 的差别（见 DESIGN.md）
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error("user lookup", zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrWrongPassword
	}
	return u, nil
}

// Authenticate 供中间件使用：缺少凭证在落库前直接拒绝
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}
	return s.Login(ctx, username, password)
}

type ProfileUpdateInput struct {
	Email    string
	Phone    string
	City     string
	Address1 string
	Address2 string
	Password string // 可选，非空则重新散列
}

// UpdateProfile 只改联系信息与密码；username 和 role 注册后不可变
func (s *AuthService) UpdateProfile(ctx context.Context, principal *domain.User, in ProfileUpdateInput) (*domain.User, error) {
	u := *principal
	u.Email = in.Email
	u.Phone = in.Phone
	u.City = in.City
	u.Address1 = in.Address1
	u.Address2 = in.Address2
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			s.log.Error("password hash", zap.Error(err))
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, &u); err != nil {
		s.log.Error("profile update", zap.Error(err))
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &u, nil
}

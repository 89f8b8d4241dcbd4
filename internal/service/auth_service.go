package service

import (
	"errors"
	"fmt"

	"edu_consult_backend/internal/config"
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/repository"
	"edu_consult_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo      *repository.UserRepository
	CounselorRepo *repository.CounselorRepository
	Config        *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, counselorRepo *repository.CounselorRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, CounselorRepo: counselorRepo, Config: cfg}
}

// RegisterRequest 注册入参，顾问注册时 fullName 落到顾问画像
type RegisterRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Role     model.UserRole `json:"role"`
	Language string         `json:"language"`
}

// Register 创建账号。顾问角色同时建一条 inactive 的顾问画像，
// 补全画像后才会进入匹配候选集。
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	if req.Role == "" {
		req.Role = model.Student
	}
	if req.Role != model.Student && req.Role != model.RoleCounselor {
		return nil, fmt.Errorf("%w: role must be student or counselor", util.ErrValidation)
	}

	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
		Language: language,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	if req.Role == model.RoleCounselor {
		counselor := &model.Counselor{
			UserID:   user.ID,
			FullName: req.Name,
			Status:   model.CounselorInactive,
		}
		if err := s.CounselorRepo.Create(counselor); err != nil {
			return nil, err
		}
	}
	return user, nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Login(req LoginRequest) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if user.Disabled {
		return nil, util.ErrPermissionDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrUserNotFound
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	// 登录时间更新失败不影响登录本身
	_ = s.UserRepo.UpdateLastLogin(user.ID)
	user.Password = ""
	return &LoginResult{Token: token, User: user}, nil
}

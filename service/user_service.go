package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	*Service
	tokenService  *TokenService
	loginTokenTTL time.Duration
}

func NewUserService(s *Service) *UserService {
	return &UserService{
		Service:       s,
		tokenService:  NewTokenService(s.RDB),
		loginTokenTTL: 7 * 24 * time.Hour,
	}
}

// --- types ---

type UserDTO struct {
	ID          uint64     `json:"id"`
	UID         string     `json:"uid"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	UnitID      *uint64    `json:"unit_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RegisterReq struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"` // 只有 ADMIN 调用方可指定；默认 VISITA
	UnitID   *uint64 `json:"unit_id"`
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		UID:         u.UID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		UnitID:      u.UnitID,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// --- ops ---

// Register 创建用户。用户名/邮箱唯一；角色不合法时落回 VISITA。
func (s *UserService) Register(req RegisterReq) (*UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	var cnt int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, errors.New("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	switch role {
	case models.RoleAdmin, models.RoleUrbanista, models.RoleVisita:
	default:
		role = models.RoleVisita
	}

	u := &models.User{
		UID:      uuid.NewString(),
		Username: username,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: string(hash),
		Role:     role,
		UnitID:   req.UnitID,
		IsActive: true,
	}
	if err := s.DB.Create(u).Error; err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}

// Login 校验密码并签发 token（Redis，多端共存）。
func (s *UserService) Login(ctx context.Context, req LoginReq) (*LoginResp, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	var u models.User
	if err := s.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrForbidden
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid password")
	}

	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, u.ID, s.loginTokenTTL); err != nil {
		return nil, err
	}

	now := time.Now()
	_ = s.DB.Model(&models.User{}).Where("id = ?", u.ID).
		Update("last_login_at", &now).Error
	u.LastLoginAt = &now

	return &LoginResp{Token: token, User: *toUserDTO(&u)}, nil
}

// GetUser 按 ID 取用户
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	var u models.User
	if err := s.DB.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toUserDTO(&u), nil
}

// ListUsers 用户列表（指派下拉用）。只返回启用账号。
func (s *UserService) ListUsers() ([]UserDTO, error) {
	var rows []models.User
	if err := s.DB.Where("is_active = ?", true).Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toUserDTO(&rows[i]))
	}
	return out, nil
}

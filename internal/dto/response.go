package dto

import (
	"time"

	"assignment-tracker/backend/internal/model"
)

// ── 认证模块响应 ──

// TokenResponse 登录/注册成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// ── 用户 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserBrief 关联实体中的用户摘要
type UserBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserResponse 从模型构造用户响应
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserBrief 从模型构造用户摘要；未加载关联时只带 ID
func NewUserBrief(id string, u *model.User) UserBrief {
	if u == nil {
		return UserBrief{ID: id}
	}
	return UserBrief{ID: u.UserID, Name: u.Name, Email: u.Email}
}

package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// 審査ステータス（出品者アカウント・商品で共通）
type ApprovalStatus int

const (
	ApprovalPending  ApprovalStatus = 0
	ApprovalApproved ApprovalStatus = 1
	ApprovalRejected ApprovalStatus = 2
)

func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	default:
		return "pending"
	}
}

type User struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"column:password_hash;not null" json:"-"`
	Role           Role           `gorm:"type:varchar(20);not null;default:'BUYER'" json:"role"`
	FirstName      string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string         `gorm:"type:varchar(100)" json:"last_name"`
	Phone          string         `gorm:"type:varchar(30)" json:"phone"`
	ApprovalStatus ApprovalStatus `gorm:"type:smallint;not null;default:0" json:"approval_status"`
	TokenVersion   int            `gorm:"not null;default:0" json:"-"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// 表示名（姓名が空ならメール）
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

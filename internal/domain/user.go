package domain

import "context"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleMember }

type User struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"size:64;not null" json:"name"`
	Role       Role   `gorm:"size:16;not null" json:"role"`
	Username   string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Credential string `gorm:"size:100;not null" json:"-"`
}

func (User) TableName() string { return "users" }

// 字段长度上限（按字符数），与列宽一致
const (
	MaxNameLen     = 64
	MaxUsernameLen = 64
)

// NewUser 注册参数
type NewUser struct {
	Name       string `json:"name"       binding:"required"`
	Role       Role   `json:"role"`
	Username   string `json:"username"   binding:"required"`
	Credential string `json:"credential" binding:"required"`
}

// Identity 已认证主体（会话快照）
type Identity struct {
	UserID int64 `json:"userId"`
	Role   Role  `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

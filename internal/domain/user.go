package domain

import (
	"context"
	"time"
)

// Role 账户角色，注册时确定，之后不可变更
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleBuyer    Role = "buyer"
)

func (r Role) Valid() bool { return r == RoleSupplier || r == RoleBuyer }

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	LEI          string    `gorm:"column:lei;size:64" json:"lei"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Phone        string    `gorm:"size:32" json:"phone"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	City         string    `gorm:"size:64" json:"city"`
	Address1     string    `gorm:"size:191" json:"address1"`
	Address2     string    `gorm:"size:191" json:"address2"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "app_user" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// FindByUsername 未命中返回 (nil, nil)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// ExistsByUsernameOrEmail 注册前的重复检查
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, u *User) error
}

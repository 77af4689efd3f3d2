package user

import (
	"time"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
)

var (
	ErrNotFound = apperr.NotFound("user not found")
	ErrExists   = apperr.Conflict("username already taken")
)

// Table: users
type User struct {
	ID           uint64     `gorm:"primaryKey;column:id" json:"-"`
	UserID       string     `gorm:"column:user_id;size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	Username     string     `gorm:"column:username;size:64;uniqueIndex:ux_users_username" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;size:72;not null" json:"-"`
	FullName     string     `gorm:"column:full_name;size:255" json:"full_name"`
	Role         actor.Role `gorm:"column:role;size:16;not null" json:"role"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Actor() actor.Actor { return actor.Actor{UserID: u.UserID, Role: u.Role} }

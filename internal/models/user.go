package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleAtendente UserRole = "atendente"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:100;uniqueIndex;not null"`
	SenhaHash string `gorm:"size:255;not null"`
	Role      UserRole `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

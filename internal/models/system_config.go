package models

import "time"

const ConfigKeyAtendentePermissions = "atendente_permissions"

// RolePermissions: abas liberadas para o cargo atendente. Registro único,
// aplicado a todos os atendentes; admin ignora o gating.
type RolePermissions struct {
	Menu    bool `json:"menu"`
	Sales   bool `json:"sales"`
	Orders  bool `json:"orders"`
	Cashier bool `json:"cashier"`
	Stock   bool `json:"stock"`
}

func DefaultAtendentePermissions() RolePermissions {
	return RolePermissions{
		Menu:    true,
		Sales:   true,
		Orders:  true,
		Cashier: false,
		Stock:   false,
	}
}

type SystemConfig struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:50;uniqueIndex;not null"`
	Value     string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

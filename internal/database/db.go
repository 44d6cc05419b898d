package database

import (
	"encoding/json"
	"errors"
	"log"

	"adega-backend/internal/config"
	"adega-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Erro no AutoMigrate: %v", err)
	}

	log.Println("Conexão com o banco OK. Migration concluída.")
}

// Migrate: cria o schema e garante o registro de permissões padrão.
// Separado do Init para os testes poderem rodar em cima de outro banco.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.CashEntry{},
		&models.SystemConfig{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	return seedAtendentePermissions(db)
}

// LockForUpdate: trava a linha durante a transação. SQLite (usado nos testes)
// não tem SELECT ... FOR UPDATE; lá a transação inteira já serializa.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Permissões padrão das abas para atendentes: cardápio, vendas e pedidos
// liberados; caixa e estoque só para admin até o admin mudar.
func seedAtendentePermissions(db *gorm.DB) error {
	var cfg models.SystemConfig
	err := db.Where("key = ?", models.ConfigKeyAtendentePermissions).First(&cfg).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	value, err := json.Marshal(models.DefaultAtendentePermissions())
	if err != nil {
		return err
	}

	return db.Create(&models.SystemConfig{
		Key:   models.ConfigKeyAtendentePermissions,
		Value: string(value),
	}).Error
}

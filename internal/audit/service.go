package audit

import (
	"encoding/json"
	"fmt"

	"adega-backend/internal/auth"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb não aceita string vazia, usa o JSON "null"
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log não gravado: %w", err)
	}

	return nil
}

// UserFromCtx: identifica quem está agindo, para o log. O nome vem do banco
// (denormalizado no log); se não achar, fica o email do token.
func UserFromCtx(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	name, _ := c.Locals(auth.CtxUserEmailKey).(string)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		name = user.Nome
	}
	return userID, name
}

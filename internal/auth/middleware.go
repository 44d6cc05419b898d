package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"adega-backend/internal/config"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey    = "user_id"
	CtxUserEmailKey = "user_email"
	CtxUserRoleKey  = "user_role"
)

// Abas do sistema. Team nunca é liberada para atendente.
const (
	TabMenu    = "menu"
	TabSales   = "sales"
	TabOrders  = "orders"
	TabCashier = "cashier"
	TabStock   = "stock"
	TabTeam    = "team"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Header Authorization ausente")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Formato esperado: 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de assinatura inválido")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Token inválido ou expirado")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Não foi possível ler o token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserEmailKey, claims.Email)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Cargo não identificado")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Você não tem permissão para esta operação")
	}
}

// RequireTab: gating por aba. Admin passa direto; atendente depende do
// registro compartilhado de permissões, relido a cada requisição para que
// mudanças feitas pelo admin valham no próximo acesso.
func RequireTab(tab string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Cargo não identificado")
		}

		if role == models.RoleAdmin {
			return c.Next()
		}

		if tab == TabTeam {
			return fiber.NewError(fiber.StatusForbidden, "Aba de equipe é exclusiva do admin")
		}

		perms, err := LoadAtendentePermissions()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível carregar as permissões")
		}

		allowed := false
		switch tab {
		case TabMenu:
			allowed = perms.Menu
		case TabSales:
			allowed = perms.Sales
		case TabOrders:
			allowed = perms.Orders
		case TabCashier:
			allowed = perms.Cashier
		case TabStock:
			allowed = perms.Stock
		}

		if !allowed {
			return fiber.NewError(fiber.StatusForbidden, "Acesso não liberado para o seu cargo")
		}
		return c.Next()
	}
}

// LoadAtendentePermissions: lê o registro único de permissões. Sem registro
// (ou JSON quebrado) valem os padrões.
func LoadAtendentePermissions() (models.RolePermissions, error) {
	perms := models.DefaultAtendentePermissions()

	var cfg models.SystemConfig
	err := database.DB.Where("key = ?", models.ConfigKeyAtendentePermissions).First(&cfg).Error
	if err != nil {
		return perms, nil
	}

	if err := json.Unmarshal([]byte(cfg.Value), &perms); err != nil {
		return models.DefaultAtendentePermissions(), nil
	}
	return perms, nil
}

package team

import (
	"encoding/json"
	"strings"

	"adega-backend/internal/audit"
	"adega-backend/internal/auth"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Role  string `json:"role"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Nome: u.Nome, Email: u.Email, Role: string(u.Role)}
}

// -------------------------------------------------
// GET /api/team/users
// -------------------------------------------------
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("nome").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao consultar usuários")
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/team/users
// -------------------------------------------------
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		req.Nome = strings.TrimSpace(req.Nome)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Nome == "" || req.Email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Preencha nome e e-mail")
		}
		if len(req.Senha) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "A senha precisa de pelo menos 6 caracteres")
		}

		role := models.UserRole(req.Role)
		if role != models.RoleAdmin && role != models.RoleAtendente {
			return fiber.NewError(fiber.StatusBadRequest, "Role inválida")
		}

		var existente models.User
		if err := database.DB.Where("email = ?", req.Email).First(&existente).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Já existe um usuário com esse e-mail")
		} else if err != gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao consultar usuários")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar a senha")
		}

		user := models.User{
			Nome:      req.Nome,
			Email:     req.Email,
			SenhaHash: string(hash),
			Role:      role,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao criar o usuário")
		}

		userID, userName := audit.UserFromCtx(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: "Usuário criado: " + user.Email,
			After:       user,
		})

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// -------------------------------------------------
// GET /api/team/permissions
// -------------------------------------------------
func GetPermissionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		perms, err := auth.LoadAtendentePermissions()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar as permissões")
		}
		return c.JSON(perms)
	}
}

// -------------------------------------------------
// PUT /api/team/permissions
// Substitui o registro inteiro; não há merge parcial.
// -------------------------------------------------
func UpdatePermissionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RolePermissions
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		antes, _ := auth.LoadAtendentePermissions()

		raw, err := json.Marshal(req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao salvar as permissões")
		}

		var cfg models.SystemConfig
		err = database.DB.Where("key = ?", models.ConfigKeyAtendentePermissions).First(&cfg).Error
		switch err {
		case nil:
			cfg.Value = string(raw)
			if err := database.DB.Save(&cfg).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erro ao salvar as permissões")
			}
		case gorm.ErrRecordNotFound:
			cfg = models.SystemConfig{Key: models.ConfigKeyAtendentePermissions, Value: string(raw)}
			if err := database.DB.Create(&cfg).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erro ao salvar as permissões")
			}
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao salvar as permissões")
		}

		userID, userName := audit.UserFromCtx(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "system_config",
			EntityID:    cfg.ID,
			Action:      models.AuditActionUpdate,
			Description: "Permissões do atendente atualizadas",
			Before:      antes,
			After:       req,
		})

		return c.JSON(req)
	}
}

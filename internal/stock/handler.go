package stock

import (
	"fmt"
	"strconv"
	"strings"

	"adega-backend/internal/audit"
	"adega-backend/internal/database"
	"adega-backend/internal/menu"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpsertProductRequest struct {
	ID        uint      `json:"id"`
	Nome      string    `json:"nome"`
	Preco     ValorFlex `json:"preco"`
	Custo     ValorFlex `json:"custo"`
	Qtd       QtdFlex   `json:"qtd"`
	Categoria string    `json:"categoria"`
}

// -------------------------------------------------
// POST /api/stock/products
// Sem id cria, com id sobrescreve. Na criação vale a trava de duplicidade:
// mesmo nome (ignorando caixa/espaços) na mesma categoria é rejeitado.
// -------------------------------------------------
func UpsertProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpsertProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Nome = strings.TrimSpace(body.Nome)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Preencha Nome e Preço")
		}
		if body.Preco <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Preencha Nome e Preço")
		}
		if body.Custo < 0 {
			body.Custo = 0
		}
		if body.Qtd < 0 {
			body.Qtd = 0
		}

		categoria := models.ParseCategoria(body.Categoria)

		var p models.Product
		action := models.AuditActionUpdate

		if body.ID == 0 {
			if duplicado(body.Nome, categoria, 0) {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Já existe um produto %q na categoria %s", body.Nome, categoria))
			}
			p = models.Product{
				Nome:      body.Nome,
				Preco:     float64(body.Preco),
				Custo:     float64(body.Custo),
				Qtd:       int(body.Qtd),
				Categoria: categoria,
			}
			if err := database.DB.Create(&p).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível salvar o produto")
			}
			action = models.AuditActionCreate
		} else {
			if err := database.DB.First(&p, "id = ?", body.ID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Produto não encontrado")
			}
			p.Nome = body.Nome
			p.Preco = float64(body.Preco)
			p.Custo = float64(body.Custo)
			p.Qtd = int(body.Qtd)
			p.Categoria = categoria
			if err := database.DB.Save(&p).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível salvar o produto")
			}
		}

		userID, userName := audit.UserFromCtx(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      action,
			Description: fmt.Sprintf("Produto salvo: %s (%s)", p.Nome, p.Categoria),
			After:       menu.ToProductResponse(p),
		}); logErr != nil {
			fmt.Printf("Audit log não gravado: %v\n", logErr)
		}

		status := fiber.StatusOK
		if action == models.AuditActionCreate {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(menu.ToProductResponse(p))
	}
}

func duplicado(nome string, categoria models.Categoria, ignorarID uint) bool {
	var existentes []models.Product
	if err := database.DB.Where("categoria = ?", string(categoria)).Find(&existentes).Error; err != nil {
		return false
	}
	alvo := normalizarNome(nome)
	for _, p := range existentes {
		if p.ID != ignorarID && normalizarNome(p.Nome) == alvo {
			return true
		}
	}
	return false
}

// -------------------------------------------------
// DELETE /api/stock/products/:id
// -------------------------------------------------
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID inválido")
		}

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Produto não encontrado")
		}

		if err := database.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o produto")
		}

		userID, userName := audit.UserFromCtx(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Produto removido: %s", p.Nome),
			Before:      menu.ToProductResponse(p),
		}); logErr != nil {
			fmt.Printf("Audit log não gravado: %v\n", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

package menu

import (
	"strings"

	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Limite que marca um produto como "estoque baixo" no cardápio.
const estoqueBaixoLimite = 5

type ProductResponse struct {
	ID        uint             `json:"id"`
	Nome      string           `json:"nome"`
	Preco     float64          `json:"preco"`
	Custo     float64          `json:"custo"`
	Qtd       int              `json:"qtd"`
	Categoria models.Categoria `json:"categoria"`
}

func ToProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Nome:      p.Nome,
		Preco:     p.Preco,
		Custo:     p.Custo,
		Qtd:       p.Qtd,
		Categoria: p.Categoria,
	}
}

// GET /api/products?categoria=Adega&busca=cerveja&estoque=baixo
// Navegação do cardápio, para todo usuário autenticado com a aba liberada.
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		if categoria := strings.TrimSpace(c.Query("categoria")); categoria != "" {
			dbq = dbq.Where("categoria = ?", string(models.ParseCategoria(categoria)))
		}

		if busca := strings.TrimSpace(c.Query("busca")); busca != "" {
			dbq = dbq.Where("LOWER(nome) LIKE ?", "%"+strings.ToLower(busca)+"%")
		}

		if c.Query("estoque") == "baixo" {
			dbq = dbq.Where("qtd < ?", estoqueBaixoLimite).
				Where("categoria NOT IN ?", []string{string(models.CategoriaCombos), string(models.CategoriaDoses)})
		}

		var products []models.Product
		if err := dbq.Order("nome asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os produtos")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, ToProductResponse(p))
		}
		return c.JSON(res)
	}
}

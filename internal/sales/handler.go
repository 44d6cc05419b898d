package sales

import (
	"fmt"
	"strings"
	"time"

	"adega-backend/internal/audit"
	"adega-backend/internal/auth"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Cliente sintético das vendas sem comanda.
const clienteVendaDireta = "Venda Direta"

type QuickSaleItem struct {
	Nome string `json:"nome"`
	Qtd  int    `json:"qtd"`
}

type QuickSaleRequest struct {
	Itens []QuickSaleItem `json:"itens"`
	Forma string          `json:"forma"`
}

type QuickSaleResponse struct {
	OrderID     uint            `json:"order_id"`
	CashEntryID uint            `json:"cash_entry_id"`
	Itens       models.ItemList `json:"itens"`
	Total       float64         `json:"total"`
	Forma       string          `json:"forma"`
}

// mergeItens: semântica do carrinho — o mesmo produto duas vezes soma a
// quantidade em vez de duplicar a linha.
func mergeItens(itens []QuickSaleItem) []QuickSaleItem {
	merged := make([]QuickSaleItem, 0, len(itens))
	index := make(map[string]int)

	for _, item := range itens {
		nome := strings.TrimSpace(item.Nome)
		if nome == "" {
			continue
		}
		qtd := item.Qtd
		if qtd <= 0 {
			qtd = 1
		}
		if i, ok := index[nome]; ok {
			merged[i].Qtd += qtd
			continue
		}
		index[nome] = len(merged)
		merged = append(merged, QuickSaleItem{Nome: nome, Qtd: qtd})
	}
	return merged
}

// -------------------------------------------------
// POST /api/sales/quick
// Venda direta: comanda já fechada + lançamento de caixa + baixa de estoque,
// tudo na mesma transação. Estoque nunca fica negativo: se vendeu mais do que
// tinha, zera.
// -------------------------------------------------
func QuickSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body QuickSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Forma = strings.TrimSpace(body.Forma)
		if body.Forma == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Informe a forma de pagamento")
		}

		itens := mergeItens(body.Itens)
		if len(itens) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Seu carrinho está vazio")
		}

		var resp QuickSaleResponse
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			timestamp := time.Now()
			linhas := make(models.ItemList, 0, len(itens))

			for _, item := range itens {
				var product models.Product
				if err := database.LockForUpdate(tx).
					First(&product, "nome = ?", item.Nome).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound,
						fmt.Sprintf("Produto não encontrado: %s", item.Nome))
				}

				linhas = append(linhas, models.ItemPedido{
					Nome:  product.Nome,
					Qtd:   item.Qtd,
					Preco: product.Preco,
					Custo: product.Custo,
				})

				if product.Categoria.EstoqueControlado() {
					product.Qtd -= item.Qtd
					if product.Qtd < 0 {
						product.Qtd = 0
					}
					if err := tx.Save(&product).Error; err != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o estoque")
					}
				}
			}

			total := linhas.Total()
			resumo := fmt.Sprintf("%s: R$%.2f", body.Forma, total)

			order := models.Order{
				Cliente:   clienteVendaDireta,
				Atendente: atendenteFromCtx(c),
				Itens:     linhas,
				Total:     total,
				Data:      timestamp,
				Status:    models.StatusFechado,
				Pagamento: resumo,
			}
			if err := tx.Create(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar a venda")
			}

			entry := models.CashEntry{
				Cliente: clienteVendaDireta,
				Forma:   body.Forma,
				Valor:   total,
				Data:    timestamp,
				Itens:   linhas,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Falha ao registrar no caixa")
			}

			resp = QuickSaleResponse{
				OrderID:     order.ID,
				CashEntryID: entry.ID,
				Itens:       linhas,
				Total:       total,
				Forma:       body.Forma,
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		userID, userName := audit.UserFromCtx(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    resp.OrderID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Venda direta: %s - R$%.2f", resp.Forma, resp.Total),
			After:       resp,
		}); logErr != nil {
			fmt.Printf("Audit log não gravado: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

func atendenteFromCtx(c *fiber.Ctx) string {
	if email, ok := c.Locals(auth.CtxUserEmailKey).(string); ok && email != "" {
		return email
	}
	return "Admin"
}

package orders

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"adega-backend/internal/audit"
	"adega-backend/internal/auth"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Tolerância para comparar somas de parcelas com o total (float).
const centavoTolerancia = 0.005

var naoDigitoRe = regexp.MustCompile(`\D`)

type CreateOrderRequest struct {
	Cliente  string `json:"cliente"`
	Telefone string `json:"telefone"`
}

type AddItemRequest struct {
	ProdutoID uint `json:"produto_id"`
	Qtd       int  `json:"qtd"`
}

type PaymentSplit struct {
	Forma string  `json:"forma"`
	Valor float64 `json:"valor"`
}

// CloseOrderRequest: ou uma forma única (pagamento integral) ou uma lista de
// parcelas {forma, valor}.
type CloseOrderRequest struct {
	Forma      string         `json:"forma"`
	Pagamentos []PaymentSplit `json:"pagamentos"`
}

type OrderResponse struct {
	ID        uint               `json:"id"`
	Cliente   string             `json:"cliente"`
	Telefone  string             `json:"telefone"`
	Atendente string             `json:"atendente"`
	Itens     models.ItemList    `json:"itens"`
	Total     float64            `json:"total"`
	Data      string             `json:"data"`
	Status    models.OrderStatus `json:"status"`
	Pagamento string             `json:"pagamento,omitempty"`
}

func toOrderResponse(o models.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		Cliente:   o.Cliente,
		Telefone:  o.Telefone,
		Atendente: o.Atendente,
		Itens:     o.Itens,
		Total:     o.Total,
		Data:      o.Data.Format(time.RFC3339),
		Status:    o.Status,
		Pagamento: o.Pagamento,
	}
}

// -------------------------------------------------
// POST /api/orders
// -------------------------------------------------
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Cliente = strings.TrimSpace(body.Cliente)
		if body.Cliente == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Informe o nome do cliente")
		}

		atendente, _ := c.Locals(auth.CtxUserEmailKey).(string)
		if atendente == "" {
			atendente = "Admin"
		}

		order := models.Order{
			Cliente:   body.Cliente,
			Telefone:  naoDigitoRe.ReplaceAllString(body.Telefone, ""),
			Atendente: atendente,
			Itens:     models.ItemList{},
			Total:     0,
			Data:      time.Now(),
			Status:    models.StatusAberto,
		}

		if err := database.DB.Create(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível abrir a comanda")
		}

		userID, userName := audit.UserFromCtx(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Comanda aberta: %s", order.Cliente),
			After:       toOrderResponse(order),
		}); logErr != nil {
			fmt.Printf("Audit log não gravado: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// -------------------------------------------------
// GET /api/orders?status=aberto&busca=maria
// -------------------------------------------------
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Order{})

		status := c.Query("status")
		switch status {
		case "", "todos":
			// sem filtro
		case string(models.StatusAberto), string(models.StatusPronto), string(models.StatusFechado):
			dbq = dbq.Where("status = ?", status)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Status inválido (aberto|pronto|fechado|todos)")
		}

		if busca := strings.TrimSpace(c.Query("busca")); busca != "" {
			dbq = dbq.Where("LOWER(cliente) LIKE ?", "%"+strings.ToLower(busca)+"%")
		}

		// Histórico de fechadas é limitado, igual ao painel antigo
		if status == string(models.StatusFechado) {
			dbq = dbq.Order("data desc").Limit(50)
		} else {
			dbq = dbq.Order("data asc")
		}

		var list []models.Order
		if err := dbq.Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as comandas")
		}

		resp := make([]OrderResponse, 0, len(list))
		for _, o := range list {
			resp = append(resp, toOrderResponse(o))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/orders/:id/items
// Lança um item na comanda e desconta o estoque na mesma transação.
// -------------------------------------------------
func AddItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c)
		if err != nil {
			return err
		}

		var body AddItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.ProdutoID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "produto_id é obrigatório")
		}

		qtd := body.Qtd
		if qtd <= 0 {
			qtd = 1
		}

		var updated models.Order
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Comanda não encontrada")
			}
			if order.Status == models.StatusFechado {
				return fiber.NewError(fiber.StatusBadRequest, "Comanda já está fechada")
			}

			var product models.Product
			if err := database.LockForUpdate(tx).
				First(&product, "id = ?", body.ProdutoID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Produto não encontrado")
			}

			if product.Categoria.EstoqueControlado() {
				if product.Qtd < qtd {
					return fiber.NewError(fiber.StatusBadRequest, "Estoque esgotado!")
				}
				product.Qtd -= qtd
				if err := tx.Save(&product).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o estoque")
				}
			}

			order.Itens = append(order.Itens, models.ItemPedido{
				Nome:  product.Nome,
				Qtd:   qtd,
				Preco: product.Preco,
				Custo: product.Custo,
			})
			order.Total = order.Itens.Total()

			if err := tx.Save(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a comanda")
			}

			updated = order
			return nil
		})
		if txErr != nil {
			return txErr
		}

		return c.JSON(toOrderResponse(updated))
	}
}

// -------------------------------------------------
// POST /api/orders/:id/ready
// aberto → pronto, sem efeito no estoque ou no caixa.
// -------------------------------------------------
func MarkReadyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Comanda não encontrada")
		}
		if order.Status != models.StatusAberto {
			return fiber.NewError(fiber.StatusBadRequest, "Só comanda aberta pode ser marcada como pronta")
		}

		order.Status = models.StatusPronto
		if err := database.DB.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a comanda")
		}

		return c.JSON(toOrderResponse(order))
	}
}

// -------------------------------------------------
// POST /api/orders/:id/close
// Fecha a comanda e grava um lançamento de caixa por parcela, tudo na mesma
// transação.
// -------------------------------------------------
func CloseOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c)
		if err != nil {
			return err
		}

		var body CloseOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		var updated models.Order
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Comanda não encontrada")
			}
			if order.Status == models.StatusFechado {
				return fiber.NewError(fiber.StatusBadRequest, "Comanda já está fechada")
			}

			pagamentos, err := resolvePagamentos(body, order.Total)
			if err != nil {
				return err
			}

			timestamp := time.Now()

			parts := make([]string, 0, len(pagamentos))
			for _, p := range pagamentos {
				parts = append(parts, fmt.Sprintf("%s: R$%.2f", p.Forma, p.Valor))
			}

			order.Status = models.StatusFechado
			order.Pagamento = strings.Join(parts, ", ")
			order.Data = timestamp

			if err := tx.Save(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível fechar a comanda")
			}

			for _, p := range pagamentos {
				entry := models.CashEntry{
					Cliente: order.Cliente,
					Forma:   p.Forma,
					Valor:   p.Valor,
					Data:    timestamp,
					Itens:   order.Itens,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Falha ao registrar no caixa")
				}
			}

			updated = order
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
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Comanda fechada: %s - %s", updated.Cliente, updated.Pagamento),
			After:       toOrderResponse(updated),
		}); logErr != nil {
			fmt.Printf("Audit log não gravado: %v\n", logErr)
		}

		return c.JSON(toOrderResponse(updated))
	}
}

// resolvePagamentos: normaliza o corpo do fechamento. Forma única vira uma
// parcela do valor total; parcelas precisam somar o total da comanda.
func resolvePagamentos(body CloseOrderRequest, total float64) ([]PaymentSplit, error) {
	if forma := strings.TrimSpace(body.Forma); forma != "" {
		return []PaymentSplit{{Forma: forma, Valor: total}}, nil
	}

	if len(body.Pagamentos) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Informe a forma de pagamento")
	}

	var soma float64
	out := make([]PaymentSplit, 0, len(body.Pagamentos))
	for _, p := range body.Pagamentos {
		p.Forma = strings.TrimSpace(p.Forma)
		if p.Forma == "" {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Parcela sem forma de pagamento")
		}
		if p.Valor <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Parcela com valor inválido")
		}
		soma += p.Valor
		out = append(out, p)
	}

	if math.Abs(soma-total) > centavoTolerancia {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Parcelas somam R$%.2f mas a comanda é R$%.2f", soma, total))
	}
	return out, nil
}

// -------------------------------------------------
// DELETE /api/orders/:id (admin, só comanda fechada)
// -------------------------------------------------
func DeleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Comanda não encontrada")
		}
		if order.Status != models.StatusFechado {
			return fiber.NewError(fiber.StatusBadRequest, "Só comanda fechada pode ser excluída")
		}

		if err := database.DB.Delete(&models.Order{}, "id = ?", orderID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir a comanda")
		}

		userID, userName := audit.UserFromCtx(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Comanda excluída: %s", order.Cliente),
			Before:      toOrderResponse(order),
		}); logErr != nil {
			fmt.Printf("Audit log não gravado: %v\n", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "ID inválido")
	}
	return uint(id), nil
}

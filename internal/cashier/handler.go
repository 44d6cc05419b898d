package cashier

import (
	"strings"
	"time"

	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CashEntryResponse struct {
	ID      uint            `json:"id"`
	Cliente string          `json:"cliente"`
	Forma   string          `json:"forma"`
	Valor   float64         `json:"valor"`
	Data    string          `json:"data"`
	Itens   models.ItemList `json:"itens,omitempty"`
}

type SummaryResponse struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Faturamento float64 `json:"faturamento"`
	Pix         float64 `json:"pix"`
	Cartao      float64 `json:"cartao"`
	Dinheiro    float64 `json:"dinheiro"`
	Custo       float64 `json:"custo"`
	Lucro       float64 `json:"lucro"`
	Vendas      int     `json:"vendas"`
}

// periodo: intervalo [from 00:00, to+1d 00:00) de dias de calendário,
// inclusivo nas duas pontas. Sem parâmetros vale o dia de hoje.
type periodo struct {
	fromStr, toStr string
	start, end     time.Time
}

func parsePeriodo(c *fiber.Ctx) (periodo, error) {
	hoje := time.Now().Format("2006-01-02")

	fromStr := c.Query("from")
	if fromStr == "" {
		fromStr = hoje
	}
	toStr := c.Query("to")
	if toStr == "" {
		toStr = hoje
	}

	from, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
	if err != nil {
		return periodo{}, fiber.NewError(fiber.StatusBadRequest, "from inválido, use 'YYYY-MM-DD'")
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
	if err != nil {
		return periodo{}, fiber.NewError(fiber.StatusBadRequest, "to inválido, use 'YYYY-MM-DD'")
	}
	if to.Before(from) {
		return periodo{}, fiber.NewError(fiber.StatusBadRequest, "to não pode ser antes de from")
	}

	return periodo{
		fromStr: fromStr,
		toStr:   toStr,
		start:   from,
		end:     to.AddDate(0, 0, 1),
	}, nil
}

func loadEntries(p periodo) ([]models.CashEntry, error) {
	var entries []models.CashEntry
	err := database.DB.
		Where("data >= ? AND data < ?", p.start, p.end).
		Order("data asc, id asc").
		Find(&entries).Error
	return entries, err
}

func loadFechadas(p periodo) ([]models.Order, error) {
	var fechadas []models.Order
	err := database.DB.
		Where("status = ? AND data >= ? AND data < ?", models.StatusFechado, p.start, p.end).
		Find(&fechadas).Error
	return fechadas, err
}

// buildSummary: faturamento vem do livro caixa, custo vem do histórico de
// comandas fechadas. Os dois deveriam casar 1:1; não há conferência.
// A forma de pagamento é texto livre, a classificação é por substring.
func buildSummary(p periodo, entries []models.CashEntry, fechadas []models.Order) SummaryResponse {
	s := SummaryResponse{From: p.fromStr, To: p.toStr, Vendas: len(entries)}

	for _, e := range entries {
		s.Faturamento += e.Valor
		forma := strings.ToLower(e.Forma)
		switch {
		case strings.Contains(forma, "pix"):
			s.Pix += e.Valor
		case strings.Contains(forma, "cart"):
			s.Cartao += e.Valor
		case strings.Contains(forma, "dinheiro"):
			s.Dinheiro += e.Valor
		}
	}

	for _, o := range fechadas {
		s.Custo += o.Itens.CustoTotal()
	}

	s.Lucro = s.Faturamento - s.Custo
	return s
}

// -------------------------------------------------
// GET /api/cashier/entries?from=2024-01-01&to=2024-01-31
// -------------------------------------------------
func ListEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePeriodo(c)
		if err != nil {
			return err
		}

		entries, err := loadEntries(p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar o caixa")
		}

		resp := make([]CashEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, CashEntryResponse{
				ID:      e.ID,
				Cliente: e.Cliente,
				Forma:   e.Forma,
				Valor:   e.Valor,
				Data:    e.Data.Format(time.RFC3339),
				Itens:   e.Itens,
			})
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/cashier/summary?from=...&to=...
// -------------------------------------------------
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePeriodo(c)
		if err != nil {
			return err
		}

		entries, err := loadEntries(p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível calcular o resumo")
		}
		fechadas, err := loadFechadas(p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível calcular o resumo")
		}

		return c.JSON(buildSummary(p, entries, fechadas))
	}
}

package cashier

import (
	"fmt"
	"strings"

	"adega-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// formatarDia: "2024-01-05" -> "05/01/2024"
func formatarDia(dateStr string) string {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return dateStr
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// -------------------------------------------------
// GET /api/cashier/report?from=...&to=...
// Relatório financeiro em xlsx: aba de resumo + aba de vendas detalhadas.
// -------------------------------------------------
func ReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePeriodo(c)
		if err != nil {
			return err
		}

		entries, err := loadEntries(p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível montar o relatório")
		}
		if len(entries) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não existem dados para exportar no período selecionado.")
		}
		fechadas, err := loadFechadas(p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível montar o relatório")
		}

		s := buildSummary(p, entries, fechadas)

		f := excelize.NewFile()
		defer f.Close()

		// Aba Resumo
		resumo := "Resumo"
		f.SetSheetName(f.GetSheetName(0), resumo)
		resumoRows := [][]any{
			{"DESCRICAO", "VALOR"},
			{fmt.Sprintf("RELATORIO FINANCEIRO - %s", strings.ToUpper(cfg.LojaNome)), ""},
			{"Periodo", fmt.Sprintf("%s a %s", formatarDia(p.fromStr), formatarDia(p.toStr))},
			{"", ""},
			{"FATURAMENTO BRUTO TOTAL", fmt.Sprintf("%.2f", s.Faturamento)},
			{"LUCRO ESTIMADO", fmt.Sprintf("%.2f", s.Lucro)},
			{"CUSTO TOTAL DE MERCADORIA", fmt.Sprintf("%.2f", s.Custo)},
			{"", ""},
			{"VALOR EM PIX", fmt.Sprintf("%.2f", s.Pix)},
			{"VALOR EM CARTAO", fmt.Sprintf("%.2f", s.Cartao)},
			{"VALOR EM DINHEIRO", fmt.Sprintf("%.2f", s.Dinheiro)},
			{"TOTAL DE VENDAS", s.Vendas},
		}
		for i, row := range resumoRows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(resumo, cell, &row); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o relatório")
			}
		}
		f.SetColWidth(resumo, "A", "A", 40)
		f.SetColWidth(resumo, "B", "B", 20)

		// Aba Vendas_Detalhadas
		detalhes := "Vendas_Detalhadas"
		if _, err := f.NewSheet(detalhes); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o relatório")
		}
		header := []any{"Data", "Hora", "Cliente", "Forma", "Valor (R$)", "Itens"}
		if err := f.SetSheetRow(detalhes, "A1", &header); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o relatório")
		}
		for i, e := range entries {
			linhas := make([]string, 0, len(e.Itens))
			for _, item := range e.Itens {
				linhas = append(linhas, fmt.Sprintf("%dx %s", item.Qtd, item.Nome))
			}
			row := []any{
				e.Data.Format("02/01/2006"),
				e.Data.Format("15:04:05"),
				e.Cliente,
				e.Forma,
				fmt.Sprintf("%.2f", e.Valor),
				strings.Join(linhas, ", "),
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(detalhes, cell, &row); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o relatório")
			}
		}
		f.SetColWidth(detalhes, "A", "B", 15)
		f.SetColWidth(detalhes, "C", "C", 30)
		f.SetColWidth(detalhes, "D", "E", 15)
		f.SetColWidth(detalhes, "F", "F", 50)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o arquivo Excel")
		}

		fileName := fmt.Sprintf("RELATORIO_ADEGA_%s_A_%s.xlsx", p.fromStr, p.toStr)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, fileName))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

package stock

import (
	"fmt"
	"time"

	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// -------------------------------------------------
// GET /api/stock/export
// Todos os produtos + resumo de valorização do estoque.
// -------------------------------------------------
func ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var produtos []models.Product
		if err := database.DB.Order("categoria, nome").Find(&produtos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao consultar o estoque")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Estoque"
		f.SetSheetName(f.GetSheetName(0), sheet)

		header := []any{"Nome", "Categoria", "Preço (R$)", "Custo (R$)", "Qtd", "Valor Custo (R$)", "Valor Venda (R$)"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar a planilha")
		}

		totalCusto := 0.0
		totalVenda := 0.0
		linha := 2
		for _, p := range produtos {
			valorCusto := p.Custo * float64(p.Qtd)
			valorVenda := p.Preco * float64(p.Qtd)
			totalCusto += valorCusto
			totalVenda += valorVenda

			row := []any{p.Nome, string(p.Categoria), p.Preco, p.Custo, p.Qtd, valorCusto, valorVenda}
			cell := fmt.Sprintf("A%d", linha)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar a planilha")
			}
			linha++
		}

		// Linha em branco e totais
		linha++
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", linha), &[]any{"TOTAL EM CUSTO (R$)", totalCusto})
		linha++
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", linha), &[]any{"TOTAL EM VENDA (R$)", totalVenda})

		f.SetColWidth(sheet, "A", "A", 32)
		f.SetColWidth(sheet, "B", "G", 16)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar a planilha")
		}

		nomeArquivo := fmt.Sprintf("ESTOQUE_%s.xlsx", time.Now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, nomeArquivo))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

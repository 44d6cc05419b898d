package stock

import (
	"fmt"
	"log"
	"strings"

	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// Grafias aceitas por campo nos cabeçalhos da planilha (case-insensitive).
var colunasImport = map[string][]string{
	"nome":      {"nome", "produto", "product", "nome do produto"},
	"preco":     {"preco", "preço", "valor", "price", "preco de venda", "preço de venda"},
	"custo":     {"custo", "cost", "preco de custo", "preço de custo"},
	"qtd":       {"qtd", "quantidade", "estoque", "qty", "quantity"},
	"categoria": {"categoria", "category"},
}

type ImportResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// mapearColunas: localiza cada campo no cabeçalho. Só o nome é obrigatório.
func mapearColunas(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for campo, grafias := range colunasImport {
			if _, ok := cols[campo]; ok {
				continue
			}
			for _, g := range grafias {
				if cell == g {
					cols[campo] = i
					break
				}
			}
		}
	}
	if _, ok := cols["nome"]; !ok {
		return nil, fmt.Errorf("cabeçalho sem a coluna de nome do produto")
	}
	return cols, nil
}

func celula(row []string, cols map[string]int, campo string) string {
	i, ok := cols[campo]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// -------------------------------------------------
// POST /api/stock/import (multipart, campo "file")
// Um upsert por linha, sequencial. Falha no meio não desfaz as linhas já
// gravadas; a linha problemática entra na lista de erros e segue.
// -------------------------------------------------
func ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Arquivo não enviado: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Só arquivos .xlsx são aceitos")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível abrir o arquivo")
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Não foi possível ler a planilha: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Planilha sem abas")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Não foi possível ler a aba: "+err.Error())
		}
		if len(rows) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "Planilha vazia")
		}

		cols, err := mapearColunas(rows[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		resp := ImportResponse{Errors: []string{}}

		for i := 1; i < len(rows); i++ {
			row := rows[i]

			nome := celula(row, cols, "nome")
			if nome == "" {
				resp.Skipped++
				continue
			}

			preco, err := parseDecimal(celula(row, cols, "preco"))
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("linha %d: preço inválido", i+1))
				continue
			}

			custo := 0.0
			if s := celula(row, cols, "custo"); s != "" {
				if v, err := parseDecimal(s); err == nil {
					custo = v
				}
			}

			qtd := 0
			if s := celula(row, cols, "qtd"); s != "" {
				if v, err := parseDecimal(s); err == nil {
					qtd = int(v)
				}
			}

			// Categoria ausente ou desconhecida vira Adega
			categoria := models.ParseCategoria(celula(row, cols, "categoria"))

			if err := upsertImportRow(nome, preco, custo, qtd, categoria); err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("linha %d: %v", i+1, err))
				continue
			}
			resp.Imported++
		}

		log.Printf("Import de estoque: %d importados, %d pulados, %d erros",
			resp.Imported, resp.Skipped, len(resp.Errors))

		return c.JSON(resp)
	}
}

// upsertImportRow: linha com nome já existente na mesma categoria atualiza o
// registro; senão cria.
func upsertImportRow(nome string, preco, custo float64, qtd int, categoria models.Categoria) error {
	var existentes []models.Product
	if err := database.DB.Where("categoria = ?", string(categoria)).Find(&existentes).Error; err != nil {
		return err
	}

	alvo := normalizarNome(nome)
	for _, p := range existentes {
		if normalizarNome(p.Nome) == alvo {
			p.Nome = nome
			p.Preco = preco
			p.Custo = custo
			p.Qtd = qtd
			return database.DB.Save(&p).Error
		}
	}

	return database.DB.Create(&models.Product{
		Nome:      nome,
		Preco:     preco,
		Custo:     custo,
		Qtd:       qtd,
		Categoria: categoria,
	}).Error
}

// -------------------------------------------------
// GET /api/stock/template
// Planilha modelo para preencher e importar.
// -------------------------------------------------
func TemplateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := excelize.NewFile()
		defer f.Close()

		sheet := "Modelo"
		f.SetSheetName(f.GetSheetName(0), sheet)

		header := []any{"nome", "preco", "custo", "qtd", "categoria"}
		exemplo := []any{"Cerveja Lata 350ml", 5.00, 3.50, 24, string(models.CategoriaAdega)}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o modelo")
		}
		if err := f.SetSheetRow(sheet, "A2", &exemplo); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o modelo")
		}
		f.SetColWidth(sheet, "A", "A", 30)
		f.SetColWidth(sheet, "B", "E", 12)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o modelo")
		}

		c.Set(fiber.HeaderContentDisposition, `attachment; filename="MODELO_ESTOQUE.xlsx"`)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

package stock

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"adega-backend/internal/auth"
	"adega-backend/internal/database"
	"adega-backend/internal/menu"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "adega.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("abrindo sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		c.Locals(auth.CtxUserEmailKey, "admin@adega.com")
		c.Locals(auth.CtxUserRoleKey, models.RoleAdmin)
		return c.Next()
	})
	app.Post("/stock/products", UpsertProductHandler())
	app.Delete("/stock/products/:id", DeleteProductHandler())
	app.Post("/stock/import", ImportHandler())
	app.Get("/stock/export", ExportHandler())
	app.Get("/stock/template", TemplateHandler())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestUpsertCriaEAtualiza(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/stock/products",
		`{"nome":"Cerveja Lata","preco":"5,00","custo":"3,50","qtd":"24","categoria":"adega"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, esperava 201", resp.StatusCode)
	}

	var created menu.ProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Preco != 5 || created.Custo != 3.5 || created.Qtd != 24 {
		t.Errorf("criado = %+v", created)
	}
	if created.Categoria != models.CategoriaAdega {
		t.Errorf("categoria = %q", created.Categoria)
	}

	resp = doJSON(t, app, "POST", "/stock/products",
		`{"id":1,"nome":"Cerveja Lata 350ml","preco":6,"custo":4,"qtd":30,"categoria":"Adega"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperava 200 na atualização", resp.StatusCode)
	}

	var p models.Product
	database.DB.First(&p, 1)
	if p.Nome != "Cerveja Lata 350ml" || p.Preco != 6 || p.Qtd != 30 {
		t.Errorf("produto atualizado = %+v", p)
	}
}

func TestUpsertRejeitaDuplicado(t *testing.T) {
	app := setupApp(t)

	doJSON(t, app, "POST", "/stock/products", `{"nome":"Cerveja Lata","preco":5}`)

	resp := doJSON(t, app, "POST", "/stock/products", `{"nome":"  cerveja   LATA ","preco":7}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, duplicado na mesma categoria devia falhar", resp.StatusCode)
	}

	// mesmo nome em outra categoria pode
	resp = doJSON(t, app, "POST", "/stock/products", `{"nome":"Cerveja Lata","preco":7,"categoria":"Comidas"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, outra categoria devia passar", resp.StatusCode)
	}
}

func TestUpsertValidacoes(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name, body string
	}{
		{"sem nome", `{"preco":5}`},
		{"sem preço", `{"nome":"Cerveja"}`},
		{"preço zero", `{"nome":"Cerveja","preco":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, "POST", "/stock/products", tt.body)
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, esperava 400", resp.StatusCode)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)

	doJSON(t, app, "POST", "/stock/products", `{"nome":"Cerveja Lata","preco":5}`)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/stock/products/1", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var count int64
	database.DB.Model(&models.Product{}).Count(&count)
	if count != 0 {
		t.Errorf("produtos restantes = %d", count)
	}

	resp, err = app.Test(httptest.NewRequest("DELETE", "/stock/products/99", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d para id inexistente", resp.StatusCode)
	}
}

// planilhaImport: monta um xlsx em memória para os testes de import.
func planilhaImport(t *testing.T, rows [][]any) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	xlsxBuf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "estoque.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(xlsxBuf.Bytes()); err != nil {
		t.Fatal(err)
	}
	w.Close()
	return &body, w.FormDataContentType()
}

func postImport(t *testing.T, app *fiber.App, rows [][]any) (ImportResponse, int) {
	t.Helper()

	body, contentType := planilhaImport(t, rows)
	req := httptest.NewRequest("POST", "/stock/import", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var out ImportResponse
	if resp.StatusCode == fiber.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return out, resp.StatusCode
}

func TestImportCriaEAtualiza(t *testing.T) {
	app := setupApp(t)

	doJSON(t, app, "POST", "/stock/products", `{"nome":"Cerveja Lata","preco":5,"custo":3,"qtd":10}`)

	out, status := postImport(t, app, [][]any{
		{"nome", "preco", "custo", "qtd", "categoria"},
		{"Cerveja Lata", "6,00", "3,50", 48, "Adega"},  // atualiza
		{"Essência Uva", "12,00", "7,00", 5, "tabacaria"}, // cria
		{"", "1,00", "", "", ""},                          // sem nome: pulada
		{"Produto Quebrado", "abc", "", "", ""},           // preço inválido: erro
	})
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if out.Imported != 2 || out.Skipped != 1 || len(out.Errors) != 1 {
		t.Fatalf("resultado = %+v", out)
	}

	var cerveja models.Product
	database.DB.First(&cerveja, "nome = ?", "Cerveja Lata")
	if cerveja.Preco != 6 || cerveja.Qtd != 48 {
		t.Errorf("cerveja após import = %+v", cerveja)
	}

	var essencia models.Product
	database.DB.First(&essencia, "nome = ?", "Essência Uva")
	if essencia.Categoria != models.CategoriaTabacaria {
		t.Errorf("categoria = %q", essencia.Categoria)
	}

	var count int64
	database.DB.Model(&models.Product{}).Count(&count)
	if count != 2 {
		t.Errorf("produtos = %d, esperava 2", count)
	}
}

func TestImportCategoriaDesconhecidaViraAdega(t *testing.T) {
	app := setupApp(t)

	out, status := postImport(t, app, [][]any{
		{"Produto", "Preço", "Qtd", "Categoria"}, // grafias alternativas
		{"Gelo", "8,00", 3, "Invalido"},
	})
	if status != fiber.StatusOK || out.Imported != 1 {
		t.Fatalf("status = %d, resultado = %+v", status, out)
	}

	var p models.Product
	database.DB.First(&p, "nome = ?", "Gelo")
	if p.Categoria != models.CategoriaAdega {
		t.Errorf("categoria = %q, esperava fallback Adega", p.Categoria)
	}
}

func TestImportSemColunaNome(t *testing.T) {
	app := setupApp(t)

	_, status := postImport(t, app, [][]any{
		{"preco", "qtd"},
		{"5,00", 3},
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, esperava 400", status)
	}
}

func TestExportETemplate(t *testing.T) {
	app := setupApp(t)

	doJSON(t, app, "POST", "/stock/products", `{"nome":"Cerveja Lata","preco":5,"custo":3,"qtd":10}`)

	for _, path := range []string{"/stock/export", "/stock/template"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: status = %d", path, resp.StatusCode)
		}
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
			t.Errorf("%s: Content-Disposition = %q", path, cd)
		}
	}
}

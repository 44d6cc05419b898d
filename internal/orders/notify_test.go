package orders

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adega-backend/internal/config"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func setupNotifyApp(t *testing.T) *fiber.App {
	t.Helper()

	app := setupApp(t)
	cfg := &config.Config{LojaNome: "Adega Nas Manha"}
	app.Get("/orders/:id/whatsapp", WhatsAppLinkHandler(cfg))
	app.Get("/orders/:id/receipt", ReceiptHandler(cfg))
	return app
}

func seedPronta(t *testing.T, telefone string) models.Order {
	t.Helper()
	o := models.Order{
		Cliente:  "Ana",
		Telefone: telefone,
		Itens: models.ItemList{
			{Nome: "Cerveja Lata", Qtd: 2, Preco: 5, Custo: 3},
		},
		Total:  10,
		Data:   time.Now(),
		Status: models.StatusPronto,
	}
	if err := database.DB.Create(&o).Error; err != nil {
		t.Fatal(err)
	}
	return o
}

func TestWhatsAppLink(t *testing.T) {
	app := setupNotifyApp(t)
	seedPronta(t, "11998765432")

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/1/whatsapp", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}

	if out["telefone"] != "5511998765432" {
		t.Errorf("telefone = %q, esperava prefixo 55", out["telefone"])
	}
	if !strings.HasPrefix(out["url"], "https://wa.me/5511998765432?text=") {
		t.Errorf("url = %q", out["url"])
	}
	msg := out["mensagem"]
	for _, trecho := range []string{"ADEGA NAS MANHA", "*Ana*", "PRONTO", "2x Cerveja Lata", "R$ 10.00"} {
		if !strings.Contains(msg, trecho) {
			t.Errorf("mensagem sem %q:\n%s", trecho, msg)
		}
	}
}

func TestWhatsAppSoParaPronta(t *testing.T) {
	app := setupNotifyApp(t)

	doJSON(t, app, "POST", "/orders", CreateOrderRequest{Cliente: "Ana", Telefone: "11998765432"})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/1/whatsapp", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("comanda aberta: status = %d", resp.StatusCode)
	}
}

func TestWhatsAppSemTelefone(t *testing.T) {
	app := setupNotifyApp(t)
	seedPronta(t, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/1/whatsapp", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("sem telefone: status = %d", resp.StatusCode)
	}
}

func TestReceipt(t *testing.T) {
	app := setupNotifyApp(t)
	seedPronta(t, "11998765432")

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/1/receipt", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content-type = %q", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, trecho := range []string{"ADEGA NAS MANHA", "CLIENTE:", "ANA", "2x Cerveja Lata", "TOTAL: R$ 10.00", "window.print()"} {
		if !strings.Contains(html, trecho) {
			t.Errorf("recibo sem %q", trecho)
		}
	}
}

func TestRefPedido(t *testing.T) {
	tests := []struct {
		id   uint
		want string
	}{
		{7, "7"},
		{1234, "1234"},
		{987654, "7654"},
	}
	for _, tt := range tests {
		if got := refPedido(tt.id); got != tt.want {
			t.Errorf("refPedido(%d) = %q, esperava %q", tt.id, got, tt.want)
		}
	}
}

func TestSaudacao(t *testing.T) {
	tests := []struct {
		hora int
		want string
	}{
		{8, "Bom dia"},
		{11, "Bom dia"},
		{12, "Boa tarde"},
		{17, "Boa tarde"},
		{18, "Boa noite"},
		{23, "Boa noite"},
	}
	for _, tt := range tests {
		if got := saudacao(tt.hora); got != tt.want {
			t.Errorf("saudacao(%d) = %q, esperava %q", tt.hora, got, tt.want)
		}
	}
}

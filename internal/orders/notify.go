package orders

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"adega-backend/internal/config"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// refPedido: últimos 4 dígitos do ID, como aparecia no painel antigo.
func refPedido(id uint) string {
	s := fmt.Sprintf("%d", id)
	if len(s) > 4 {
		return s[len(s)-4:]
	}
	return s
}

func saudacao(hora int) string {
	switch {
	case hora < 12:
		return "Bom dia"
	case hora < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

// -------------------------------------------------
// GET /api/orders/:id/whatsapp
// Monta o deep link do wa.me com o aviso de pedido pronto.
// -------------------------------------------------
func WhatsAppLinkHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Comanda não encontrada")
		}

		if order.Status != models.StatusPronto {
			return fiber.NewError(fiber.StatusBadRequest, "Aviso só para comanda pronta")
		}

		telefone := naoDigitoRe.ReplaceAllString(order.Telefone, "")
		if len(telefone) < 10 {
			return fiber.NewError(fiber.StatusBadRequest, "WhatsApp não cadastrado.")
		}
		// Sem DDI assume Brasil
		if len(telefone) <= 11 {
			telefone = "55" + telefone
		}

		linhas := make([]string, 0, len(order.Itens))
		for _, item := range order.Itens {
			linhas = append(linhas, fmt.Sprintf("• %dx %s", item.Qtd, item.Nome))
		}

		mensagem := fmt.Sprintf("*%s* 🍻\n\n%s, *%s*!\n\nSeu pedido *#%s* está *PRONTO* para retirada! 🚀\n\n📝 *ITENS DO PEDIDO:*\n%s\n\n💰 *TOTAL:* R$ %.2f\n\nAguardamos você! 🥂",
			strings.ToUpper(cfg.LojaNome),
			saudacao(time.Now().Hour()),
			order.Cliente,
			refPedido(order.ID),
			strings.Join(linhas, "\n"),
			order.Total,
		)

		return c.JSON(fiber.Map{
			"telefone": telefone,
			"mensagem": mensagem,
			"url":      "https://wa.me/" + telefone + "?text=" + url.QueryEscape(mensagem),
		})
	}
}

// -------------------------------------------------
// GET /api/orders/:id/receipt
// Recibo de 80mm pronto para abrir numa janela de impressão.
// -------------------------------------------------
func ReceiptHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Comanda não encontrada")
		}

		var itens strings.Builder
		for _, item := range order.Itens {
			itens.WriteString(fmt.Sprintf(
				`<div style="display:flex;justify-content:space-between;font-size:13px;margin-bottom:5px;"><span style="flex:1;">%dx %s</span><span style="width:80px;text-align:right;">R$ %.2f</span></div>`,
				item.Qtd, item.Nome, item.Preco*float64(item.Qtd)))
		}

		html := fmt.Sprintf(`<html><body style="font-family:monospace;width:80mm;margin:0 auto;padding:10px;">
<div style="text-align:center;border-bottom:1px dashed #000;margin-bottom:10px;"><h2>%s</h2><p>PEDIDO #%s</p></div>
<div style="font-size:12px;margin-bottom:10px;"><strong>CLIENTE:</strong> %s<br><strong>DATA:</strong> %s</div>
%s
<div style="font-size:18px;font-weight:bold;text-align:right;margin-top:10px;border-top:1px dashed #000;padding-top:5px;">TOTAL: R$ %.2f</div>
<script>window.onload=function(){window.print();window.close();}</script>
</body></html>`,
			strings.ToUpper(cfg.LojaNome),
			refPedido(order.ID),
			strings.ToUpper(order.Cliente),
			order.Data.Format("02/01/2006 15:04:05"),
			itens.String(),
			order.Total,
		)

		c.Type("html", "utf-8")
		return c.SendString(html)
	}
}

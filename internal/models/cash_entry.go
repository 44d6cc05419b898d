package models

import "time"

// Formas de pagamento aceitas no caixa.
const (
	FormaPix      = "Pix"
	FormaCartao   = "Cartão"
	FormaDinheiro = "Dinheiro"
)

// CashEntry: lançamento do livro caixa. Append-only: criado no fechamento de
// uma comanda (um por parcela de pagamento) ou na venda direta, nunca alterado.
type CashEntry struct {
	ID      uint    `gorm:"primaryKey"`
	Cliente string  `gorm:"size:100;not null"`
	Forma   string  `gorm:"size:30;not null"`
	Valor   float64 `gorm:"not null"`
	Data    time.Time `gorm:"index;not null"`
	Itens   ItemList  `gorm:"type:jsonb"` // itens vendidos, para o relatório detalhado
	CreatedAt time.Time
}

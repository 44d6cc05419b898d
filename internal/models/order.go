package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusAberto  OrderStatus = "aberto"
	StatusPronto  OrderStatus = "pronto"
	StatusFechado OrderStatus = "fechado"
	// StatusCancelado fica declarado por compatibilidade de dados; nenhuma
	// operação o produz.
	StatusCancelado OrderStatus = "cancelado"
)

// ItemPedido: cópia desnormalizada do produto no momento do lançamento.
// Mudança de preço no catálogo não altera comandas antigas.
type ItemPedido struct {
	Nome  string  `json:"nome"`
	Qtd   int     `json:"qtd"`
	Preco float64 `json:"preco"`
	Custo float64 `json:"custo"`
}

type ItemList []ItemPedido

func (l ItemList) Value() (driver.Value, error) {
	if l == nil {
		l = ItemList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ItemList) Scan(value any) error {
	if value == nil {
		*l = ItemList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("tipo inesperado para ItemList: %T", value)
	}
}

// Total: soma de preço × quantidade de todos os itens.
func (l ItemList) Total() float64 {
	var total float64
	for _, item := range l {
		total += item.Preco * float64(item.Qtd)
	}
	return total
}

// CustoTotal: soma de custo × quantidade (base do lucro estimado do caixa).
func (l ItemList) CustoTotal() float64 {
	var custo float64
	for _, item := range l {
		custo += item.Custo * float64(item.Qtd)
	}
	return custo
}

// Order: a comanda. Itens ficam embutidos como JSON, igual ao sistema antigo.
type Order struct {
	ID        uint   `gorm:"primaryKey"`
	Cliente   string `gorm:"size:100;not null"`
	Telefone  string `gorm:"size:20"`
	Atendente string `gorm:"size:100"` // email de quem abriu
	Itens     ItemList `gorm:"type:jsonb;not null"`
	Total     float64  `gorm:"not null"`
	Data      time.Time `gorm:"index;not null"`
	Status    OrderStatus `gorm:"size:20;index;not null"`
	Pagamento string      `gorm:"size:255"` // resumo "Pix: R$10.00, ..."
	CreatedAt time.Time
	UpdatedAt time.Time
}

package models

import (
	"strings"
	"time"
)

type Categoria string

const (
	CategoriaAdega     Categoria = "Adega"
	CategoriaTabacaria Categoria = "Tabacaria"
	CategoriaCombos    Categoria = "Combos"
	CategoriaDoses     Categoria = "Doses"
	CategoriaComidas   Categoria = "Comidas"
)

var Categorias = []Categoria{
	CategoriaAdega,
	CategoriaTabacaria,
	CategoriaCombos,
	CategoriaDoses,
	CategoriaComidas,
}

// EstoqueControlado: combos e doses são montados a partir de outros itens,
// então a venda não desconta quantidade (disponibilidade ilimitada).
func (c Categoria) EstoqueControlado() bool {
	return c != CategoriaCombos && c != CategoriaDoses
}

// ParseCategoria: normaliza o texto da categoria (case-insensitive).
// Categoria desconhecida ou vazia vira Adega.
func ParseCategoria(s string) Categoria {
	s = strings.TrimSpace(s)
	for _, c := range Categorias {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CategoriaAdega
}

type Product struct {
	ID        uint    `gorm:"primaryKey"`
	Nome      string  `gorm:"size:100;not null;index"`
	Preco     float64 `gorm:"not null"`
	Custo     float64 `gorm:"not null;default:0"`
	Qtd       int     `gorm:"not null;default:0"` // estoque atual
	Categoria Categoria `gorm:"size:20;not null;default:'Adega'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

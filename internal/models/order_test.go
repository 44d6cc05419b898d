package models

import "testing"

func TestItemListTotais(t *testing.T) {
	itens := ItemList{
		{Nome: "Cerveja", Qtd: 3, Preco: 5, Custo: 3},
		{Nome: "Vinho", Qtd: 1, Preco: 45, Custo: 30},
	}

	if got := itens.Total(); got != 60 {
		t.Errorf("Total = %.2f, esperava 60", got)
	}
	if got := itens.CustoTotal(); got != 39 {
		t.Errorf("CustoTotal = %.2f, esperava 39", got)
	}

	var vazia ItemList
	if vazia.Total() != 0 || vazia.CustoTotal() != 0 {
		t.Error("lista vazia devia somar zero")
	}
}

func TestItemListScanRoundTrip(t *testing.T) {
	original := ItemList{{Nome: "Cerveja", Qtd: 2, Preco: 5, Custo: 3}}

	raw, err := original.Value()
	if err != nil {
		t.Fatal(err)
	}

	var lida ItemList
	if err := lida.Scan(raw); err != nil {
		t.Fatal(err)
	}
	if len(lida) != 1 || lida[0] != original[0] {
		t.Errorf("round trip = %+v", lida)
	}

	// NULL no banco vira lista vazia
	if err := lida.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if len(lida) != 0 {
		t.Errorf("scan de nil = %+v", lida)
	}
}

func TestParseCategoria(t *testing.T) {
	tests := []struct {
		in   string
		want Categoria
	}{
		{"Adega", CategoriaAdega},
		{"tabacaria", CategoriaTabacaria},
		{" COMBOS ", CategoriaCombos},
		{"doses", CategoriaDoses},
		{"Comidas", CategoriaComidas},
		{"", CategoriaAdega},
		{"qualquer coisa", CategoriaAdega},
	}
	for _, tt := range tests {
		if got := ParseCategoria(tt.in); got != tt.want {
			t.Errorf("ParseCategoria(%q) = %q, esperava %q", tt.in, got, tt.want)
		}
	}
}

func TestEstoqueControlado(t *testing.T) {
	if CategoriaCombos.EstoqueControlado() || CategoriaDoses.EstoqueControlado() {
		t.Error("combos e doses não controlam estoque")
	}
	if !CategoriaAdega.EstoqueControlado() || !CategoriaTabacaria.EstoqueControlado() || !CategoriaComidas.EstoqueControlado() {
		t.Error("demais categorias controlam estoque")
	}
}

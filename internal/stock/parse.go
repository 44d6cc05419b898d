package stock

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseDecimal: aceita vírgula ou ponto como separador decimal
// ("5.00", "5,00", "1.190,00", "1,190.00"). O último separador presente é o
// decimal, o resto é milhar.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("valor vazio")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	return strconv.ParseFloat(s, 64)
}

// ValorFlex: campo monetário que o cliente pode mandar como número JSON ou
// como texto com vírgula ("12,50").
type ValorFlex float64

func (v *ValorFlex) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = ValorFlex(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("valor numérico inválido: %s", string(data))
	}
	if strings.TrimSpace(s) == "" {
		*v = 0
		return nil
	}
	f, err := parseDecimal(s)
	if err != nil {
		return fmt.Errorf("valor numérico inválido: %q", s)
	}
	*v = ValorFlex(f)
	return nil
}

// QtdFlex: quantidade inteira, também tolerante a texto.
type QtdFlex int

func (q *QtdFlex) UnmarshalJSON(data []byte) error {
	var num int
	if err := json.Unmarshal(data, &num); err == nil {
		*q = QtdFlex(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("quantidade inválida: %s", string(data))
	}
	if strings.TrimSpace(s) == "" {
		*q = 0
		return nil
	}
	f, err := parseDecimal(s)
	if err != nil {
		return fmt.Errorf("quantidade inválida: %q", s)
	}
	*q = QtdFlex(int(f))
	return nil
}

// normalizarNome: comparação de duplicidade ignora caixa e espaços extras.
func normalizarNome(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

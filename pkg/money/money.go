// Package money formatea importes para documentos impresos (tickets). Los cálculos nunca
// pasan por aquí: solo la presentación redondea a centavos.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formatea importes con separadores del locale configurado.
type Formatter struct {
	p      *message.Printer
	symbol string
	decSep string
}

// NewFormatter crea un formatter para el locale (BCP 47, ej. "es-MX"). Locale inválido = es-MX.
func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse("es-MX")
	}
	p := message.NewPrinter(tag)
	decSep := "."
	if s := p.Sprintf("%.1f", 1.5); len(s) == 3 {
		decSep = s[1:2]
	}
	return &Formatter{p: p, symbol: symbol, decSep: decSep}
}

// Format redondea a 2 decimales (half away from zero) y agrega separador de miles.
// Ej. es-MX: 1234.5 -> "$1,234.50".
func (f *Formatter) Format(d decimal.Decimal) string {
	return f.symbol + f.Number(d)
}

// Number igual que Format pero sin símbolo.
func (f *Formatter) Number(d decimal.Decimal) string {
	r := d.Round(2)
	neg := r.IsNegative()
	r = r.Abs()

	whole := r.Truncate(0)
	cents := r.Sub(whole).Shift(2).IntPart()

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.p.Sprintf("%d", whole.IntPart()))
	b.WriteString(f.decSep)
	if cents < 10 {
		b.WriteByte('0')
	}
	b.WriteString(f.p.Sprintf("%d", cents))
	return b.String()
}

// Quantity formatea una cantidad sin ceros sobrantes (2 -> "2", 0.500 -> "0.5").
func (f *Formatter) Quantity(d decimal.Decimal) string {
	s := d.String()
	if f.decSep != "." {
		s = strings.Replace(s, ".", f.decSep, 1)
	}
	return s
}

// Percent formatea una tasa fraccional como porcentaje (0.16 -> "16%").
func (f *Formatter) Percent(rate decimal.Decimal) string {
	return f.Quantity(rate.Shift(2)) + "%"
}

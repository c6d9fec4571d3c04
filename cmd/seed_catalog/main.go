// seed_catalog carga productos al catálogo desde un CSV exportado de la hoja de precios.
//
// Uso: go run ./cmd/seed_catalog [-charset latin1|win1252|utf8] [-sep ,] productos.csv
//
// Columnas: sku, descripcion, precio, iva[, tipo[, unidad]]. La primera fila se omite si
// es encabezado. iva es fracción (0.16) o porcentaje (16). Usa la misma base de datos
// que la API (DB_DRIVER, DATABASE_URL o SQLITE_PATH) y aplica migraciones pendientes.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/punto-venta/internal/application/catalog"
	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/infrastructure/storage"
	"github.com/jhoicas/punto-venta/pkg/config"
	"github.com/jhoicas/punto-venta/pkg/logger"
)

type productRow struct {
	line int
	sku  string
	req  dto.UpsertProductRequest
}

func main() {
	charset := flag.String("charset", "utf8", "codificación del archivo: utf8, latin1 o win1252")
	sep := flag.String("sep", ",", "separador de columnas")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog [-charset ...] [-sep ...] productos.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := decodeReader(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Codificación: %v\n", err)
		os.Exit(2)
	}
	sepRune, _ := utf8.DecodeRuneInString(*sep)
	rows, err := parseCatalog(r, sepRune)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx := context.Background()
	st, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén")
	}
	defer st.Close()

	uc := catalog.NewUseCase(st.Products, st.Sellers, st.Customers)
	var failed int
	for _, row := range rows {
		if _, err := uc.UpsertProduct(ctx, row.sku, row.req); err != nil {
			failed++
			log.Error().Err(err).Int("line", row.line).Str("sku", row.sku).Msg("producto no cargado")
		}
	}
	log.Info().Int("loaded", len(rows)-failed).Int("failed", failed).Msg("catálogo cargado")
	if failed > 0 {
		os.Exit(1)
	}
}

// decodeReader convierte a UTF-8 las exportaciones de hojas de cálculo en Latin-1/Windows-1252.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf8", "utf-8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "win1252", "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset %q no soportado", charset)
	}
}

// parseCatalog lee las filas del CSV; cualquier fila inválida aborta la carga completa.
func parseCatalog(r io.Reader, sep rune) ([]productRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []productRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 4 columnas, hay %d", line, len(rec))
		}
		price, err := decimal.NewFromString(normalizeNumber(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio %q inválido", line, rec[2])
		}
		tax, err := decimal.NewFromString(normalizeNumber(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: iva %q inválido", line, rec[3])
		}
		if tax.GreaterThan(decimal.NewFromInt(1)) {
			tax = tax.Shift(-2)
		}
		row := productRow{
			line: line,
			sku:  strings.TrimSpace(rec[0]),
			req: dto.UpsertProductRequest{
				Description: strings.TrimSpace(rec[1]),
				Price:       price,
				TaxRate:     tax,
			},
		}
		if len(rec) > 4 {
			row.req.Kind = strings.TrimSpace(rec[4])
		}
		if len(rec) > 5 {
			row.req.Unit = strings.TrimSpace(rec[5])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku")
}

// normalizeNumber quita el símbolo de moneda y separadores de miles ("$1,250.00" -> "1250.00").
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	return strings.ReplaceAll(s, ",", "")
}

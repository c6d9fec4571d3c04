package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	in := "sku,descripcion,precio,iva,tipo,unidad\n" +
		"P001,Café americano,25.00,0.16\n" +
		"S001,Impresión,\"$1,250.50\",16%,Servicio,hoja\n"

	rows, err := parseCatalog(strings.NewReader(in), ',')
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "P001", rows[0].sku)
	assert.Equal(t, "Café americano", rows[0].req.Description)
	assert.Equal(t, "25", rows[0].req.Price.String())
	assert.Equal(t, "0.16", rows[0].req.TaxRate.String())

	assert.Equal(t, "1250.5", rows[1].req.Price.String())
	assert.Equal(t, "0.16", rows[1].req.TaxRate.String())
	assert.Equal(t, "Servicio", rows[1].req.Kind)
	assert.Equal(t, "hoja", rows[1].req.Unit)
	assert.Equal(t, 3, rows[1].line)
}

func TestParseCatalog_Errores(t *testing.T) {
	_, err := parseCatalog(strings.NewReader("P001,Café,25\n"), ',')
	assert.ErrorContains(t, err, "línea 1")

	_, err = parseCatalog(strings.NewReader("P001,Café,veinte,0\n"), ',')
	assert.ErrorContains(t, err, "precio")
}

func TestDecodeReader_Latin1(t *testing.T) {
	// "Café" en ISO-8859-1: é = 0xE9
	raw := []byte{'P', '1', ';', 'C', 'a', 'f', 0xE9, ';', '1', ';', '0', '\n'}
	r, err := decodeReader(bytes.NewReader(raw), "latin1")
	require.NoError(t, err)

	rows, err := parseCatalog(r, ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café", rows[0].req.Description)

	_, err = decodeReader(io.LimitReader(nil, 0), "ebcdic")
	assert.Error(t, err)
}

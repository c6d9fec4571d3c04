package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punto-venta/internal/application/catalog"
	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/application/sales"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/infrastructure/pdf"
	"github.com/jhoicas/punto-venta/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/punto-venta/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/punto-venta/pkg/jwt"
	"github.com/jhoicas/punto-venta/pkg/metrics"
)

// ── Helpers de test ───────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testTerminal  = "6f1c2a4e-0000-4000-8000-000000000001"
)

type testServer struct {
	app *fiber.App
	reg *prometheus.Registry
}

// newTestServer arma la API completa sobre un SQLite temporal con el producto P001.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.Options{Path: filepath.Join(t.TempDir(), "pos.db"), BusyTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = sqlite.Migrate(ctx, db)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, sqlite.NewProductRepository(db).Upsert(ctx, &entity.Product{
		SKU: "P001", Description: "Café americano", Price: decimal.RequireFromString("25.00"),
		TaxRate: decimal.RequireFromString("0.16"), Kind: entity.ProductKindProduct, Unit: "pz",
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))

	reg := prometheus.NewRegistry()
	reader := sales.NewSaleReader(sqlite.NewSaleRepository(db))
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CommitSale: sales.NewCommitSaleUseCase(
			sqlite.NewTxRunner(db),
			sales.NewFolioSequencer("", "F", 4),
			sales.Config{CommitRetries: 2, RetryBaseDelay: time.Millisecond},
			nil, metrics.NewSaleMetrics(reg),
		),
		SaleReader: reader,
		Receipt:    sales.NewReceiptUseCase(reader, pdf.NewMarotoPDFGenerator(), sales.BusinessInfo{Name: "Cafetería", Locale: "es-MX"}),
		Catalog: catalog.NewUseCase(
			sqlite.NewProductRepository(db), sqlite.NewSellerRepository(db), sqlite.NewCustomerRepository(db),
		),
		JWTSecret: testJWTSecret,
		AppName:   "punto-venta-test",
		Health:    db.PingContext,
		Metrics:   reg,
	})
	return &testServer{app: app, reg: reg}
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testTerminal, "Caja 1", role, "test", 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) do(t *testing.T, method, path, auth string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func cafeSale() map[string]any {
	return map[string]any{
		"items":    []map[string]any{{"sku": "P001", "qty": "1"}},
		"payments": []map[string]any{{"method": "cash", "amount": "29.00", "tendered": "30.00"}},
	}
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestAPI_SinToken_Retorna401(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_TokenInvalido_Retorna401(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/products", "Bearer token.invalido.aqui", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_TokenSinRol_Retorna401EnEscritura(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPut, "/api/sellers/V01", bearer(t, ""), map[string]any{"name": "Ana"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestAPI_CajeroNoEditaCatalogo(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPut, "/api/products/P002", bearer(t, pkgjwt.RoleCashier),
		map[string]any{"description": "Té", "price": "20", "tax_rate": "0.16"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ── Ventas ────────────────────────────────────────────────────────────────────

func TestAPI_CommitSale_CafeConEfectivo(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, pkgjwt.RoleCashier)

	resp := s.do(t, http.MethodPost, "/api/sales", auth, cafeSale())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CommitSaleResponse](t, resp)
	assert.Equal(t, "F0001", created.Folio)

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d", created.ID), auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, "25.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "4.00", got.TaxTotal.StringFixed(2))
	assert.Equal(t, "29.00", got.Total.StringFixed(2))
	assert.Equal(t, "1.00", got.ChangeTotal.StringFixed(2))
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)

	resp = s.do(t, http.MethodGet, "/api/sales/folio/F0001", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[dto.SaleResponse](t, resp).ID)
}

func TestAPI_CommitSale_DescartaRenglonesEnCero(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, pkgjwt.RoleCashier)
	body := map[string]any{
		"items": []map[string]any{
			{"sku": "P001", "qty": "2"},
			{"description": "borrado", "qty": "0", "unit_price": "10"},
		},
		"payments": []map[string]any{{"method": "card", "amount": "0"}},
	}

	resp := s.do(t, http.MethodPost, "/api/sales", auth, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CommitSaleResponse](t, resp)

	got := decode[dto.SaleResponse](t, s.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d", created.ID), auth, nil))
	assert.Len(t, got.Items, 1)
	assert.Empty(t, got.Payments)
	assert.Equal(t, entity.PaymentStatusPending, got.PaymentStatus)
}

func TestAPI_CommitSale_Errores(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"carrito vacío", map[string]any{"items": []any{}}, http.StatusBadRequest, "VALIDATION"},
		{"solo renglones en cero", map[string]any{"items": []map[string]any{{"sku": "P001", "qty": "0"}}}, http.StatusBadRequest, "VALIDATION"},
		{"sin sku ni descripción", map[string]any{"items": []map[string]any{{"qty": "1", "unit_price": "5"}}}, http.StatusBadRequest, "VALIDATION"},
		{"client_ref no uuid", map[string]any{"client_ref": "abc", "items": []map[string]any{{"sku": "P001", "qty": "1"}}}, http.StatusBadRequest, "VALIDATION"},
		{"sku desconocido", map[string]any{"items": []map[string]any{{"sku": "NOPE", "qty": "1"}}}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			resp := s.do(t, http.MethodPost, "/api/sales", bearer(t, pkgjwt.RoleCashier), tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAPI_CommitSale_CuerpoMalFormado(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, pkgjwt.RoleCashier))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CommitSale_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, pkgjwt.RoleCashier)
	key := uuid.NewString()

	first := decode[dto.CommitSaleResponse](t, s.do(t, http.MethodPost, "/api/sales", auth, cafeSale(), apphttp.HeaderIdempotencyKey, key))
	resp := s.do(t, http.MethodPost, "/api/sales", auth, cafeSale(), apphttp.HeaderIdempotencyKey, key)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[dto.CommitSaleResponse](t, resp)

	assert.Equal(t, first, second)
	list := decode[dto.SaleListResponse](t, s.do(t, http.MethodGet, "/api/sales", auth, nil))
	assert.Len(t, list.Items, 1)
}

func TestAPI_ListSales_MasRecientePrimero(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, pkgjwt.RoleCashier)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/sales", auth, cafeSale()).StatusCode)
	}

	list := decode[dto.SaleListResponse](t, s.do(t, http.MethodGet, "/api/sales?limit=2", auth, nil))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "F0003", list.Items[0].Folio)
	assert.Equal(t, "F0002", list.Items[1].Folio)
	assert.Equal(t, 2, list.Page.Limit)
}

func TestAPI_GetSale_IDInvalidoYNoEncontrado(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, pkgjwt.RoleCashier)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/sales/abc", auth, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/sales/999", auth, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/sales/folio/F9999", auth, nil).StatusCode)
}

func TestAPI_ReceiptPDF(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, pkgjwt.RoleCashier)
	created := decode[dto.CommitSaleResponse](t, s.do(t, http.MethodPost, "/api/sales", auth, cafeSale()))

	resp := s.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d/receipt.pdf", created.ID), auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ticket-F0001.pdf")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

func TestAPI_Catalogo(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, pkgjwt.RoleAdmin)

	resp := s.do(t, http.MethodPut, "/api/products/P002", admin,
		map[string]any{"description": "Té verde", "price": "20.50", "tax_rate": "0.16"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/products/search?q=verde", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]dto.ProductResponse](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, "P002", found[0].SKU)

	got := decode[dto.ProductResponse](t, s.do(t, http.MethodGet, "/api/products/P002", admin, nil))
	assert.Equal(t, "20.50", got.Price.StringFixed(2))
	assert.Equal(t, entity.ProductKindProduct, got.Kind)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/products/NOPE", admin, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/products/P003", admin,
		map[string]any{"description": "X", "kind": "Otro"}).StatusCode)

	seller := decode[dto.SellerResponse](t, s.do(t, http.MethodPut, "/api/sellers/V01", admin, map[string]any{"name": "Ana"}))
	assert.Positive(t, seller.ID)
	sellers := decode[[]dto.SellerResponse](t, s.do(t, http.MethodGet, "/api/sellers", admin, nil))
	assert.Len(t, sellers, 1)

	customer := decode[dto.CustomerResponse](t, s.do(t, http.MethodPut, "/api/customers/A123", admin, map[string]any{"name": "Luis"}))
	assert.Equal(t, "A123", customer.Enrollment)
	customers := decode[[]dto.CustomerResponse](t, s.do(t, http.MethodGet, "/api/customers", admin, nil))
	assert.Len(t, customers, 1)
}

// ── Operación ─────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/sales", bearer(t, pkgjwt.RoleCashier), cafeSale()).StatusCode)

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `pos_sale_commits_total{outcome="committed"} 1`)
}

func TestHealth_AlmacenCaido(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		JWTSecret: testJWTSecret,
		Health:    func(context.Context) error { return errors.New("disk I/O error") },
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

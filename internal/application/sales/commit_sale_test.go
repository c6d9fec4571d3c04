package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/domain"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/pkg/metrics"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func i64(v int64) *int64 { return &v }

// ── Helpers ───────────────────────────────────────────────────────────────────

func newTestEngine(t *testing.T, store *memStore, cfg Config) *CommitSaleUseCase {
	t.Helper()
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = time.Millisecond
	}
	uc := NewCommitSaleUseCase(store, NewFolioSequencer("", "F", 4), cfg, nil, metrics.NewSaleMetrics(prometheus.NewRegistry()))
	uc.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	return uc
}

func seedCatalog(store *memStore) {
	store.products["P001"] = &entity.Product{SKU: "P001", Description: "Café americano", Price: dec("25.00"), TaxRate: dec("0.16"), Active: true}
	store.products["P002"] = &entity.Product{SKU: "P002", Description: "Libreta", Price: dec("50"), TaxRate: dec("0"), Active: true}
	store.sellers[7] = &entity.Seller{ID: 7, Code: "V07", Name: "Ana", Active: true}
	store.customers[9] = &entity.Customer{ID: 9, Enrollment: "A0009", Name: "Luis", Active: true}
	store.nextID = 100
}

func freeLine(desc, price string) dto.SaleItemRequest {
	return dto.SaleItemRequest{Description: desc, Qty: dec("1"), UnitPrice: decPtr(price)}
}

// ── Escenario base ────────────────────────────────────────────────────────────

func TestCommitSale_CafeConEfectivo(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	res, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items:    []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
		Payments: []dto.SalePaymentRequest{{Method: "cash", Amount: dec("29"), Tendered: decPtr("30")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "F0001", res.Folio)

	require.Len(t, store.sales, 1)
	s := store.sales[0]
	assert.Equal(t, res.ID, s.ID)
	assert.True(t, s.Subtotal.Equal(dec("25")), s.Subtotal.String())
	assert.True(t, s.TaxTotal.Equal(dec("4")), s.TaxTotal.String())
	assert.True(t, s.Total.Equal(dec("29")), s.Total.String())
	assert.True(t, s.ChangeTotal.Equal(dec("1")), s.ChangeTotal.String())
	assert.Equal(t, entity.PaymentStatusPaid, s.PaymentStatus)
	assert.Equal(t, "Cliente Mostrador", s.Customer)
	assert.Equal(t, "Mostrador", s.Seller)
	assert.Equal(t, time.UTC, s.CreatedAt.Location())

	require.Len(t, store.items, 1)
	assert.Equal(t, "Café americano", store.items[0].DescriptionSnapshot)
	assert.Equal(t, s.ID, store.items[0].SaleID)
	require.Len(t, store.payments, 1)
	assert.True(t, store.payments[0].Change.Valid)
	assert.True(t, store.payments[0].Change.Decimal.Equal(dec("1")))

	assert.Equal(t, int64(1), store.folios[DefaultFolioSeries].LastNumber)
}

func TestCommitSale_FoliosConsecutivos(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	var folios []string
	for i := 0; i < 3; i++ {
		res, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
			Items: []dto.SaleItemRequest{{SKU: "P002", Qty: dec("1")}},
		})
		require.NoError(t, err)
		folios = append(folios, res.Folio)
	}
	assert.Equal(t, []string{"F0001", "F0002", "F0003"}, folios)
}

func TestCommitSale_ContinuaSerieDeVentasPrevias(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	store.sales = append(store.sales,
		&entity.Sale{ID: 1, Folio: "F0098", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		&entity.Sale{ID: 2, Folio: "F0099", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	)
	uc := newTestEngine(t, store, Config{})

	res, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{freeLine("Servicio", "10")},
	})
	require.NoError(t, err)
	assert.Equal(t, "F0100", res.Folio)
}

// ── Validación ────────────────────────────────────────────────────────────────

func TestCommitSale_Validacion(t *testing.T) {
	cases := []struct {
		name string
		req  dto.CommitSaleRequest
	}{
		{"carrito vacío", dto.CommitSaleRequest{}},
		{"sin sku ni descripción", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{{Qty: dec("1"), UnitPrice: decPtr("5")}}}},
		{"cantidad cero", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("0")}}}},
		{"cantidad negativa", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("-1")}}}},
		{"precio negativo", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{freeLine("x", "-1")}}},
		{"texto libre sin precio", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{{Description: "x", Qty: dec("1")}}}},
		{"descuento negativo", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1"), Discount: decPtr("-2")}}}},
		{"impuesto negativo", dto.CommitSaleRequest{Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1"), TaxRate: decPtr("-0.16")}}}},
		{"pago en cero", dto.CommitSaleRequest{
			Items:    []dto.SaleItemRequest{freeLine("x", "5")},
			Payments: []dto.SalePaymentRequest{{Method: "cash", Amount: dec("0")}},
		}},
		{"pago sin método", dto.CommitSaleRequest{
			Items:    []dto.SaleItemRequest{freeLine("x", "5")},
			Payments: []dto.SalePaymentRequest{{Amount: dec("5")}},
		}},
		{"recibido menor al monto", dto.CommitSaleRequest{
			Items:    []dto.SaleItemRequest{freeLine("x", "5")},
			Payments: []dto.SalePaymentRequest{{Method: "cash", Amount: dec("5"), Tendered: decPtr("4")}},
		}},
		{"client_ref inválido", dto.CommitSaleRequest{ClientRef: "abc", Items: []dto.SaleItemRequest{freeLine("x", "5")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			seedCatalog(store)
			uc := newTestEngine(t, store, Config{})

			res, err := uc.CommitSale(context.Background(), tc.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, store.runs, "no debe abrir transacción")
			assert.Empty(t, store.sales)
		})
	}
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

func TestCommitSale_SKUDesconocidoSinPrecio(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{
			{SKU: "P001", Qty: dec("1")},
			{SKU: "NOEXISTE", Qty: dec("1")},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "NOEXISTE")
	assert.Empty(t, store.sales)
	assert.Empty(t, store.items)
	assert.Empty(t, store.folios, "el folio no se consume")

	res, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "F0001", res.Folio)
}

func TestCommitSale_SKUDesconocidoConPrecioUsaImpuestoPorDefecto(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{DefaultTaxRate: dec("0.16")})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "X-99", Qty: dec("2"), UnitPrice: decPtr("10")}},
	})
	require.NoError(t, err)
	require.Len(t, store.items, 1)
	it := store.items[0]
	assert.Equal(t, "X-99", it.DescriptionSnapshot)
	assert.True(t, it.TaxRate.Equal(dec("0.16")))
	assert.True(t, it.LineTotal.Equal(dec("23.2")), it.LineTotal.String())
}

func TestCommitSale_PrecioExplicitoGanaAlCatalogo(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "P001", Description: "Café grande", Qty: dec("1"), UnitPrice: decPtr("30")}},
	})
	require.NoError(t, err)
	it := store.items[0]
	assert.Equal(t, "Café grande", it.DescriptionSnapshot)
	assert.True(t, it.UnitPrice.Equal(dec("30")))
	assert.True(t, it.TaxRate.Equal(dec("0.16")), "impuesto del catálogo")
}

func TestCommitSale_SnapshotNoCambiaConElCatalogo(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
	})
	require.NoError(t, err)

	store.products["P001"].Price = dec("99")
	store.products["P001"].Description = "Otro"
	assert.True(t, store.items[0].UnitPrice.Equal(dec("25")))
	assert.Equal(t, "Café americano", store.items[0].DescriptionSnapshot)
}

func TestCommitSale_DescuentoMayorAlSubtotal(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{
			{SKU: "P001", Qty: dec("1"), Discount: decPtr("40")},
			{SKU: "P002", Qty: dec("1")},
		},
	})
	require.NoError(t, err)
	s := store.sales[0]
	assert.True(t, store.items[0].Discount.Equal(dec("25")))
	assert.True(t, store.items[0].LineTotal.IsZero())
	assert.True(t, s.DiscountTotal.Equal(dec("25")))
	assert.True(t, s.Total.Equal(dec("50")), s.Total.String())
}

// ── Cabecera ──────────────────────────────────────────────────────────────────

func TestCommitSale_NombresDesdeCatalogo(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		CustomerID: i64(9),
		SellerID:   i64(7),
		Items:      []dto.SaleItemRequest{freeLine("x", "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Luis", store.sales[0].Customer)
	assert.Equal(t, "Ana", store.sales[0].Seller)
	assert.Equal(t, int64(9), *store.sales[0].CustomerID)
}

func TestCommitSale_ClienteInexistente(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		CustomerID: i64(404),
		Items:      []dto.SaleItemRequest{freeLine("x", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, store.sales)
}

func TestCommitSale_NombresPorDefectoConfigurables(t *testing.T) {
	store := newMemStore()
	uc := newTestEngine(t, store, Config{DefaultCustomerName: "Público general", DefaultSellerName: "Caja 1"})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{freeLine("x", "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Público general", store.sales[0].Customer)
	assert.Equal(t, "Caja 1", store.sales[0].Seller)
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

func TestCommitSale_EstadoDePago(t *testing.T) {
	cases := []struct {
		name     string
		payments []dto.SalePaymentRequest
		want     string
	}{
		{"sin pagos", nil, entity.PaymentStatusPending},
		{"parcial", []dto.SalePaymentRequest{{Method: "card", Amount: dec("40")}}, entity.PaymentStatusPartial},
		{"completo en dos pagos", []dto.SalePaymentRequest{
			{Method: "card", Amount: dec("40")},
			{Method: "cash", Amount: dec("60"), Tendered: decPtr("100")},
		}, entity.PaymentStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			uc := newTestEngine(t, store, Config{})

			_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
				Items:    []dto.SaleItemRequest{freeLine("Colegiatura", "100")},
				Payments: tc.payments,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, store.sales[0].PaymentStatus)
			assert.Len(t, store.payments, len(tc.payments))
		})
	}
}

// ── Atomicidad e idempotencia ─────────────────────────────────────────────────

func TestCommitSale_FallaAlInsertarPagoHaceRollback(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	store.failPaymentWith = errors.New("disco lleno")
	uc := newTestEngine(t, store, Config{})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items:    []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
		Payments: []dto.SalePaymentRequest{{Method: "cash", Amount: dec("29")}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disco lleno")
	assert.Empty(t, store.sales)
	assert.Empty(t, store.items)
	assert.Empty(t, store.payments)
	assert.Empty(t, store.folios)

	store.failPaymentWith = nil
	res, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "F0001", res.Folio)
}

func TestCommitSale_ClientRefIdempotente(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	uc := newTestEngine(t, store, Config{})
	req := dto.CommitSaleRequest{
		ClientRef: "6F9619FF-8B86-D011-B42D-00C04FC964FF",
		Items:     []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
	}

	first, err := uc.CommitSale(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.CommitSale(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.sales, 1)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", store.sales[0].ClientRef)
}

// ── Contención ────────────────────────────────────────────────────────────────

func TestCommitSale_ReintentaCuandoElAlmacenEstaOcupado(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	store.busyFailures = 2
	uc := newTestEngine(t, store, Config{CommitRetries: 3})

	res, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "F0001", res.Folio)
	assert.Equal(t, 3, store.runs)
}

func TestCommitSale_OcupadoTrasReintentos(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	store.busyFailures = 100
	uc := newTestEngine(t, store, Config{CommitRetries: 2})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "P001", Qty: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 3, store.runs, "intento inicial + 2 reintentos")
	assert.Empty(t, store.sales)
}

func TestCommitSale_NoReintentaErroresDeNegocio(t *testing.T) {
	store := newMemStore()
	uc := newTestEngine(t, store, Config{CommitRetries: 5})

	_, err := uc.CommitSale(context.Background(), dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{{SKU: "NOEXISTE", Qty: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, store.runs)
}

func TestCommitSale_ContextoCancelado(t *testing.T) {
	store := newMemStore()
	store.busyFailures = 100
	uc := newTestEngine(t, store, Config{CommitRetries: 50, RetryBaseDelay: 50 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := uc.CommitSale(ctx, dto.CommitSaleRequest{
		Items: []dto.SaleItemRequest{freeLine("x", "1")},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, store.sales)
}

package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/domain"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
	"github.com/jhoicas/punto-venta/internal/domain/sale"
	"github.com/jhoicas/punto-venta/pkg/logger"
	"github.com/jhoicas/punto-venta/pkg/metrics"
)

// Config valores por defecto del motor de ventas.
type Config struct {
	DefaultCustomerName string
	DefaultSellerName   string
	DefaultTaxRate      decimal.Decimal // para SKUs fuera de catálogo con precio explícito
	CommitRetries       int             // reintentos ante domain.ErrBusy
	RetryBaseDelay      time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultCustomerName == "" {
		c.DefaultCustomerName = "Cliente Mostrador"
	}
	if c.DefaultSellerName == "" {
		c.DefaultSellerName = "Mostrador"
	}
	if c.CommitRetries < 0 {
		c.CommitRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 25 * time.Millisecond
	}
	return c
}

// CommitSaleUseCase confirma una venta: valida el carrito, calcula importes, asigna folio
// y persiste cabecera, renglones y pagos en una sola transacción exclusiva.
type CommitSaleUseCase struct {
	txRunner SaleTxRunner
	folios   *FolioSequencer
	cfg      Config
	log      *logger.Logger
	metrics  *metrics.SaleMetrics
	now      func() time.Time
}

// NewCommitSaleUseCase construye el caso de uso. log y m pueden ser nil.
func NewCommitSaleUseCase(
	txRunner SaleTxRunner,
	folios *FolioSequencer,
	cfg Config,
	log *logger.Logger,
	m *metrics.SaleMetrics,
) *CommitSaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CommitSaleUseCase{
		txRunner: txRunner,
		folios:   folios,
		cfg:      cfg.withDefaults(),
		log:      log.Component("sales"),
		metrics:  m,
		now:      time.Now,
	}
}

// cartLine renglón ya validado.
type cartLine struct {
	sku         string
	description string
	qty         decimal.Decimal
	unitPrice   *decimal.Decimal
	taxRate     *decimal.Decimal
	discount    decimal.Decimal
}

// tender pago ya validado.
type tender struct {
	method    string
	amount    decimal.Decimal
	tendered  decimal.NullDecimal
	reference string
}

type commitResult struct {
	sale     *entity.Sale
	replayed bool
}

// CommitSale confirma la venta y devuelve {id, folio}.
//
// Errores:
//   - domain.ErrInvalidInput  carrito o pagos inválidos (nada se escribe).
//   - domain.ErrNotFound      SKU sin precio que no existe en catálogo, o cliente/vendedor inexistente.
//   - domain.ErrBusy          el almacén siguió ocupado tras los reintentos.
//   - domain.ErrIntegrity     violación de constraint (no se reintenta).
//
// Si ClientRef ya fue confirmado, devuelve la venta existente sin escribir.
func (uc *CommitSaleUseCase) CommitSale(ctx context.Context, in dto.CommitSaleRequest) (*dto.CommitSaleResponse, error) {
	start := uc.now()

	clientRef, lines, tenders, err := normalizeCart(in)
	if err != nil {
		uc.metrics.ObserveCommit(metrics.OutcomeInvalid, time.Since(start))
		return nil, err
	}

	var res commitResult
	backoff := retry.WithMaxRetries(uint64(uc.cfg.CommitRetries), retry.NewExponential(uc.cfg.RetryBaseDelay))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := uc.commitOnce(ctx, in, clientRef, lines, tenders)
		if errors.Is(err, domain.ErrBusy) {
			uc.metrics.IncBusyRetry()
			uc.log.Warn().Err(err).Int("attempt", attempt).Msg("almacén ocupado al confirmar venta")
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		uc.metrics.ObserveCommit(outcomeOf(err), time.Since(start))
		if errors.Is(err, domain.ErrBusy) {
			return nil, fmt.Errorf("%w: venta no confirmada tras %d intentos", domain.ErrBusy, attempt)
		}
		if errors.Is(err, domain.ErrIntegrity) {
			uc.log.Error().Err(err).Msg("violación de integridad al confirmar venta")
		}
		return nil, err
	}

	s := res.sale
	if res.replayed {
		uc.metrics.ObserveCommit(metrics.OutcomeReplayed, time.Since(start))
		uc.log.Info().Str("folio", s.Folio).Str("client_ref", s.ClientRef).Msg("venta ya confirmada, se devuelve la existente")
		return &dto.CommitSaleResponse{ID: s.ID, Folio: s.Folio}, nil
	}

	uc.metrics.ObserveCommit(metrics.OutcomeCommitted, time.Since(start))
	uc.metrics.AddAmount(s.Total)
	uc.log.Info().
		Int64("sale_id", s.ID).
		Str("folio", s.Folio).
		Str("total", s.Total.String()).
		Str("payment_status", s.PaymentStatus).
		Int("items", len(lines)).
		Msg("venta confirmada")
	return &dto.CommitSaleResponse{ID: s.ID, Folio: s.Folio}, nil
}

func (uc *CommitSaleUseCase) commitOnce(ctx context.Context, in dto.CommitSaleRequest, clientRef string, lines []cartLine, tenders []tender) (commitResult, error) {
	var res commitResult
	err := uc.txRunner.RunSale(ctx, func(
		productRepo repository.ProductRepository,
		sellerRepo repository.SellerRepository,
		customerRepo repository.CustomerRepository,
		folioRepo repository.FolioRepository,
		saleRepo repository.SaleRepository,
	) error {
		// Idempotencia: se revisa bajo el lock, así dos reintentos no duplican la venta.
		if clientRef != "" {
			existing, err := saleRepo.GetByClientRef(ctx, clientRef)
			if err != nil {
				return fmt.Errorf("venta: buscar client_ref: %w", err)
			}
			if existing != nil {
				res = commitResult{sale: existing, replayed: true}
				return nil
			}
		}

		customerName, err := uc.resolveCustomer(ctx, customerRepo, in.Customer, in.CustomerID)
		if err != nil {
			return err
		}
		sellerName, err := uc.resolveSeller(ctx, sellerRepo, in.Seller, in.SellerID)
		if err != nil {
			return err
		}

		items := make([]*entity.SaleItem, 0, len(lines))
		amounts := make([]sale.LineAmounts, 0, len(lines))
		for i, l := range lines {
			item, err := uc.priceLine(ctx, productRepo, i, l)
			if err != nil {
				return err
			}
			amounts = append(amounts, sale.LineAmounts{
				Subtotal: item.LineSubtotal,
				Discount: item.Discount,
				Tax:      item.LineTax,
				Total:    item.LineTotal,
			})
			items = append(items, item)
		}
		totals := sale.SumLines(amounts)

		payments := make([]*entity.Payment, 0, len(tenders))
		paid, changeTotal := decimal.Zero, decimal.Zero
		for _, t := range tenders {
			p := &entity.Payment{
				Method:    t.method,
				Amount:    t.amount,
				Reference: t.reference,
				Tendered:  t.tendered,
			}
			if t.tendered.Valid {
				change := sale.Change(t.amount, t.tendered.Decimal)
				p.Change = decimal.NewNullDecimal(change)
				changeTotal = changeTotal.Add(change)
			}
			paid = paid.Add(t.amount)
			payments = append(payments, p)
		}

		folio, err := uc.folios.Next(ctx, folioRepo, saleRepo)
		if err != nil {
			return err
		}

		s := &entity.Sale{
			Folio:         folio.String(),
			FolioPrefix:   folio.Prefix,
			FolioNumber:   folio.Number,
			ClientRef:     clientRef,
			CustomerID:    in.CustomerID,
			SellerID:      in.SellerID,
			Customer:      customerName,
			Seller:        sellerName,
			Subtotal:      totals.Subtotal,
			DiscountTotal: totals.Discount,
			TaxTotal:      totals.Tax,
			Total:         totals.Total,
			PaidTotal:     paid,
			ChangeTotal:   changeTotal,
			PaymentStatus: sale.PaymentStatus(totals.Total, paid),
			CreatedAt:     uc.now().UTC(),
		}
		if err := saleRepo.Create(ctx, s); err != nil {
			return fmt.Errorf("venta: insertar cabecera %s: %w", s.Folio, err)
		}
		for _, item := range items {
			item.SaleID = s.ID
			if err := saleRepo.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("venta: insertar renglón %q: %w", item.DescriptionSnapshot, err)
			}
		}
		for _, p := range payments {
			p.SaleID = s.ID
			if err := saleRepo.CreatePayment(ctx, p); err != nil {
				return fmt.Errorf("venta: insertar pago %s: %w", p.Method, err)
			}
		}
		res = commitResult{sale: s}
		return nil
	})
	return res, err
}

// priceLine completa precio/impuesto/descripción desde el catálogo y calcula importes.
func (uc *CommitSaleUseCase) priceLine(ctx context.Context, products repository.ProductRepository, idx int, l cartLine) (*entity.SaleItem, error) {
	var product *entity.Product
	if l.sku != "" && (l.unitPrice == nil || l.taxRate == nil) {
		p, err := products.FindBySKU(ctx, l.sku)
		if err != nil {
			return nil, fmt.Errorf("venta: buscar producto %q: %w", l.sku, err)
		}
		if p == nil && l.unitPrice == nil {
			return nil, fmt.Errorf("%w: producto %q (renglón %d) no existe en catálogo", domain.ErrNotFound, l.sku, idx+1)
		}
		product = p
	}

	unitPrice := decimal.Zero
	switch {
	case l.unitPrice != nil:
		unitPrice = *l.unitPrice
	case product != nil:
		unitPrice = product.Price
	}

	taxRate := uc.cfg.DefaultTaxRate
	switch {
	case l.taxRate != nil:
		taxRate = *l.taxRate
	case product != nil:
		taxRate = product.TaxRate
	}

	description := l.description
	if description == "" && product != nil {
		description = product.Description
	}
	if description == "" {
		description = l.sku
	}

	amounts := sale.ComputeLine(l.qty, unitPrice, l.discount, taxRate)
	return &entity.SaleItem{
		SKU:                 l.sku,
		DescriptionSnapshot: description,
		Qty:                 l.qty,
		UnitPrice:           unitPrice,
		Discount:            amounts.Discount,
		TaxRate:             taxRate,
		LineSubtotal:        amounts.Subtotal,
		LineTax:             amounts.Tax,
		LineTotal:           amounts.Total,
	}, nil
}

func (uc *CommitSaleUseCase) resolveCustomer(ctx context.Context, customers repository.CustomerRepository, name string, id *int64) (string, error) {
	if id != nil {
		c, err := customers.GetByID(ctx, *id)
		if err != nil {
			return "", fmt.Errorf("venta: buscar cliente %d: %w", *id, err)
		}
		if c == nil {
			return "", fmt.Errorf("%w: cliente %d", domain.ErrNotFound, *id)
		}
		if name == "" {
			name = c.Name
		}
	}
	if name == "" {
		name = uc.cfg.DefaultCustomerName
	}
	return name, nil
}

func (uc *CommitSaleUseCase) resolveSeller(ctx context.Context, sellers repository.SellerRepository, name string, id *int64) (string, error) {
	if id != nil {
		s, err := sellers.GetByID(ctx, *id)
		if err != nil {
			return "", fmt.Errorf("venta: buscar vendedor %d: %w", *id, err)
		}
		if s == nil {
			return "", fmt.Errorf("%w: vendedor %d", domain.ErrNotFound, *id)
		}
		if name == "" {
			name = s.Name
		}
	}
	if name == "" {
		name = uc.cfg.DefaultSellerName
	}
	return name, nil
}

// normalizeCart valida el carrito antes de abrir la transacción.
func normalizeCart(in dto.CommitSaleRequest) (string, []cartLine, []tender, error) {
	var clientRef string
	if ref := strings.TrimSpace(in.ClientRef); ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			return "", nil, nil, fmt.Errorf("%w: client_ref %q no es un UUID", domain.ErrInvalidInput, ref)
		}
		clientRef = id.String()
	}

	if len(in.Items) == 0 {
		return "", nil, nil, fmt.Errorf("%w: la venta no tiene renglones", domain.ErrInvalidInput)
	}

	lines := make([]cartLine, 0, len(in.Items))
	for i, it := range in.Items {
		n := i + 1
		l := cartLine{
			sku:         strings.TrimSpace(it.SKU),
			description: strings.TrimSpace(it.Description),
			qty:         it.Qty,
			unitPrice:   it.UnitPrice,
			taxRate:     it.TaxRate,
			discount:    decimal.Zero,
		}
		if l.sku == "" && l.description == "" {
			return "", nil, nil, fmt.Errorf("%w: renglón %d sin SKU ni descripción", domain.ErrInvalidInput, n)
		}
		if !l.qty.IsPositive() {
			return "", nil, nil, fmt.Errorf("%w: renglón %d con cantidad %s (debe ser mayor que cero)", domain.ErrInvalidInput, n, l.qty)
		}
		if l.unitPrice != nil && l.unitPrice.IsNegative() {
			return "", nil, nil, fmt.Errorf("%w: renglón %d con precio negativo", domain.ErrInvalidInput, n)
		}
		if l.taxRate != nil && l.taxRate.IsNegative() {
			return "", nil, nil, fmt.Errorf("%w: renglón %d con tasa de impuesto negativa", domain.ErrInvalidInput, n)
		}
		if it.Discount != nil {
			if it.Discount.IsNegative() {
				return "", nil, nil, fmt.Errorf("%w: renglón %d con descuento negativo", domain.ErrInvalidInput, n)
			}
			l.discount = *it.Discount
		}
		if l.sku == "" && l.unitPrice == nil {
			return "", nil, nil, fmt.Errorf("%w: renglón %d de texto libre requiere precio", domain.ErrInvalidInput, n)
		}
		lines = append(lines, l)
	}

	tenders := make([]tender, 0, len(in.Payments))
	for i, p := range in.Payments {
		n := i + 1
		t := tender{
			method:    strings.TrimSpace(p.Method),
			amount:    p.Amount,
			reference: strings.TrimSpace(p.Reference),
		}
		if t.method == "" {
			return "", nil, nil, fmt.Errorf("%w: pago %d sin método", domain.ErrInvalidInput, n)
		}
		if !t.amount.IsPositive() {
			return "", nil, nil, fmt.Errorf("%w: pago %d con monto %s (debe ser mayor que cero)", domain.ErrInvalidInput, n, t.amount)
		}
		if p.Tendered != nil {
			if p.Tendered.LessThan(t.amount) {
				return "", nil, nil, fmt.Errorf("%w: pago %d recibido %s menor al monto %s", domain.ErrInvalidInput, n, p.Tendered, t.amount)
			}
			t.tendered = decimal.NewNullDecimal(*p.Tendered)
		}
		tenders = append(tenders, t)
	}
	return clientRef, lines, tenders, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrBusy):
		return metrics.OutcomeBusy
	case errors.Is(err, domain.ErrIntegrity):
		return metrics.OutcomeIntegrity
	default:
		return metrics.OutcomeError
	}
}

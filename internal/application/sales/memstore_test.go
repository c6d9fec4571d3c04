package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/punto-venta/internal/domain"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

// memStore almacén en memoria con semántica de transacción exclusiva: RunSale toma el
// mutex y, si fn falla, descarta todo lo escrito.
type memStore struct {
	mu sync.Mutex

	products  map[string]*entity.Product
	sellers   map[int64]*entity.Seller
	customers map[int64]*entity.Customer
	folios    map[string]entity.FolioSequence
	sales     []*entity.Sale
	items     []*entity.SaleItem
	payments  []*entity.Payment
	nextID    int64

	runs            int
	busyFailures    int   // próximas N llamadas a RunSale devuelven ErrBusy
	failPaymentWith error // CreatePayment devuelve este error
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[string]*entity.Product{},
		sellers:   map[int64]*entity.Seller{},
		customers: map[int64]*entity.Customer{},
		folios:    map[string]entity.FolioSequence{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) RunSale(ctx context.Context, fn func(
	repository.ProductRepository,
	repository.SellerRepository,
	repository.CustomerRepository,
	repository.FolioRepository,
	repository.SaleRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	if s.busyFailures > 0 {
		s.busyFailures--
		return fmt.Errorf("%w: lock de escritura no disponible", domain.ErrBusy)
	}

	nSales, nItems, nPayments, nextID := len(s.sales), len(s.items), len(s.payments), s.nextID
	folios := make(map[string]entity.FolioSequence, len(s.folios))
	for k, v := range s.folios {
		folios[k] = v
	}

	err := fn(memProducts{s}, memSellers{s}, memCustomers{s}, memFolios{s}, memSales{s})
	if err != nil {
		s.sales, s.items, s.payments, s.nextID = s.sales[:nSales], s.items[:nItems], s.payments[:nPayments], nextID
		s.folios = folios
	}
	return err
}

func (s *memStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// reader devuelve un SaleRepository fuera de transacción.
func (s *memStore) reader() repository.SaleRepository { return lockedSales{s} }

type memProducts struct{ s *memStore }

func (r memProducts) FindBySKU(_ context.Context, sku string) (*entity.Product, error) {
	p, ok := r.s.products[sku]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memProducts) ListActive(context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r memProducts) Search(_ context.Context, q string, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.Active && (strings.Contains(p.SKU, q) || strings.Contains(p.Description, q)) {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memProducts) Upsert(_ context.Context, p *entity.Product) error {
	cp := *p
	r.s.products[p.SKU] = &cp
	return nil
}

type memSellers struct{ s *memStore }

func (r memSellers) GetByID(_ context.Context, id int64) (*entity.Seller, error) {
	return r.s.sellers[id], nil
}

func (r memSellers) ListActive(context.Context) ([]*entity.Seller, error) {
	var out []*entity.Seller
	for _, v := range r.s.sellers {
		out = append(out, v)
	}
	return out, nil
}

func (r memSellers) Upsert(_ context.Context, v *entity.Seller) error {
	if v.ID == 0 {
		v.ID = r.s.id()
	}
	r.s.sellers[v.ID] = v
	return nil
}

type memCustomers struct{ s *memStore }

func (r memCustomers) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	return r.s.customers[id], nil
}

func (r memCustomers) ListActive(context.Context) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, v := range r.s.customers {
		out = append(out, v)
	}
	return out, nil
}

func (r memCustomers) Upsert(_ context.Context, v *entity.Customer) error {
	if v.ID == 0 {
		v.ID = r.s.id()
	}
	r.s.customers[v.ID] = v
	return nil
}

type memFolios struct{ s *memStore }

func (r memFolios) Get(_ context.Context, name string) (*entity.FolioSequence, error) {
	seq, ok := r.s.folios[name]
	if !ok {
		return nil, nil
	}
	return &seq, nil
}

func (r memFolios) Save(_ context.Context, seq *entity.FolioSequence) error {
	r.s.folios[seq.Name] = *seq
	return nil
}

type memSales struct{ s *memStore }

func (r memSales) Create(_ context.Context, sale *entity.Sale) error {
	for _, existing := range r.s.sales {
		if existing.Folio == sale.Folio {
			return fmt.Errorf("%w: folio %s duplicado", domain.ErrIntegrity, sale.Folio)
		}
	}
	sale.ID = r.s.id()
	cp := *sale
	r.s.sales = append(r.s.sales, &cp)
	return nil
}

func (r memSales) CreateItem(_ context.Context, item *entity.SaleItem) error {
	item.ID = r.s.id()
	cp := *item
	r.s.items = append(r.s.items, &cp)
	return nil
}

func (r memSales) CreatePayment(_ context.Context, p *entity.Payment) error {
	if r.s.failPaymentWith != nil {
		return r.s.failPaymentWith
	}
	p.ID = r.s.id()
	cp := *p
	r.s.payments = append(r.s.payments, &cp)
	return nil
}

func (r memSales) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	for _, v := range r.s.sales {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (r memSales) GetByFolio(_ context.Context, folio string) (*entity.Sale, error) {
	for _, v := range r.s.sales {
		if v.Folio == folio {
			return v, nil
		}
	}
	return nil, nil
}

func (r memSales) GetByClientRef(_ context.Context, ref string) (*entity.Sale, error) {
	for _, v := range r.s.sales {
		if ref != "" && v.ClientRef == ref {
			return v, nil
		}
	}
	return nil, nil
}

func (r memSales) LastCreated(context.Context) (*entity.Sale, error) {
	var last *entity.Sale
	for _, v := range r.s.sales {
		if last == nil || v.CreatedAt.After(last.CreatedAt) || (v.CreatedAt.Equal(last.CreatedAt) && v.ID > last.ID) {
			last = v
		}
	}
	return last, nil
}

func (r memSales) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for i := len(r.s.sales) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.sales[i])
	}
	return out, nil
}

func (r memSales) ListItems(_ context.Context, saleID int64) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	for _, v := range r.s.items {
		if v.SaleID == saleID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memSales) ListPayments(_ context.Context, saleID int64) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, v := range r.s.payments {
		if v.SaleID == saleID {
			out = append(out, v)
		}
	}
	return out, nil
}

// lockedSales envuelve memSales tomando el mutex en cada lectura.
type lockedSales struct{ s *memStore }

func (r lockedSales) with() (memSales, func()) {
	r.s.mu.Lock()
	return memSales{r.s}, r.s.mu.Unlock
}

func (r lockedSales) Create(context.Context, *entity.Sale) error {
	return errors.New("solo lectura")
}
func (r lockedSales) CreateItem(context.Context, *entity.SaleItem) error {
	return errors.New("solo lectura")
}
func (r lockedSales) CreatePayment(context.Context, *entity.Payment) error {
	return errors.New("solo lectura")
}

func (r lockedSales) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	m, unlock := r.with()
	defer unlock()
	return m.GetByID(ctx, id)
}

func (r lockedSales) GetByFolio(ctx context.Context, folio string) (*entity.Sale, error) {
	m, unlock := r.with()
	defer unlock()
	return m.GetByFolio(ctx, folio)
}

func (r lockedSales) GetByClientRef(ctx context.Context, ref string) (*entity.Sale, error) {
	m, unlock := r.with()
	defer unlock()
	return m.GetByClientRef(ctx, ref)
}

func (r lockedSales) LastCreated(ctx context.Context) (*entity.Sale, error) {
	m, unlock := r.with()
	defer unlock()
	return m.LastCreated(ctx)
}

func (r lockedSales) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	m, unlock := r.with()
	defer unlock()
	return m.List(ctx, limit, offset)
}

func (r lockedSales) ListItems(ctx context.Context, saleID int64) ([]*entity.SaleItem, error) {
	m, unlock := r.with()
	defer unlock()
	return m.ListItems(ctx, saleID)
}

func (r lockedSales) ListPayments(ctx context.Context, saleID int64) ([]*entity.Payment, error) {
	m, unlock := r.with()
	defer unlock()
	return m.ListPayments(ctx, saleID)
}

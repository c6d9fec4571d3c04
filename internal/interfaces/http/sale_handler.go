package http

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/domain"
)

// HeaderIdempotencyKey llave de idempotencia opcional; se usa como client_ref si el cuerpo no trae una.
const HeaderIdempotencyKey = "Idempotency-Key"

type saleCommitter interface {
	CommitSale(ctx context.Context, in dto.CommitSaleRequest) (*dto.CommitSaleResponse, error)
}

type saleReader interface {
	GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error)
	GetSaleByFolio(ctx context.Context, folio string) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, page dto.PageRequest) (*dto.SaleListResponse, error)
}

type receiptRenderer interface {
	DownloadReceiptPDF(ctx context.Context, saleID int64) ([]byte, string, error)
}

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	commit  saleCommitter
	reader  saleReader
	receipt receiptRenderer
}

// NewSaleHandler construye el handler.
func NewSaleHandler(commit saleCommitter, reader saleReader, receipt receiptRenderer) *SaleHandler {
	return &SaleHandler{commit: commit, reader: reader, receipt: receipt}
}

// Create godoc
// @Summary      Confirmar venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "UUID de la venta en la terminal"
// @Param        body             body    dto.CommitSaleRequest  true   "Carrito y pagos"
// @Success      201  {object}  dto.CommitSaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CommitSaleRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if in.ClientRef == "" {
		in.ClientRef = strings.TrimSpace(c.Get(HeaderIdempotencyKey))
	}
	dropEmptyLines(&in)
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	out, err := h.commit.CommitSale(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// dropEmptyLines descarta renglones con cantidad <= 0 y pagos en cero, como hace la
// pantalla de venta al "borrar" un renglón dejándolo en cero.
func dropEmptyLines(in *dto.CommitSaleRequest) {
	items := in.Items[:0]
	for _, it := range in.Items {
		if it.Qty.IsPositive() {
			items = append(items, it)
		}
	}
	in.Items = items

	payments := in.Payments[:0]
	for _, p := range in.Payments {
		if !p.Amount.IsZero() {
			payments = append(payments, p)
		}
	}
	in.Payments = payments
}

// List godoc
// @Summary      Listar ventas (más recientes primero)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, fmt.Errorf("%w: paginación inválida", domain.ErrInvalidInput))
	}
	out, err := h.reader.ListSales(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID devuelve la venta con renglones y pagos.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, err := saleID(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.reader.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByFolio devuelve la venta por su folio visible.
// GET /api/sales/folio/:folio
func (h *SaleHandler) GetByFolio(c *fiber.Ctx) error {
	out, err := h.reader.GetSaleByFolio(c.UserContext(), c.Params("folio"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt descarga el ticket en PDF.
// GET /api/sales/:id/receipt.pdf
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, err := saleID(c)
	if err != nil {
		return respondError(c, err)
	}
	pdf, filename, err := h.receipt.DownloadReceiptPDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(pdf)
}

func saleID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id de venta inválido", domain.ErrInvalidInput)
	}
	return id, nil
}

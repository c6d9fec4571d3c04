package sales

import (
	"context"
	"fmt"
)

// ReceiptUseCase genera el ticket PDF de una venta confirmada.
type ReceiptUseCase struct {
	reader    *SaleReader
	generator ReceiptPDFGenerator
	business  BusinessInfo
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(reader *SaleReader, generator ReceiptPDFGenerator, business BusinessInfo) *ReceiptUseCase {
	return &ReceiptUseCase{reader: reader, generator: generator, business: business}
}

// DownloadReceiptPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
// domain.ErrNotFound si la venta no existe.
func (uc *ReceiptUseCase) DownloadReceiptPDF(ctx context.Context, saleID int64) ([]byte, string, error) {
	detail, err := uc.reader.GetDetail(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, detail, uc.business)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: generar PDF de %s: %w", detail.Sale.Folio, err)
	}
	return pdfBytes, fmt.Sprintf("ticket-%s.pdf", detail.Sale.Folio), nil
}

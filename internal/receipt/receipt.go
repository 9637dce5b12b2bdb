// Package receipt формирует PDF-чек заказа.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/linemk/ld-shop/internal/domain/models"
)

// Render рисует шапку заказа, позиции со снимком цены и итог.
// Встроенные шрифты PDF однобайтовые, символы вне cp1252 заменяются.
func Render(siteName string, order *models.Order, items []*models.OrderItem) ([]byte, error) {
	if siteName == "" {
		siteName = "LD Shop"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Order #%d", order.ID), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(siteName))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt for order #%d", order.ID))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Date: "+order.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 7, tr("Status: "+order.Status))
	pdf.Ln(6)
	if order.Contact != "" {
		pdf.Cell(0, 7, tr("Contact: "+order.Contact))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range items {
		pdf.CellFormat(95, 8, tr(it.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, it.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, it.Subtotal().StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(145, 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 9, order.Total.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	return buf.Bytes(), nil
}

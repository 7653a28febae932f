package invoice

import (
	"bytes"
	"fmt"

	"marketplace/internal/domain/model"

	"github.com/go-pdf/fpdf"
)

// 請求書に載せる販売元
type Company struct {
	Name    string
	Address string
	Email   string
}

// Renderer は注文1件からA4の請求書PDFを作る。状態を持たない
type Renderer struct {
	company  Company
	compress bool
}

func NewRenderer(company Company) *Renderer {
	return &Renderer{company: company, compress: true}
}

func Filename(orderUID string) string {
	return fmt.Sprintf("invoice-%s.pdf", orderUID)
}

// 列幅（mm）
var columns = []struct {
	title string
	width float64
	align string
}{
	{"Product", 90, "L"},
	{"Qty", 25, "C"},
	{"Price", 35, "R"},
	{"Total", 40, "R"},
}

func (r *Renderer) Render(d model.OrderDetail) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(Filename(d.OrderUID), true)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	//外枠
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(5, 5, 200, 287, "D")

	//ヘッダー帯
	pdf.SetFillColor(33, 37, 41)
	pdf.Rect(5, 5, 200, 25, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(12, 11)
	pdf.CellFormat(100, 12, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(100, 11)
	pdf.CellFormat(98, 12, tr(r.company.Name), "", 0, "R", false, 0, "")

	//販売元
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(12, 38)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(100, 6, tr(r.company.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(100, 5, tr(r.company.Address), "", 2, "L", false, 0, "")
	pdf.CellFormat(100, 5, tr(r.company.Email), "", 2, "L", false, 0, "")

	//請求書番号・日付
	pdf.SetXY(110, 38)
	pdf.CellFormat(88, 6, "Invoice No: "+d.OrderUID, "", 2, "R", false, 0, "")
	pdf.CellFormat(88, 6, "Date: "+d.CreatedAt.Format("02 Jan 2006"), "", 2, "R", false, 0, "")
	pdf.CellFormat(88, 6, "Status: "+d.Status.String(), "", 2, "R", false, 0, "")

	//請求先
	pdf.SetXY(12, 64)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(100, 6, "BILL TO", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{d.BuyerName, d.BuyerEmail, d.BuyerPhone, d.ShippingInfo} {
		if line != "" {
			pdf.CellFormat(180, 5, tr(line), "", 2, "L", false, 0, "")
		}
	}

	//明細
	pdf.SetXY(12, 98)
	pdf.SetFillColor(233, 236, 239)
	pdf.SetFont("Helvetica", "B", 10)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range d.Items {
		pdf.SetX(12)
		cells := []string{
			tr(truncate(it.ProductName, 48)),
			fmt.Sprintf("%d", it.Quantity),
			it.Price.StringFixed(2),
			it.Subtotal.StringFixed(2),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	//合計
	pdf.Ln(4)
	pdf.SetX(127)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(35, 9, "TOTAL", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 9, d.TotalAmount.StringFixed(2), "1", 1, "R", true, 0, "")

	//支払い
	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(6)
	method, paymentID := "-", "-"
	if d.Payment != nil {
		method = d.Payment.PaymentType
		if d.Payment.PaymentMethod != "" {
			method += " / " + d.Payment.PaymentMethod
		}
		paymentID = d.Payment.PaymentUID
	}
	pdf.SetX(12)
	pdf.CellFormat(180, 6, tr("Payment Method: "+method), "", 2, "L", false, 0, "")
	pdf.CellFormat(180, 6, "Payment ID: "+paymentID, "", 2, "L", false, 0, "")

	//フッター
	pdf.SetXY(12, 272)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(186, 5, "Thank you for shopping with us!", "", 2, "C", false, 0, "")
	pdf.CellFormat(186, 5, "This is a computer-generated invoice.", "", 2, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", d.OrderUID, err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

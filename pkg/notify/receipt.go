package notify

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

func receiptFilename(booking BookingContext) string {
	return fmt.Sprintf("receipt-%s.pdf", booking.BookingID)
}

// RenderReceipt draws the one-page payment receipt attached to confirmation
// mails.
func RenderReceipt(booking BookingContext) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.SetAuthor(brand, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Booking ID : " + booking.BookingID,
		"Name       : " + orDash(booking.Name),
		"Trip       : " + orDash(booking.TripName),
		"Date       : " + formatDate(booking.StartDate),
		fmt.Sprintf("People     : %d", booking.NumberOfPeople),
		"Reference  : " + orDash(booking.Reference),
		"Status     : " + orDash(booking.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Amount paid: %s %.2f", booking.Currency, booking.AmountPaid))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, fmt.Sprintf("Issued %s by %s. Present this receipt on the day of the trip.",
		time.Now().UTC().Format("2006-01-02 15:04 MST"), brand), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

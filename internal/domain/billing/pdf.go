package billing

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// RenderPDF genera la factura en PDF a partir del snapshot.
func RenderPDF(snap Snapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Factura - Clinica Veterinaria")

	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Cliente: %s (DNI %s)", snap.Client.Name, snap.Client.NationalID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Mascota: %s (%s)", snap.Patient.Name, snap.Patient.Breed))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Tratamiento: %s", snap.Treatment.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Fecha: %s", snap.Appointment.ScheduledAt.Format(time.RFC3339)))
	if snap.Appointment.PaymentMethod != nil {
		pdf.Ln(8)
		pdf.Cell(0, 10, fmt.Sprintf("Metodo de pago: %s", *snap.Appointment.PaymentMethod))
	}

	pdf.Ln(12)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Total: %s EUR", snap.Treatment.Price.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

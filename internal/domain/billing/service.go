package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vet-clinic-api/internal/domain/treatments"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// Errores específicos por paso para que el caller distinga qué
	// pieza falta, igual que la fuente de datos de factura original.
	ErrTreatmentNotFound   = errors.New("treatment not found")
	ErrAppointmentNotFound = errors.New("appointment not found for treatment")
	ErrPartiesNotFound     = errors.New("client or patient not found")

	// ErrMalformedTreatment: el registro no trae estado; distinto de
	// "no completado".
	ErrMalformedTreatment = errors.New("treatment record has no status")
)

type Service struct {
	reader Reader
}

func NewService(reader Reader) *Service {
	return &Service{reader: reader}
}

// AssembleInvoice arma el snapshot de cuatro entidades para una
// factura a partir del tratamiento. Solo lectura.
func (s *Service) AssembleInvoice(ctx context.Context, treatmentID string) (Snapshot, error) {
	treatmentID = strings.TrimSpace(treatmentID)
	if treatmentID == "" {
		return Snapshot{}, fmt.Errorf("%w: missing field treatment_id", ErrInvalidInput)
	}
	return s.reader.Load(ctx, treatmentID)
}

// ValidateCompleted devuelve true solo si el tratamiento está en
// estado Completed. Un registro sin estado es un error
// (ErrMalformedTreatment), no un false.
func (s *Service) ValidateCompleted(t treatments.Treatment) (bool, error) {
	if strings.TrimSpace(string(t.Status)) == "" {
		return false, ErrMalformedTreatment
	}
	return t.Status == treatments.StatusCompleted, nil
}

// Total es el importe de la factura: el precio del tratamiento.
func (s *Service) Total(snap Snapshot) decimal.Decimal {
	return snap.Treatment.Price
}

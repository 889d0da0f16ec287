// Package export serializa las colecciones de entidades al documento
// de intercambio JSON: el valor top-level es una lista con un mapping
// por entidad y las fechas se representan como strings ISO-8601.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
	"vet-clinic-api/internal/domain/treatments"
)

var ErrInvalidDocument = errors.New("invalid export document")

type Service struct {
	clients      clients.Repository
	patients     patients.Repository
	treatments   treatments.Repository
	appointments appointments.Repository

	dir string // EXPORT_DIR
	now func() time.Time
}

func NewService(
	clientsRepo clients.Repository,
	patientsRepo patients.Repository,
	treatmentsRepo treatments.Repository,
	appointmentsRepo appointments.Repository,
	dir string,
) *Service {
	return &Service{
		clients:      clientsRepo,
		patients:     patientsRepo,
		treatments:   treatmentsRepo,
		appointments: appointmentsRepo,
		dir:          dir,
		now:          time.Now,
	}
}

// Registros del documento de intercambio. Fechas en RFC3339.

type ClientRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	NationalID string `json:"national_id"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type PatientRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Age       int    `json:"age"`
	Condition string `json:"condition,omitempty"`
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type TreatmentRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	ClientID    string          `json:"client_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type AppointmentRecord struct {
	ID            string  `json:"id"`
	ScheduledAt   string  `json:"scheduled_at"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	PatientID     string  `json:"patient_id"`
	ClientID      string  `json:"client_id"`
	TreatmentID   string  `json:"treatment_id"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func (s *Service) ExportClients(ctx context.Context, w io.Writer) error {
	items, err := s.clients.List(ctx)
	if err != nil {
		return err
	}

	records := make([]ClientRecord, 0, len(items))
	for _, c := range items {
		records = append(records, toClientRecord(c))
	}
	return writeDocument(w, records)
}

func (s *Service) ExportPatients(ctx context.Context, w io.Writer) error {
	items, err := s.patients.List(ctx)
	if err != nil {
		return err
	}

	records := make([]PatientRecord, 0, len(items))
	for _, p := range items {
		records = append(records, PatientRecord{
			ID:        p.ID,
			Name:      p.Name,
			Breed:     p.Breed,
			Age:       p.Age,
			Condition: p.Condition,
			Status:    string(p.Status),
			ClientID:  p.ClientID,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
			UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
		})
	}
	return writeDocument(w, records)
}

func (s *Service) ExportTreatments(ctx context.Context, w io.Writer) error {
	items, err := s.treatments.List(ctx)
	if err != nil {
		return err
	}

	records := make([]TreatmentRecord, 0, len(items))
	for _, t := range items {
		records = append(records, TreatmentRecord{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Price:       t.Price,
			Status:      string(t.Status),
			ClientID:    t.ClientID,
			CreatedAt:   t.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
		})
	}
	return writeDocument(w, records)
}

func (s *Service) ExportAppointments(ctx context.Context, w io.Writer) error {
	items, err := s.appointments.List(ctx, nil)
	if err != nil {
		return err
	}

	records := make([]AppointmentRecord, 0, len(items))
	for _, a := range items {
		rec := AppointmentRecord{
			ID:          a.ID,
			ScheduledAt: a.ScheduledAt.Format(time.RFC3339),
			Description: a.Description,
			Status:      string(a.Status),
			PatientID:   a.PatientID,
			ClientID:    a.ClientID,
			TreatmentID: a.TreatmentID,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
		}
		if a.PaymentMethod != nil {
			pm := string(*a.PaymentMethod)
			rec.PaymentMethod = &pm
		}
		records = append(records, rec)
	}
	return writeDocument(w, records)
}

// ExportAll escribe un archivo por tabla bajo el directorio de export.
func (s *Service) ExportAll(ctx context.Context) (map[string]string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	files := map[string]func(context.Context, io.Writer) error{
		"clients.json":      s.ExportClients,
		"patients.json":     s.ExportPatients,
		"treatments.json":   s.ExportTreatments,
		"appointments.json": s.ExportAppointments,
	}

	written := make(map[string]string, len(files))
	for name, fn := range files {
		path := filepath.Join(s.dir, name)
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		if err := fn(ctx, f); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		written[strings.TrimSuffix(name, ".json")] = path
	}
	return written, nil
}

// ImportClients hace upsert-por-id de un documento de clientes:
// re-importar un export de N clientes deja exactamente N registros,
// campo a campo iguales a los originales.
func (s *Service) ImportClients(ctx context.Context, r io.Reader) (int, error) {
	var records []ClientRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	count := 0
	for _, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return count, fmt.Errorf("%w: record without id", ErrInvalidDocument)
		}

		createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if err != nil {
			return count, fmt.Errorf("%w: created_at %q", ErrInvalidDocument, rec.CreatedAt)
		}
		updatedAt, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			return count, fmt.Errorf("%w: updated_at %q", ErrInvalidDocument, rec.UpdatedAt)
		}

		c := clients.Client{
			ID:         rec.ID,
			Name:       rec.Name,
			Age:        rec.Age,
			NationalID: rec.NationalID,
			Address:    rec.Address,
			Phone:      rec.Phone,
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		}

		if _, err := s.clients.GetByID(ctx, rec.ID); err == nil {
			if err := s.clients.Update(ctx, c); err != nil {
				return count, err
			}
		} else if errors.Is(err, clients.ErrNotFound) {
			if err := s.clients.Create(ctx, c); err != nil {
				return count, err
			}
		} else {
			return count, err
		}
		count++
	}
	return count, nil
}

func toClientRecord(c clients.Client) ClientRecord {
	return ClientRecord{
		ID:         c.ID,
		Name:       c.Name,
		Age:        c.Age,
		NationalID: c.NationalID,
		Address:    c.Address,
		Phone:      c.Phone,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

func writeDocument(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("appointment not found")
	ErrDuplicate    = errors.New("appointment already exists for this slot")
	// ErrInvalidState: transición desde un estado terminal u orden inválido.
	ErrInvalidState = errors.New("invalid state transition")
)

// transitions define los pasos permitidos de la máquina de estados.
// Cancelled se maneja aparte: vale desde cualquier estado no terminal.
var transitions = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusInProgress,
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	ScheduledAt time.Time
	Description string
	Status      string
	PatientID   string
	ClientID    string
	TreatmentID string
}

// Create registra una cita. checkDuplicates=false es la vía de escape
// explícita para cargas masivas de confianza: puede crear reservas
// duplicadas y el caller asume esa responsabilidad.
func (s *Service) Create(ctx context.Context, in CreateInput, checkDuplicates bool) (Appointment, error) {
	if in.ScheduledAt.IsZero() {
		return Appointment{}, fmt.Errorf("%w: missing field scheduled_at", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return Appointment{}, fmt.Errorf("%w: missing field description", ErrInvalidInput)
	}
	if strings.TrimSpace(in.PatientID) == "" {
		return Appointment{}, fmt.Errorf("%w: missing field patient_id", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return Appointment{}, fmt.Errorf("%w: missing field client_id", ErrInvalidInput)
	}
	if strings.TrimSpace(in.TreatmentID) == "" {
		return Appointment{}, fmt.Errorf("%w: missing field treatment_id", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Status) == "" {
		return Appointment{}, fmt.Errorf("%w: missing field status", ErrInvalidInput)
	}
	status := Status(strings.TrimSpace(in.Status))
	if !ValidStatus(status) {
		return Appointment{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, in.Status)
	}

	now := s.now()
	a := Appointment{
		ID:          uuid.NewString(),
		ScheduledAt: in.ScheduledAt,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		PatientID:   strings.TrimSpace(in.PatientID),
		ClientID:    strings.TrimSpace(in.ClientID),
		TreatmentID: strings.TrimSpace(in.TreatmentID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a, checkDuplicates); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

type ListResult struct {
	Total int           `json:"total"`
	Items []Appointment `json:"items"`
}

// List devuelve todas las citas, opcionalmente filtradas por estado.
// Un filtro fuera del enum es un error de validación.
func (s *Service) List(ctx context.Context, statusFilter string) (ListResult, error) {
	var filter *Status
	if strings.TrimSpace(statusFilter) != "" {
		st := Status(strings.TrimSpace(statusFilter))
		if !ValidStatus(st) {
			return ListResult{}, fmt.Errorf("%w: invalid status filter %q", ErrInvalidInput, statusFilter)
		}
		filter = &st
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	if items == nil {
		items = []Appointment{}
	}
	return ListResult{Total: len(items), Items: items}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Find devuelve la primera cita para (mascota, cliente); se usa como
// chequeo de disponibilidad.
func (s *Service) Find(ctx context.Context, patientID, clientID string) (Appointment, error) {
	patientID = strings.TrimSpace(patientID)
	clientID = strings.TrimSpace(clientID)
	if patientID == "" || clientID == "" {
		return Appointment{}, ErrInvalidInput
	}
	return s.repo.FindFirst(ctx, patientID, clientID)
}

type UpdateInput struct {
	ScheduledAt *time.Time
	Description *string
	TreatmentID *string
}

// MutableFields es el allow-list de Update. El estado cambia solo por
// Confirm/Start/Cancel/Complete; claves desconocidas se rechazan.
var MutableFields = map[string]bool{
	"scheduled_at": true,
	"description":  true,
	"treatment_id": true,
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}

	if in.ScheduledAt != nil {
		if in.ScheduledAt.IsZero() {
			return Appointment{}, fmt.Errorf("%w: scheduled_at must not be zero", ErrInvalidInput)
		}
		current.ScheduledAt = *in.ScheduledAt
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return Appointment{}, fmt.Errorf("%w: description must not be empty", ErrInvalidInput)
		}
		current.Description = desc
	}
	if in.TreatmentID != nil {
		tid := strings.TrimSpace(*in.TreatmentID)
		if tid == "" {
			return Appointment{}, fmt.Errorf("%w: treatment_id must not be empty", ErrInvalidInput)
		}
		current.TreatmentID = tid
	}

	current.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, current); err != nil {
		return Appointment{}, err
	}
	return current, nil
}

// Confirm avanza Pending -> Confirmed.
func (s *Service) Confirm(ctx context.Context, id string) (Appointment, error) {
	return s.advance(ctx, id, StatusConfirmed)
}

// Start avanza Confirmed -> InProgress.
func (s *Service) Start(ctx context.Context, id string) (Appointment, error) {
	return s.advance(ctx, id, StatusInProgress)
}

func (s *Service) advance(ctx context.Context, id string, target Status) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if transitions[a.Status] != target {
		return Appointment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidState, a.Status, target)
	}

	a.Status = target
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Cancel pasa cualquier estado no terminal a Cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status.Terminal() {
		return Appointment{}, fmt.Errorf("%w: cannot cancel a %s appointment", ErrInvalidState, a.Status)
	}

	a.Status = StatusCancelled
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Complete valida el método de pago, lo registra y pasa la cita a
// Completed. Rechaza estados terminales sin tocar nada.
func (s *Service) Complete(ctx context.Context, id string, method string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}

	pm := PaymentMethod(strings.TrimSpace(method))
	if !ValidPaymentMethod(pm) {
		return Appointment{}, fmt.Errorf("%w: invalid payment method %q", ErrInvalidInput, method)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status.Terminal() {
		return Appointment{}, fmt.Errorf("%w: cannot complete a %s appointment", ErrInvalidState, a.Status)
	}

	a.Status = StatusCompleted
	a.PaymentMethod = &pm
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

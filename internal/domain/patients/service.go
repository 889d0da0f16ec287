package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("patient not found")
	ErrClientNotFound = errors.New("client not found")
)

// ClientDirectory es lo mínimo que necesitamos del registro de clientes:
// verificar que el dueño exista y resolver su nombre para candidatos.
type ClientDirectory interface {
	ClientName(ctx context.Context, clientID string) (string, error)
}

type Service struct {
	repo    Repository
	clients ClientDirectory
	now     func() time.Time
}

func NewService(repo Repository, clients ClientDirectory) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		now:     time.Now,
	}
}

type RegisterInput struct {
	Name      string
	Breed     string
	Age       int
	Condition string
	Status    string
}

// Register crea una mascota bajo un cliente existente.
func (s *Service) Register(ctx context.Context, clientID string, in RegisterInput) (Patient, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Patient{}, fmt.Errorf("%w: missing field client_id", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Patient{}, fmt.Errorf("%w: missing field name", ErrInvalidInput)
	}
	if in.Age < 0 {
		return Patient{}, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}

	status := StatusAlive
	if strings.TrimSpace(in.Status) != "" {
		status = Status(strings.TrimSpace(in.Status))
		if !ValidStatus(status) {
			return Patient{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, in.Status)
		}
	}

	if _, err := s.clients.ClientName(ctx, clientID); err != nil {
		return Patient{}, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	now := s.now()
	p := Patient{
		ID:        uuid.NewString(),
		Name:      name,
		Breed:     strings.TrimSpace(in.Breed),
		Age:       in.Age,
		Condition: strings.TrimSpace(in.Condition),
		Status:    status,
		ClientID:  clientID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Patient, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// FindCandidates busca mascotas por fragmento de nombre, anotadas con
// el nombre del dueño. Misma semántica de desambiguación que clientes.
func (s *Service) FindCandidates(ctx context.Context, fragment string) ([]Candidate, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, fmt.Errorf("%w: missing field name", ErrInvalidInput)
	}

	matches, err := s.repo.SearchByName(ctx, fragment)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(matches))
	for _, p := range matches {
		owner, err := s.clients.ClientName(ctx, p.ClientID)
		if err != nil {
			owner = ""
		}
		out = append(out, Candidate{Patient: p, OwnerName: owner})
	}
	return out, nil
}

type UpdateInput struct {
	Name      *string
	Breed     *string
	Age       *int
	Condition *string
}

// MutableFields es el allow-list de campos modificables vía Update.
// El estado vital solo cambia por MarkDeceased.
var MutableFields = map[string]bool{
	"name":      true,
	"breed":     true,
	"age":       true,
	"condition": true,
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Patient{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		current.Name = name
	}
	if in.Breed != nil {
		current.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Age != nil {
		if *in.Age < 0 {
			return Patient{}, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
		}
		current.Age = *in.Age
	}
	if in.Condition != nil {
		current.Condition = strings.TrimSpace(*in.Condition)
	}

	current.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, current); err != nil {
		return Patient{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// MarkDeceased marca la mascota (dueño + nombre) como fallecida.
// Idempotente: repetir la llamada sobre una mascota ya fallecida
// devuelve la mascota tal cual, sin error.
func (s *Service) MarkDeceased(ctx context.Context, clientID, name string) (Patient, error) {
	clientID = strings.TrimSpace(clientID)
	name = strings.TrimSpace(name)
	if clientID == "" || name == "" {
		return Patient{}, ErrInvalidInput
	}

	p, err := s.repo.GetByClientAndName(ctx, clientID, name)
	if err != nil {
		return Patient{}, err
	}

	if p.Status == StatusDeceased {
		return p, nil
	}

	p.Status = StatusDeceased
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

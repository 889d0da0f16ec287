package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("client not found")
	ErrDuplicate     = errors.New("client already registered")
	ErrHasDependents = errors.New("client has dependent records")
)

// PatientNamer devuelve los nombres de las mascotas de un cliente.
// Lo implementa el registro de pacientes; se inyecta desde el router
// para no acoplar los paquetes de dominio entre sí.
type PatientNamer interface {
	PatientNames(ctx context.Context, clientID string) ([]string, error)
}

// DependentsChecker responde si el cliente tiene mascotas o citas que
// lo referencian. Se usa para la política de borrado (forbid-if-dependents).
type DependentsChecker interface {
	ClientHasDependents(ctx context.Context, clientID string) (bool, error)
}

type Service struct {
	repo       Repository
	namer      PatientNamer
	dependents DependentsChecker
	now        func() time.Time
}

func NewService(repo Repository, namer PatientNamer, dependents DependentsChecker) *Service {
	return &Service{
		repo:       repo,
		namer:      namer,
		dependents: dependents,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Name       string
	Age        int
	NationalID string
	Address    string
	Phone      string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Client, error) {
	name := strings.TrimSpace(in.Name)
	nationalID := strings.TrimSpace(in.NationalID)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return Client{}, fmt.Errorf("%w: missing field name", ErrInvalidInput)
	}
	if nationalID == "" {
		return Client{}, fmt.Errorf("%w: missing field national_id", ErrInvalidInput)
	}
	if phone == "" {
		return Client{}, fmt.Errorf("%w: missing field phone", ErrInvalidInput)
	}
	if in.Age < 0 {
		return Client{}, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}

	if _, err := s.repo.GetByNationalID(ctx, nationalID); err == nil {
		return Client{}, fmt.Errorf("%w: national_id %s", ErrDuplicate, nationalID)
	} else if !errors.Is(err, ErrNotFound) {
		return Client{}, err
	}
	if _, err := s.repo.GetByPhone(ctx, phone); err == nil {
		return Client{}, fmt.Errorf("%w: phone %s", ErrDuplicate, phone)
	} else if !errors.Is(err, ErrNotFound) {
		return Client{}, err
	}

	now := s.now()
	c := Client{
		ID:         uuid.NewString(),
		Name:       name,
		Age:        in.Age,
		NationalID: nationalID,
		Address:    strings.TrimSpace(in.Address),
		Phone:      phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Client{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (Client, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return Client{}, ErrInvalidInput
	}
	return s.repo.GetByNationalID(ctx, nationalID)
}

// FindCandidates busca clientes por fragmento de nombre y anota cada
// resultado con las mascotas del cliente. La selección entre varios
// candidatos es responsabilidad del caller (API o UI), no de este módulo.
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
	for _, c := range matches {
		names, err := s.namer.PatientNames(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{Client: c, PatientNames: names})
	}
	return out, nil
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name    *string
	Age     *int
	Address *string
	Phone   *string
}

// MutableFields es el allow-list de campos modificables vía Update.
// Claves desconocidas se rechazan en el handler con ErrInvalidInput.
var MutableFields = map[string]bool{
	"name":    true,
	"age":     true,
	"address": true,
	"phone":   true,
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Client{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Client{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Client{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		current.Name = name
	}
	if in.Age != nil {
		if *in.Age < 0 {
			return Client{}, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
		}
		current.Age = *in.Age
	}
	if in.Address != nil {
		current.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			return Client{}, fmt.Errorf("%w: phone must not be empty", ErrInvalidInput)
		}
		if other, err := s.repo.GetByPhone(ctx, phone); err == nil && other.ID != id {
			return Client{}, fmt.Errorf("%w: phone %s", ErrDuplicate, phone)
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return Client{}, err
		}
		current.Phone = phone
	}

	current.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, current); err != nil {
		return Client{}, err
	}
	return current, nil
}

// Delete borra el cliente. Política elegida: prohibido si existen
// mascotas o citas que lo referencian (forbid-if-dependents).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	has, err := s.dependents.ClientHasDependents(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: delete patients and appointments first", ErrHasDependents)
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

package treatments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("treatment not found")
	ErrDuplicate    = errors.New("treatment already registered")
)

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
	Name        string
	Description string
	Price       decimal.Decimal
	Status      string
	ClientID    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Treatment, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Treatment{}, fmt.Errorf("%w: missing field name", ErrInvalidInput)
	}
	if !in.Price.IsPositive() {
		return Treatment{}, fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
	}

	status := StatusActive
	if strings.TrimSpace(in.Status) != "" {
		status = Status(strings.TrimSpace(in.Status))
		if !ValidStatus(status) {
			return Treatment{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, in.Status)
		}
	}

	// Colisión de nombre normalizando mayúsculas; el índice único
	// lower(name) en postgres cubre la carrera.
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Treatment{}, fmt.Errorf("%w: %s", ErrDuplicate, name)
	} else if !errors.Is(err, ErrNotFound) {
		return Treatment{}, err
	}

	now := s.now()
	t := Treatment{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Status:      status,
		ClientID:    strings.TrimSpace(in.ClientID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Treatment{}, err
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Treatment{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (Treatment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Treatment{}, ErrInvalidInput
	}
	return s.repo.GetByName(ctx, name)
}

func (s *Service) List(ctx context.Context) ([]Treatment, error) {
	return s.repo.List(ctx)
}

// Retire da de baja el tratamiento por nombre. Comportamiento de la
// fuente: la fila se elimina, no se marca.
func (s *Service) Retire(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidInput
	}

	t, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, t.ID)
}

type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Status      *string
}

// MutableFields es el allow-list de campos modificables vía Update.
var MutableFields = map[string]bool{
	"name":        true,
	"description": true,
	"price":       true,
	"status":      true,
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Treatment{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Treatment{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Treatment{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		if other, err := s.repo.GetByName(ctx, name); err == nil && other.ID != id {
			return Treatment{}, fmt.Errorf("%w: %s", ErrDuplicate, name)
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return Treatment{}, err
		}
		current.Name = name
	}
	if in.Description != nil {
		current.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return Treatment{}, fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
		}
		current.Price = *in.Price
	}
	if in.Status != nil {
		status := Status(strings.TrimSpace(*in.Status))
		if !ValidStatus(status) {
			return Treatment{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *in.Status)
		}
		current.Status = status
	}

	current.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, current); err != nil {
		return Treatment{}, err
	}
	return current, nil
}

package patients

import "context"

type Repository interface {
	Create(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	// GetByClientAndName busca por dueño + nombre exacto (case-insensitive).
	GetByClientAndName(ctx context.Context, clientID, name string) (Patient, error)
	SearchByName(ctx context.Context, fragment string) ([]Patient, error)
	ListByClient(ctx context.Context, clientID string) ([]Patient, error)
	Update(ctx context.Context, p Patient) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Patient, error)
}

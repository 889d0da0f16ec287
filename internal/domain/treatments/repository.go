package treatments

import "context"

type Repository interface {
	Create(ctx context.Context, t Treatment) error
	GetByID(ctx context.Context, id string) (Treatment, error)
	// GetByName busca por nombre exacto tras normalización de mayúsculas.
	GetByName(ctx context.Context, name string) (Treatment, error)
	Update(ctx context.Context, t Treatment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Treatment, error)
}

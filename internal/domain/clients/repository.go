package clients

import "context"

type Repository interface {
	Create(ctx context.Context, c Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	GetByNationalID(ctx context.Context, nationalID string) (Client, error)
	GetByPhone(ctx context.Context, phone string) (Client, error)
	// SearchByName busca por fragmento, case-insensitive.
	SearchByName(ctx context.Context, fragment string) ([]Client, error)
	Update(ctx context.Context, c Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Client, error)
}

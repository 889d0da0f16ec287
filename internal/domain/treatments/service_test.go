package treatments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type testRepo struct {
	byID map[string]Treatment
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Treatment{}}
}

func (r *testRepo) Create(ctx context.Context, t Treatment) error {
	if t.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Treatment, error) {
	t, ok := r.byID[id]
	if !ok {
		return Treatment{}, ErrNotFound
	}
	return t, nil
}

func (r *testRepo) GetByName(ctx context.Context, name string) (Treatment, error) {
	for _, t := range r.byID {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Treatment{}, ErrNotFound
}

func (r *testRepo) Update(ctx context.Context, t Treatment) error {
	if _, ok := r.byID[t.ID]; !ok {
		return ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) List(ctx context.Context) ([]Treatment, error) {
	out := make([]Treatment, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}

func TestService_Create_DefaultsToActive(t *testing.T) {
	svc := NewService(newTestRepo())

	tr, err := svc.Create(context.Background(), CreateInput{
		Name:  "Vacunación",
		Price: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if tr.Status != StatusActive {
		t.Fatalf("expected Active, got %s", tr.Status)
	}
}

func TestService_Create_RejectsNonPositivePrice(t *testing.T) {
	svc := NewService(newTestRepo())

	for _, price := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := svc.Create(context.Background(), CreateInput{Name: "Vacunación", Price: price})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for price %s, got %v", price, err)
		}
	}
}

func TestService_Create_DuplicateName_CaseInsensitive(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Name: "Limpieza dental", Price: decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "LIMPIEZA DENTAL", Price: decimal.NewFromInt(50),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 record, got %d", len(repo.byID))
	}
}

func TestService_Retire_ByName(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, _ = svc.Create(context.Background(), CreateInput{
		Name: "Desparasitación", Price: decimal.NewFromInt(15),
	})

	if err := svc.Retire(context.Background(), "Desparasitación"); err != nil {
		t.Fatalf("Retire error: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected row removed, got %d", len(repo.byID))
	}

	if err := svc.Retire(context.Background(), "Desparasitación"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second retire, got %v", err)
	}
}

func TestService_Update_StatusEnumClosed(t *testing.T) {
	svc := NewService(newTestRepo())

	tr, _ := svc.Create(context.Background(), CreateInput{
		Name: "Radiografía", Price: decimal.NewFromInt(60),
	})

	bad := "Done"
	_, err := svc.Update(context.Background(), tr.ID, UpdateInput{Status: &bad})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for status %q, got %v", bad, err)
	}

	good := string(StatusCompleted)
	updated, err := svc.Update(context.Background(), tr.ID, UpdateInput{Status: &good})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("expected Completed, got %s", updated.Status)
	}
}

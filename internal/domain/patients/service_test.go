package patients

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Patient
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Patient{}}
}

func (r *testRepo) Create(ctx context.Context, p Patient) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) GetByClientAndName(ctx context.Context, clientID, name string) (Patient, error) {
	for _, p := range r.byID {
		if p.ClientID == clientID && strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Patient{}, ErrNotFound
}

func (r *testRepo) SearchByName(ctx context.Context, fragment string) ([]Patient, error) {
	out := make([]Patient, 0)
	for _, p := range r.byID {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(fragment)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) ListByClient(ctx context.Context, clientID string) ([]Patient, error) {
	out := make([]Patient, 0)
	for _, p := range r.byID {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, p Patient) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) List(ctx context.Context) ([]Patient, error) {
	out := make([]Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

type stubClients struct {
	names map[string]string
}

func (c stubClients) ClientName(ctx context.Context, clientID string) (string, error) {
	name, ok := c.names[clientID]
	if !ok {
		return "", errors.New("client not found")
	}
	return name, nil
}

func TestService_Register_UnknownClient(t *testing.T) {
	svc := NewService(newTestRepo(), stubClients{})

	_, err := svc.Register(context.Background(), "missing-client", RegisterInput{
		Name: "Firulais", Breed: "Labrador", Age: 3,
	})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestService_Register_DefaultsToAlive(t *testing.T) {
	svc := NewService(newTestRepo(), stubClients{names: map[string]string{"client-1": "Juan Perez"}})

	p, err := svc.Register(context.Background(), "client-1", RegisterInput{
		Name: "Firulais", Breed: "Labrador", Age: 3,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if p.Status != StatusAlive {
		t.Fatalf("expected status Alive, got %s", p.Status)
	}
	if p.ClientID != "client-1" {
		t.Fatalf("expected client id set, got %q", p.ClientID)
	}
}

func TestService_Register_RejectsInvalidStatus(t *testing.T) {
	svc := NewService(newTestRepo(), stubClients{names: map[string]string{"client-1": "Juan Perez"}})

	_, err := svc.Register(context.Background(), "client-1", RegisterInput{
		Name: "Firulais", Status: "Zombie",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_MarkDeceased_Idempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, stubClients{names: map[string]string{"client-1": "Juan Perez"}})

	now := time.Date(2024, 11, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Register(context.Background(), "client-1", RegisterInput{
		Name: "Firulais", Breed: "Labrador", Age: 3,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	first, err := svc.MarkDeceased(context.Background(), "client-1", "Firulais")
	if err != nil {
		t.Fatalf("MarkDeceased #1 error: %v", err)
	}
	if first.Status != StatusDeceased {
		t.Fatalf("expected Deceased, got %s", first.Status)
	}

	second, err := svc.MarkDeceased(context.Background(), "client-1", "Firulais")
	if err != nil {
		t.Fatalf("MarkDeceased #2 must not error, got: %v", err)
	}
	if second.Status != StatusDeceased {
		t.Fatalf("expected Deceased on repeat, got %s", second.Status)
	}
	if second.UpdatedAt != first.UpdatedAt {
		t.Fatalf("expected no-op on repeat call")
	}
}

func TestService_MarkDeceased_UnknownPatient(t *testing.T) {
	svc := NewService(newTestRepo(), stubClients{names: map[string]string{"client-1": "Juan Perez"}})

	_, err := svc.MarkDeceased(context.Background(), "client-1", "Fantasma")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Update_Allowlist(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, stubClients{names: map[string]string{"client-1": "Juan Perez"}})

	p, _ := svc.Register(context.Background(), "client-1", RegisterInput{
		Name: "Firulais", Breed: "Labrador", Age: 3,
	})

	breed := "Golden Retriever"
	age := 4
	updated, err := svc.Update(context.Background(), p.ID, UpdateInput{Breed: &breed, Age: &age})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Breed != breed || updated.Age != age {
		t.Fatalf("expected fields updated, got %#v", updated)
	}
	if updated.Name != "Firulais" {
		t.Fatalf("expected untouched fields preserved")
	}

	if MutableFields["status"] {
		t.Fatalf("status must not be mutable via Update")
	}
}

package clients

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Client
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Client{}}
}

func (r *testRepo) Create(ctx context.Context, c Client) error {
	if c.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) GetByNationalID(ctx context.Context, nationalID string) (Client, error) {
	for _, c := range r.byID {
		if c.NationalID == nationalID {
			return c, nil
		}
	}
	return Client{}, ErrNotFound
}

func (r *testRepo) GetByPhone(ctx context.Context, phone string) (Client, error) {
	for _, c := range r.byID {
		if c.Phone == phone {
			return c, nil
		}
	}
	return Client{}, ErrNotFound
}

func (r *testRepo) SearchByName(ctx context.Context, fragment string) ([]Client, error) {
	out := make([]Client, 0)
	for _, c := range r.byID {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(fragment)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, c Client) error {
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) List(ctx context.Context) ([]Client, error) {
	out := make([]Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

type stubNamer struct {
	names map[string][]string
}

func (n stubNamer) PatientNames(ctx context.Context, clientID string) ([]string, error) {
	return n.names[clientID], nil
}

type stubDependents struct {
	has map[string]bool
}

func (d stubDependents) ClientHasDependents(ctx context.Context, clientID string) (bool, error) {
	return d.has[clientID], nil
}

func newTestService(repo *testRepo) *Service {
	return NewService(repo, stubNamer{}, stubDependents{})
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_ThenGetByID_FieldIdentical(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	now := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Juan Perez",
		Age:        30,
		NationalID: "12345678A",
		Address:    "Calle Falsa 123",
		Phone:      "611222333",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected id assigned")
	}

	got, err := svc.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got != c {
		t.Fatalf("expected field-identical client, got %#v vs %#v", got, c)
	}
	if got.CreatedAt != now || got.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Register_DuplicateNationalID_NoSecondRecord(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Juan Perez", NationalID: "12345678A", Phone: "611222333",
	})
	if err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	// mismo DNI, distinto teléfono
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Otro Perez", NationalID: "12345678A", Phone: "699888777",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected exactly 1 record, got %d", len(repo.byID))
	}
}

func TestService_Register_DuplicatePhone(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Juan Perez", NationalID: "12345678A", Phone: "611222333",
	})
	if err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Maria Lopez", NationalID: "87654321B", Phone: "611222333",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestService_Register_MissingFieldsNameTheField(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Juan Perez", Phone: "611222333",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "national_id") {
		t.Fatalf("expected error to name national_id, got %q", err.Error())
	}
}

func TestService_FindCandidates_AnnotatesPatientNames(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, stubNamer{names: map[string][]string{}}, stubDependents{})

	c1, _ := svc.Register(context.Background(), RegisterInput{
		Name: "Juan Perez", NationalID: "111A", Phone: "600000001",
	})
	c2, _ := svc.Register(context.Background(), RegisterInput{
		Name: "Juana Perez", NationalID: "222B", Phone: "600000002",
	})
	svc.namer = stubNamer{names: map[string][]string{
		c1.ID: {"Firulais"},
		c2.ID: {"Michi", "Rocky"},
	}}

	got, err := svc.FindCandidates(context.Background(), "juan")
	if err != nil {
		t.Fatalf("FindCandidates error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	for _, cand := range got {
		if len(cand.PatientNames) == 0 {
			t.Fatalf("expected candidates annotated with patient names, got %#v", cand)
		}
	}
}

func TestService_Update_RejectsDuplicatePhone(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	_, _ = svc.Register(context.Background(), RegisterInput{
		Name: "Juan Perez", NationalID: "111A", Phone: "600000001",
	})
	c2, _ := svc.Register(context.Background(), RegisterInput{
		Name: "Maria Lopez", NationalID: "222B", Phone: "600000002",
	})

	phone := "600000001"
	_, err := svc.Update(context.Background(), c2.ID, UpdateInput{Phone: &phone})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on phone collision, got %v", err)
	}
}

func TestService_Delete_ForbiddenWithDependents(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	c, _ := svc.Register(context.Background(), RegisterInput{
		Name: "Juan Perez", NationalID: "111A", Phone: "600000001",
	})
	svc.dependents = stubDependents{has: map[string]bool{c.ID: true}}

	err := svc.Delete(context.Background(), c.ID)
	if !errors.Is(err, ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}
	if _, ok := repo.byID[c.ID]; !ok {
		t.Fatalf("expected client to still exist")
	}

	svc.dependents = stubDependents{}
	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("Delete without dependents error: %v", err)
	}
	if err := svc.Delete(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

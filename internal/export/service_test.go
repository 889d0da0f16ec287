package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vet-clinic-api/internal/adapters/storage/memory"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
	"vet-clinic-api/internal/domain/treatments"
)

func newTestService(t *testing.T) (*Service, clients.Repository) {
	t.Helper()

	clientsRepo := memory.NewClientRepo()
	patientsRepo := memory.NewPatientRepo()
	treatmentsRepo := memory.NewTreatmentRepo()
	appointmentsRepo := memory.NewAppointmentRepo()
	svc := NewService(clientsRepo, patientsRepo, treatmentsRepo, appointmentsRepo, t.TempDir())
	return svc, clientsRepo
}

func seedClient(t *testing.T, repo clients.Repository, i int) clients.Client {
	t.Helper()

	at := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
	c := clients.Client{
		ID:         fmt.Sprintf("client-%d", i),
		Name:       fmt.Sprintf("Cliente %d", i),
		Age:        30 + i,
		NationalID: fmt.Sprintf("4455667%d", i),
		Address:    "Av. Siempre Viva 123",
		Phone:      fmt.Sprintf("98765432%d", i),
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func TestExportImportClientsRoundTrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seeded := make([]clients.Client, 0, 3)
	for i := 0; i < 3; i++ {
		seeded = append(seeded, seedClient(t, repo, i))
	}

	var doc bytes.Buffer
	if err := svc.ExportClients(ctx, &doc); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Re-importar sobre el mismo repo: upsert por id, sin duplicar.
	count, err := svc.ImportClients(ctx, bytes.NewReader(doc.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 3 {
		t.Fatalf("imported = %d, want 3", count)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("records after re-import = %d, want 3", len(got))
	}
	for i, c := range got {
		if c != seeded[i] {
			t.Fatalf("record %d changed across round trip:\n got %+v\nwant %+v", i, c, seeded[i])
		}
	}
}

func TestImportClientsIntoEmptyStore(t *testing.T) {
	svc, repo := newTestService(t)
	fresh, freshRepo := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		seedClient(t, repo, i)
	}

	var doc bytes.Buffer
	if err := svc.ExportClients(ctx, &doc); err != nil {
		t.Fatalf("export: %v", err)
	}

	count, err := fresh.ImportClients(ctx, &doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("imported = %d, want 2", count)
	}
	got, _ := freshRepo.List(ctx)
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
}

func TestImportClientsRejectsBadDocument(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []string{
		`{"not": "a list"}`,
		`[{"name": "sin id", "created_at": "2024-11-01T09:00:00Z", "updated_at": "2024-11-01T09:00:00Z"}]`,
		`[{"id": "c1", "created_at": "ayer", "updated_at": "2024-11-01T09:00:00Z"}]`,
	}
	for _, doc := range cases {
		_, err := svc.ImportClients(context.Background(), strings.NewReader(doc))
		if !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("doc %s: err = %v, want ErrInvalidDocument", doc, err)
		}
	}
}

func TestExportAllWritesOneFilePerTable(t *testing.T) {
	clientsRepo := memory.NewClientRepo()
	patientsRepo := memory.NewPatientRepo()
	treatmentsRepo := memory.NewTreatmentRepo()
	appointmentsRepo := memory.NewAppointmentRepo()
	dir := t.TempDir()
	svc := NewService(clientsRepo, patientsRepo, treatmentsRepo, appointmentsRepo, dir)
	ctx := context.Background()

	c := seedClient(t, clientsRepo, 0)
	at := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	if err := patientsRepo.Create(ctx, patients.Patient{
		ID: "patient-1", Name: "Firulais", Breed: "Mestizo", Age: 4,
		Status: patients.StatusAlive, ClientID: c.ID, CreatedAt: at, UpdatedAt: at,
	}); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	if err := treatmentsRepo.Create(ctx, treatments.Treatment{
		ID: "treatment-1", Name: "Limpieza dental", Description: "Profilaxis",
		Price: decimal.NewFromInt(25), Status: treatments.StatusActive,
		CreatedAt: at, UpdatedAt: at,
	}); err != nil {
		t.Fatalf("seed treatment: %v", err)
	}
	if err := appointmentsRepo.Create(ctx, appointments.Appointment{
		ID: "appointment-1", ScheduledAt: at.Add(24 * time.Hour),
		Description: "Control", Status: appointments.StatusPending,
		PatientID: "patient-1", ClientID: c.ID, TreatmentID: "treatment-1",
		CreatedAt: at, UpdatedAt: at,
	}, true); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	files, err := svc.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	for _, table := range []string{"clients", "patients", "treatments", "appointments"} {
		path, ok := files[table]
		if !ok {
			t.Fatalf("missing file entry for %s", table)
		}
		if filepath.Dir(path) != dir {
			t.Fatalf("file %s written outside export dir", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			t.Fatalf("%s: document is not a top-level list", table)
		}
		if !bytes.Contains(data, []byte(`"created_at": "2024-11-`)) {
			t.Fatalf("%s: dates are not ISO strings:\n%s", table, data)
		}
	}
}

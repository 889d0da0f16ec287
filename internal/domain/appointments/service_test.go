package appointments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Appointment
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment, enforceUnique bool) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if enforceUnique {
		for _, other := range r.byID {
			if a.SameSlot(other) {
				return ErrDuplicate
			}
		}
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) FindFirst(ctx context.Context, patientID, clientID string) (Appointment, error) {
	for _, a := range r.byID {
		if a.PatientID == patientID && a.ClientID == clientID {
			return a, nil
		}
	}
	return Appointment{}, ErrNotFound
}

func (r *testRepo) FindFirstByTreatment(ctx context.Context, treatmentID string) (Appointment, error) {
	for _, a := range r.byID {
		if a.TreatmentID == treatmentID {
			return a, nil
		}
	}
	return Appointment{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context, status *Status) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if status == nil || a.Status == *status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) ExistsForClient(ctx context.Context, clientID string) (bool, error) {
	for _, a := range r.byID {
		if a.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func validInput() CreateInput {
	return CreateInput{
		ScheduledAt: time.Date(2024, 11, 10, 10, 0, 0, 0, time.UTC),
		Description: "General checkup",
		Status:      string(StatusPending),
		PatientID:   "patient-1",
		ClientID:    "client-1",
		TreatmentID: "treatment-1",
	}
}

func TestService_Create_MissingFieldNamesTheField(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := []struct {
		field  string
		mutate func(*CreateInput)
	}{
		{"scheduled_at", func(in *CreateInput) { in.ScheduledAt = time.Time{} }},
		{"description", func(in *CreateInput) { in.Description = "" }},
		{"patient_id", func(in *CreateInput) { in.PatientID = "" }},
		{"client_id", func(in *CreateInput) { in.ClientID = "" }},
		{"treatment_id", func(in *CreateInput) { in.TreatmentID = "" }},
		{"status", func(in *CreateInput) { in.Status = "" }},
	}

	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)

		_, err := svc.Create(context.Background(), in, true)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.field, err)
		}
		if !strings.Contains(err.Error(), tc.field) {
			t.Fatalf("expected error to name %s, got %q", tc.field, err.Error())
		}
	}
}

func TestService_Create_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validInput()
	in.Status = "Scheduled"
	_, err := svc.Create(context.Background(), in, true)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_DuplicateSlot_ExactlyOneRecord(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), validInput(), true)
	if err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	_, err = svc.Create(context.Background(), validInput(), true)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected exactly 1 record, got %d", len(repo.byID))
	}
}

func TestService_Create_SkipDuplicateCheck_AllowsDuplicates(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), validInput(), true); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), validInput(), false); err != nil {
		t.Fatalf("Create with skip must succeed, got: %v", err)
	}
	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 records, got %d", len(repo.byID))
	}
}

func TestService_Create_DifferentDescription_NotADuplicate(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), validInput(), true); err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	in := validInput()
	in.Description = "Vaccination follow-up"
	if _, err := svc.Create(context.Background(), in, true); err != nil {
		t.Fatalf("expected distinct tuple to succeed, got: %v", err)
	}
}

func TestService_Complete_SetsPaymentAndStatus(t *testing.T) {
	svc := NewService(newTestRepo())

	a, _ := svc.Create(context.Background(), validInput(), true)

	done, err := svc.Complete(context.Background(), a.ID, "Cash")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected Completed, got %s", done.Status)
	}
	if done.PaymentMethod == nil || *done.PaymentMethod != PaymentCash {
		t.Fatalf("expected payment method Cash, got %v", done.PaymentMethod)
	}
}

func TestService_Complete_InvalidMethod_LeavesStateUntouched(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	a, _ := svc.Create(context.Background(), validInput(), true)

	_, err := svc.Complete(context.Background(), a.ID, "Cheque")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	stored := repo.byID[a.ID]
	if stored.Status != StatusPending {
		t.Fatalf("expected state unchanged, got %s", stored.Status)
	}
	if stored.PaymentMethod != nil {
		t.Fatalf("expected payment method unchanged (nil), got %v", stored.PaymentMethod)
	}
}

func TestService_Complete_RejectsTerminalStates(t *testing.T) {
	svc := NewService(newTestRepo())

	a, _ := svc.Create(context.Background(), validInput(), true)
	if _, err := svc.Complete(context.Background(), a.ID, "Card"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if _, err := svc.Complete(context.Background(), a.ID, "Cash"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on completed appointment, got %v", err)
	}
}

func TestService_Cancel_RejectsTerminalStates(t *testing.T) {
	svc := NewService(newTestRepo())

	a, _ := svc.Create(context.Background(), validInput(), true)
	if _, err := svc.Cancel(context.Background(), a.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), a.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on cancelled appointment, got %v", err)
	}

	b, _ := svc.Create(context.Background(), CreateInput{
		ScheduledAt: time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC),
		Description: "Surgery",
		Status:      string(StatusPending),
		PatientID:   "patient-2",
		ClientID:    "client-1",
		TreatmentID: "treatment-2",
	}, true)
	if _, err := svc.Complete(context.Background(), b.ID, "Card"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), b.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState cancelling a completed appointment, got %v", err)
	}
}

func TestService_ConfirmStart_Ordering(t *testing.T) {
	svc := NewService(newTestRepo())

	a, _ := svc.Create(context.Background(), validInput(), true)

	// Start antes de Confirm no es válido
	if _, err := svc.Start(context.Background(), a.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState starting a pending appointment, got %v", err)
	}

	c, err := svc.Confirm(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if c.Status != StatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", c.Status)
	}

	st, err := svc.Start(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if st.Status != StatusInProgress {
		t.Fatalf("expected InProgress, got %s", st.Status)
	}

	// Confirm de nuevo ya no vale
	if _, err := svc.Confirm(context.Background(), a.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState reconfirming, got %v", err)
	}
}

func TestService_List_FilterByStatus(t *testing.T) {
	svc := NewService(newTestRepo())

	a, _ := svc.Create(context.Background(), validInput(), true)

	in := validInput()
	in.Description = "Vaccination"
	b, _ := svc.Create(context.Background(), in, true)
	if _, err := svc.Cancel(context.Background(), b.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if all.Total != 2 || len(all.Items) != 2 {
		t.Fatalf("expected total 2, got %d", all.Total)
	}

	pending, err := svc.List(context.Background(), "Pending")
	if err != nil {
		t.Fatalf("List(Pending) error: %v", err)
	}
	if pending.Total != 1 || pending.Items[0].ID != a.ID {
		t.Fatalf("expected only the pending appointment, got %#v", pending)
	}
}

func TestService_List_InvalidFilter(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.List(context.Background(), "NotAStatus")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Find_FirstMatch(t *testing.T) {
	svc := NewService(newTestRepo())

	a, _ := svc.Create(context.Background(), validInput(), true)

	got, err := svc.Find(context.Background(), "patient-1", "client-1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("expected appointment %s, got %s", a.ID, got.ID)
	}

	if _, err := svc.Find(context.Background(), "patient-x", "client-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

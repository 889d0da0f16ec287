package memory

import (
	"context"
	"errors"
	"fmt"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/billing"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
	"vet-clinic-api/internal/domain/treatments"
)

type billingReader struct {
	treatments   treatments.Repository
	appointments appointments.Repository
	clients      clients.Repository
	patients     patients.Repository
}

func NewBillingReader(
	treatmentsRepo treatments.Repository,
	appointmentsRepo appointments.Repository,
	clientsRepo clients.Repository,
	patientsRepo patients.Repository,
) billing.Reader {
	return &billingReader{
		treatments:   treatmentsRepo,
		appointments: appointmentsRepo,
		clients:      clientsRepo,
		patients:     patientsRepo,
	}
}

func (r *billingReader) Load(ctx context.Context, treatmentID string) (billing.Snapshot, error) {
	t, err := r.treatments.GetByID(ctx, treatmentID)
	if err != nil {
		if errors.Is(err, treatments.ErrNotFound) {
			return billing.Snapshot{}, fmt.Errorf("%w: %s", billing.ErrTreatmentNotFound, treatmentID)
		}
		return billing.Snapshot{}, err
	}

	a, err := r.appointments.FindFirstByTreatment(ctx, treatmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			return billing.Snapshot{}, fmt.Errorf("%w: treatment %s", billing.ErrAppointmentNotFound, treatmentID)
		}
		return billing.Snapshot{}, err
	}

	c, err := r.clients.GetByID(ctx, a.ClientID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return billing.Snapshot{}, fmt.Errorf("%w: client %s", billing.ErrPartiesNotFound, a.ClientID)
		}
		return billing.Snapshot{}, err
	}

	p, err := r.patients.GetByID(ctx, a.PatientID)
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			return billing.Snapshot{}, fmt.Errorf("%w: patient %s", billing.ErrPartiesNotFound, a.PatientID)
		}
		return billing.Snapshot{}, err
	}

	return billing.Snapshot{
		Client:      c,
		Patient:     p,
		Appointment: a,
		Treatment:   t,
	}, nil
}

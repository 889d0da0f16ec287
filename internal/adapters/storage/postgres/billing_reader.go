package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/billing"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
	"vet-clinic-api/internal/domain/treatments"
)

type BillingReader struct {
	db *sql.DB
}

func NewBillingReader(db *sql.DB) *BillingReader {
	return &BillingReader{db: db}
}

// Load corre los cuatro pasos de la factura en una transacción
// repeatable-read de solo lectura: la factura nunca mezcla una cita
// vieja con un tratamiento ya actualizado.
func (r *BillingReader) Load(ctx context.Context, treatmentID string) (billing.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return billing.Snapshot{}, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTreatment(tx.QueryRowContext(ctx, `
		SELECT `+treatmentColumns+`
		FROM treatments
		WHERE id = $1
	`, treatmentID))
	if err != nil {
		if err == treatments.ErrNotFound {
			return billing.Snapshot{}, fmt.Errorf("%w: %s", billing.ErrTreatmentNotFound, treatmentID)
		}
		return billing.Snapshot{}, err
	}

	a, err := scanAppointment(tx.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE treatment_id = $1
		LIMIT 1
	`, treatmentID))
	if err != nil {
		if err == appointments.ErrNotFound {
			return billing.Snapshot{}, fmt.Errorf("%w: treatment %s", billing.ErrAppointmentNotFound, treatmentID)
		}
		return billing.Snapshot{}, err
	}

	c, err := scanClient(tx.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1
	`, a.ClientID))
	if err != nil {
		if err == clients.ErrNotFound {
			return billing.Snapshot{}, fmt.Errorf("%w: client %s", billing.ErrPartiesNotFound, a.ClientID)
		}
		return billing.Snapshot{}, err
	}

	p, err := scanPatient(tx.QueryRowContext(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, a.PatientID))
	if err != nil {
		if err == patients.ErrNotFound {
			return billing.Snapshot{}, fmt.Errorf("%w: patient %s", billing.ErrPartiesNotFound, a.PatientID)
		}
		return billing.Snapshot{}, err
	}

	if err := tx.Commit(); err != nil {
		return billing.Snapshot{}, err
	}

	return billing.Snapshot{
		Client:      c,
		Patient:     p,
		Appointment: a,
		Treatment:   t,
	}, nil
}

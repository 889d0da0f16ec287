package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vet-clinic-api/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `id, scheduled_at, description, status, patient_id, client_id, treatment_id, payment_method, created_at, updated_at`

// Create ejecuta el chequeo de duplicado y el insert dentro de una
// misma transacción. El índice único sobre la tupla natural atrapa la
// carrera entre dos transacciones concurrentes; esa ruta también
// devuelve ErrDuplicate.
func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment, enforceUnique bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if enforceUnique {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM appointments
				WHERE scheduled_at = $1
				  AND description = $2
				  AND patient_id = $3
				  AND client_id = $4
				  AND treatment_id = $5
			)
		`,
			a.ScheduledAt,
			a.Description,
			a.PatientID,
			a.ClientID,
			a.TreatmentID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return appointments.ErrDuplicate
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (
			id, scheduled_at, description, status,
			patient_id, client_id, treatment_id, payment_method,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		a.ID,
		a.ScheduledAt,
		a.Description,
		string(a.Status),
		a.PatientID,
		a.ClientID,
		a.TreatmentID,
		paymentMethodValue(a.PaymentMethod),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		// Insert concurrente entre nuestro chequeo y el commit.
		return fmt.Errorf("%w (concurrent insert)", appointments.ErrDuplicate)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *AppointmentsRepo) FindFirst(ctx context.Context, patientID, clientID string) (appointments.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1 AND client_id = $2
		LIMIT 1
	`, patientID, clientID)
	return scanAppointment(row)
}

func (r *AppointmentsRepo) FindFirstByTreatment(ctx context.Context, treatmentID string) (appointments.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE treatment_id = $1
		LIMIT 1
	`, treatmentID)
	return scanAppointment(row)
}

func (r *AppointmentsRepo) List(ctx context.Context, status *appointments.Status) ([]appointments.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
	`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			scheduled_at = $2,
			description = $3,
			status = $4,
			treatment_id = $5,
			payment_method = $6,
			updated_at = $7
		WHERE id = $1
	`,
		a.ID,
		a.ScheduledAt,
		a.Description,
		string(a.Status),
		a.TreatmentID,
		paymentMethodValue(a.PaymentMethod),
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return appointments.ErrDuplicate
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) ExistsForClient(ctx context.Context, clientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM appointments WHERE client_id = $1)
	`, clientID).Scan(&exists)
	return exists, err
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var status string
	var pm sql.NullString
	if err := row.Scan(
		&a.ID,
		&a.ScheduledAt,
		&a.Description,
		&status,
		&a.PatientID,
		&a.ClientID,
		&a.TreatmentID,
		&pm,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	a.Status = appointments.Status(status)
	if pm.Valid {
		method := appointments.PaymentMethod(pm.String)
		a.PaymentMethod = &method
	}
	return a, nil
}

func paymentMethodValue(pm *appointments.PaymentMethod) sql.NullString {
	if pm == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*pm), Valid: true}
}

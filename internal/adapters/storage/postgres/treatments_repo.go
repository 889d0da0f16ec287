package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"vet-clinic-api/internal/domain/treatments"
)

type TreatmentsRepo struct {
	db *sql.DB
}

func NewTreatmentsRepo(db *sql.DB) *TreatmentsRepo {
	return &TreatmentsRepo{db: db}
}

const treatmentColumns = `id, name, description, price, status, client_id, created_at, updated_at`

func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Treatment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO treatments (
			id, name, description, price, status, client_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		t.ID,
		t.Name,
		t.Description,
		t.Price.String(),
		string(t.Status),
		nullString(t.ClientID),
		t.CreatedAt,
		t.UpdatedAt,
	)
	// El índice único sobre lower(name) cubre la carrera entre el
	// chequeo del servicio y este insert.
	if isUniqueViolation(err) {
		return treatments.ErrDuplicate
	}
	return err
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return treatments.Treatment{}, treatments.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+treatmentColumns+`
		FROM treatments
		WHERE id = $1
	`, id)
	return scanTreatment(row)
}

func (r *TreatmentsRepo) GetByName(ctx context.Context, name string) (treatments.Treatment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+treatmentColumns+`
		FROM treatments
		WHERE lower(name) = lower($1)
	`, strings.TrimSpace(name))
	return scanTreatment(row)
}

func (r *TreatmentsRepo) Update(ctx context.Context, t treatments.Treatment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE treatments
		SET
			name = $2,
			description = $3,
			price = $4,
			status = $5,
			updated_at = $6
		WHERE id = $1
	`,
		t.ID,
		t.Name,
		t.Description,
		t.Price.String(),
		string(t.Status),
		t.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return treatments.ErrDuplicate
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return treatments.ErrNotFound
	}
	return nil
}

func (r *TreatmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM treatments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return treatments.ErrNotFound
	}
	return nil
}

func (r *TreatmentsRepo) List(ctx context.Context) ([]treatments.Treatment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+treatmentColumns+`
		FROM treatments
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]treatments.Treatment, 0)
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTreatment(row rowScanner) (treatments.Treatment, error) {
	var t treatments.Treatment
	var price string
	var status string
	var clientID sql.NullString
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&price,
		&status,
		&clientID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return treatments.Treatment{}, treatments.ErrNotFound
		}
		return treatments.Treatment{}, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return treatments.Treatment{}, err
	}
	t.Price = p
	t.Status = treatments.Status(status)
	if clientID.Valid {
		t.ClientID = clientID.String
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

package followup

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// -- Patient repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.PatientID == "" {
		p.PatientID = NewRefID(PatientIDPrefix)
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO patient (id, patient_id, name, whatsapp_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.Name, p.WhatsAppID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	return err
}

func (r *patientRepoPG) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, name, whatsapp_id, created_at, updated_at
		FROM patient WHERE whatsapp_id = $1`, phone,
	).Scan(&p.ID, &p.PatientID, &p.Name, &p.WhatsAppID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Visit repository --

type visitRepoPG struct {
	pool *pgxpool.Pool
}

func NewVisitRepo(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	if v.VisitID == "" {
		v.VisitID = NewRefID(VisitIDPrefix)
	}
	if v.Reports == nil {
		v.Reports = []string{}
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO visit (id, visit_id, patient_id, reports)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		v.ID, v.VisitID, v.PatientRef, v.Reports,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (r *visitRepoPG) GetByVisitID(ctx context.Context, visitID string) (*Visit, error) {
	var v Visit
	var p Patient
	err := r.pool.QueryRow(ctx, `
		SELECT v.id, v.visit_id, v.patient_id, v.reports, v.created_at, v.updated_at,
		       p.id, p.patient_id, p.name, p.whatsapp_id, p.created_at, p.updated_at
		FROM visit v
		JOIN patient p ON p.id = v.patient_id
		WHERE v.visit_id = $1`, visitID,
	).Scan(
		&v.ID, &v.VisitID, &v.PatientRef, &v.Reports, &v.CreatedAt, &v.UpdatedAt,
		&p.ID, &p.PatientID, &p.Name, &p.WhatsAppID, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.Reports == nil {
		v.Reports = []string{}
	}
	v.Patient = &p
	return &v, nil
}

func (r *visitRepoPG) AppendReport(ctx context.Context, visitID, reportRef string) (*Visit, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE visit
		SET reports = array_append(reports, $2), updated_at = NOW()
		WHERE visit_id = $1`, visitID, reportRef)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrVisitNotFound
	}
	return r.GetByVisitID(ctx, visitID)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

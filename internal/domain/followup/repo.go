package followup

import (
	"context"
	"errors"
)

// Sentinel errors the handlers translate into HTTP status codes.
var (
	ErrDuplicatePhone  = errors.New("phone number already registered")
	ErrPatientNotFound = errors.New("patient not found")
	ErrVisitNotFound   = errors.New("visit not found")
)

// PatientRepository persists patients. Uniqueness of the phone number is the
// store's responsibility: concurrent registrations race on the database
// constraint, and the loser surfaces ErrDuplicatePhone.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
}

// VisitRepository persists visits. Reads resolve the owning patient with a
// join so patient data keeps a single source of truth.
type VisitRepository interface {
	Create(ctx context.Context, v *Visit) error
	GetByVisitID(ctx context.Context, visitID string) (*Visit, error)
	AppendReport(ctx context.Context, visitID, reportRef string) (*Visit, error)
}

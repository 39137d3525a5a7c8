// Package followup implements the hospital follow-up workflow: patient
// registration, follow-up visits, and report uploads, each of which notifies
// the patient over WhatsApp.
package followup

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference id prefixes for the human-readable identifiers handed to staff.
const (
	PatientIDPrefix = "PAT"
	VisitIDPrefix   = "VIS"
)

// Patient maps to the patient table. WhatsAppID is the phone number used as
// the external lookup key; the table enforces its uniqueness.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  string    `db:"patient_id" json:"patientId"`
	Name       string    `db:"name" json:"name"`
	WhatsAppID string    `db:"whatsapp_id" json:"whatsappId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Visit maps to the visit table. PatientRef points at exactly one patient;
// Reports is the append-only list of stored report references.
type Visit struct {
	ID         uuid.UUID `db:"id" json:"id"`
	VisitID    string    `db:"visit_id" json:"visitId"`
	PatientRef uuid.UUID `db:"patient_id" json:"patient"`
	Reports    []string  `db:"reports" json:"reports"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`

	// Patient is resolved by the repository on read. Not serialized; the
	// JSON reference stays the foreign key.
	Patient *Patient `json:"-"`
}

// NewRefID generates a human-readable identifier: the prefix plus the first
// uuid group, uppercased (e.g. "PAT-9F86D081").
func NewRefID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}

package followup

import (
	"context"
	"fmt"
	"io"
)

// Notifier sends the patient-facing WhatsApp messages. Implemented by the
// platform whatsapp client.
type Notifier interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendVisitCreated(ctx context.Context, to, name string) error
	SendReportLink(ctx context.Context, to, name, visitID, fileToken string) error
}

// FileStore persists uploaded report files and returns the stored name.
type FileStore interface {
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
}

// Service orchestrates the follow-up workflow. Every operation mutates the
// store first and notifies second: a failed notification leaves the record
// persisted and surfaces as an error to the caller.
type Service struct {
	patients PatientRepository
	visits   VisitRepository
	notifier Notifier
	files    FileStore
}

func NewService(patients PatientRepository, visits VisitRepository, notifier Notifier, files FileStore) *Service {
	return &Service{
		patients: patients,
		visits:   visits,
		notifier: notifier,
		files:    files,
	}
}

// RegisterPatient creates a patient record and sends the welcome message.
// A phone number already on file surfaces as ErrDuplicatePhone.
func (s *Service) RegisterPatient(ctx context.Context, name, phone string) (*Patient, error) {
	p := &Patient{Name: name, WhatsAppID: phone}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.notifier.SendWelcome(ctx, phone, name); err != nil {
		return nil, fmt.Errorf("patient %s registered but welcome message failed: %w", p.PatientID, err)
	}
	return p, nil
}

// CreateVisit creates a follow-up visit for the patient matching phone and
// sends the visit notification.
func (s *Service) CreateVisit(ctx context.Context, phone string) (*Visit, error) {
	patient, err := s.patients.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	v := &Visit{PatientRef: patient.ID}
	if err := s.visits.Create(ctx, v); err != nil {
		return nil, err
	}
	v.Patient = patient
	if err := s.notifier.SendVisitCreated(ctx, patient.WhatsAppID, patient.Name); err != nil {
		return nil, fmt.Errorf("visit %s created but notification failed: %w", v.VisitID, err)
	}
	return v, nil
}

// UploadReport stores the report file, appends its reference to the visit,
// and sends the report link. The visit is looked up before any file is
// written so an unknown id leaves no orphan on disk.
func (s *Service) UploadReport(ctx context.Context, visitID, fileName string, content io.Reader) (*Visit, string, error) {
	if _, err := s.visits.GetByVisitID(ctx, visitID); err != nil {
		return nil, "", err
	}

	storedName, err := s.files.Save(ctx, fileName, content)
	if err != nil {
		return nil, "", fmt.Errorf("storing report: %w", err)
	}
	reportRef := "uploads/" + storedName

	visit, err := s.visits.AppendReport(ctx, visitID, reportRef)
	if err != nil {
		return nil, "", err
	}

	patient := visit.Patient
	if err := s.notifier.SendReportLink(ctx, patient.WhatsAppID, patient.Name, visit.VisitID, storedName); err != nil {
		return nil, "", fmt.Errorf("report stored for %s but notification failed: %w", visit.VisitID, err)
	}
	return visit, reportRef, nil
}

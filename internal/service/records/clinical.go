package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-portal/internal/model"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

const defaultUploader = "Nurse"

// AddTestsToPatient appends tests to the patient's current visit, opening a
// placeholder visit when the patient has none.
func (s *Store) AddTestsToPatient(ctx context.Context, patientID string, tests []model.Test) (*model.MedicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, err := s.patient(patientID)
	if err != nil {
		return nil, err
	}

	visit := patient.CurrentVisit()
	if visit == nil {
		visit = patient.AppendVisit(s.placeholderVisit("Pending"))
	}
	today := s.today()
	for _, t := range tests {
		if t.ID == "" {
			t.ID = "test-" + uuid.NewString()
		}
		if t.Status == "" {
			t.Status = model.TestStatusPending
		}
		if t.Date == "" {
			t.Date = today
		}
		visit.Tests = append(visit.Tests, *cloneTest(&t))
	}

	return s.commitVisit(ctx, patient, visit, "tests_added")
}

// AddPrescriptionsToPatient is AddTestsToPatient for prescriptions.
func (s *Store) AddPrescriptionsToPatient(ctx context.Context, patientID string, prescriptions []model.Prescription) (*model.MedicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, err := s.patient(patientID)
	if err != nil {
		return nil, err
	}

	visit := patient.CurrentVisit()
	if visit == nil {
		visit = patient.AppendVisit(s.placeholderVisit("Medication prescribed"))
	}
	for _, p := range prescriptions {
		if p.ID == "" {
			p.ID = "presc-" + uuid.NewString()
		}
		visit.Prescriptions = append(visit.Prescriptions, p)
	}

	return s.commitVisit(ctx, patient, visit, "prescriptions_added")
}

// placeholderVisit stands in for a booking when clinical data arrives for a
// patient who never had one.
func (s *Store) placeholderVisit(treatment string) model.MedicalVisit {
	return model.MedicalVisit{
		ID:            newVisitID(),
		Date:          s.today(),
		Department:    "General",
		Doctor:        "Doctor",
		Symptoms:      "As discussed",
		Diagnosis:     "Pending",
		Treatment:     treatment,
		Tests:         []model.Test{},
		Prescriptions: []model.Prescription{},
		VisitToken:    "000",
		VisitStatus:   model.VisitStatusActive,
	}
}

func (s *Store) MarkTestAsPerformed(ctx context.Context, patientID, testID string, performed bool) (*model.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, test, err := s.currentTest(patientID, testID)
	if err != nil {
		return nil, err
	}
	test.IsPerformed = performed

	if err := s.persist(ctx, PatientsKey); err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventVisitUpdated, map[string]interface{}{
		"patient_id": patient.PatientID,
		"test_id":    test.ID,
		"change":     "test_performed",
		"value":      performed,
	})
	return cloneTest(test), nil
}

func (s *Store) MarkMedicineAsIssued(ctx context.Context, patientID, prescriptionID string, issued bool) (*model.Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, visit, err := s.currentVisit(patientID)
	if err != nil {
		return nil, err
	}
	prescription := visit.FindPrescription(prescriptionID)
	if prescription == nil {
		return nil, apperrors.NotFound("prescription", nil)
	}
	prescription.IsIssued = issued

	if err := s.persist(ctx, PatientsKey); err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventVisitUpdated, map[string]interface{}{
		"patient_id":      patient.PatientID,
		"prescription_id": prescription.ID,
		"change":          "medicine_issued",
		"value":           issued,
	})
	out := *prescription
	return &out, nil
}

// SaveTestReport attaches a report to a test of the current visit. Uploading
// always leaves the test performed and completed.
func (s *Store) SaveTestReport(ctx context.Context, patientID, testID string, upload model.ReportUpload) (*model.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, test, err := s.currentTest(patientID, testID)
	if err != nil {
		return nil, err
	}

	test.UploadedReport = upload.ReportName
	test.Status = model.TestStatusCompleted
	test.IsPerformed = true
	if upload.FileData != "" {
		test.UploadedFileData = upload.FileData
		test.UploadedFileType = upload.FileType
	}

	content := upload.Content
	if content == "" {
		content = fmt.Sprintf("Test: %s\nDate: %s\nStatus: Completed\n\nReport file: %s", test.Name, test.Date, upload.ReportName)
	}
	uploader := upload.UploadedBy
	if uploader == "" {
		uploader = defaultUploader
	}
	report := &model.TestReport{
		Title:      test.Name + " Report",
		Content:    content,
		FileName:   upload.ReportName,
		UploadedBy: uploader,
		UploadedAt: s.timestamp(),
	}
	if upload.FileData != "" {
		report.FileData = upload.FileData
		report.FileType = upload.FileType
	}
	test.Report = report

	if err := s.persist(ctx, PatientsKey); err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventTestReportUploaded, map[string]interface{}{
		"patient_id":  patient.PatientID,
		"test_id":     test.ID,
		"report_name": upload.ReportName,
	})
	return cloneTest(test), nil
}

// UpdatePatientVisit replaces the current visit's tests or prescriptions
// when given and overwrites diagnosis and treatment when non-empty.
func (s *Store) UpdatePatientVisit(ctx context.Context, patientID string, update model.VisitUpdate) (*model.MedicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, visit, err := s.currentVisit(patientID)
	if err != nil {
		return nil, err
	}
	if update.Tests != nil {
		visit.Tests = cloneTests(update.Tests)
	}
	if update.Prescriptions != nil {
		visit.Prescriptions = append([]model.Prescription{}, update.Prescriptions...)
	}
	if update.Diagnosis != "" {
		visit.Diagnosis = update.Diagnosis
	}
	if update.Treatment != "" {
		visit.Treatment = update.Treatment
	}

	return s.commitVisit(ctx, patient, visit, "visit_updated")
}

// GetPatientTests returns the tests of the current visit, empty when the
// patient has no visits.
func (s *Store) GetPatientTests(ctx context.Context, patientID string) ([]model.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, err := s.patient(patientID)
	if err != nil {
		return nil, err
	}
	visit := patient.CurrentVisit()
	if visit == nil || visit.Tests == nil {
		return []model.Test{}, nil
	}
	return cloneTests(visit.Tests), nil
}

func (s *Store) GetPatientPrescriptions(ctx context.Context, patientID string) ([]model.Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, err := s.patient(patientID)
	if err != nil {
		return nil, err
	}
	visit := patient.CurrentVisit()
	if visit == nil {
		return []model.Prescription{}, nil
	}
	return append([]model.Prescription{}, visit.Prescriptions...), nil
}

func (s *Store) currentVisit(patientID string) (*model.PatientRecord, *model.MedicalVisit, error) {
	patient, err := s.patient(patientID)
	if err != nil {
		return nil, nil, err
	}
	visit := patient.CurrentVisit()
	if visit == nil {
		return nil, nil, apperrors.NotFound("visit", nil)
	}
	return patient, visit, nil
}

func (s *Store) currentTest(patientID, testID string) (*model.PatientRecord, *model.Test, error) {
	patient, visit, err := s.currentVisit(patientID)
	if err != nil {
		return nil, nil, err
	}
	test := visit.FindTest(testID)
	if test == nil {
		return nil, nil, apperrors.NotFound("test", nil)
	}
	return patient, test, nil
}

func (s *Store) commitVisit(ctx context.Context, patient *model.PatientRecord, visit *model.MedicalVisit, change string) (*model.MedicalVisit, error) {
	if err := s.persist(ctx, PatientsKey); err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventVisitUpdated, map[string]interface{}{
		"patient_id": patient.PatientID,
		"visit_id":   visit.ID,
		"change":     change,
	})
	return cloneVisit(visit), nil
}

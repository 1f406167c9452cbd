package records

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/security"
)

// LoginPatient returns the patient whose id (case-insensitive) and password
// match.
func (s *Store) LoginPatient(ctx context.Context, id, password string) (*model.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, ok := s.patients[normalizeID(id)]
	if !ok {
		return nil, apperrors.Unauthorized("invalid patient id or password")
	}
	if err := s.hasher.Compare(patient.Password, password); err != nil {
		return nil, apperrors.Unauthorized("invalid patient id or password")
	}
	return clonePatient(patient), nil
}

// RegisterPatient allocates the next P-number and stores a patient with an
// empty history.
func (s *Store) RegisterPatient(ctx context.Context, req model.RegisterPatientRequest) (*model.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	password, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	age := req.Age
	if age == 0 {
		age = s.ageOn(req.DOB)
	}
	allergies := req.Allergies
	if allergies == "" {
		allergies = "None"
	}

	patient := &model.PatientRecord{
		PatientID:        nextID("P", s.patients),
		Password:         password,
		Name:             req.Name,
		DOB:              req.DOB,
		Age:              age,
		Gender:           req.Gender,
		ContactNumber:    req.ContactNumber,
		Allergies:        allergies,
		Email:            req.Email,
		Address:          req.Address,
		BloodGroup:       req.BloodGroup,
		EmergencyContact: req.EmergencyContact,
		MedicalHistory:   []model.MedicalVisit{},
	}
	s.patients[patient.PatientID] = patient

	if err := s.persist(ctx, PatientsKey); err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventPatientRegistered, map[string]interface{}{
		"patient_id": patient.PatientID,
		"name":       patient.Name,
	})
	return clonePatient(patient), nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*model.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, err := s.patient(id)
	if err != nil {
		return nil, err
	}
	return clonePatient(patient), nil
}

// ListPatients returns every patient ordered by id.
func (s *Store) ListPatients(ctx context.Context) ([]*model.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	out := make([]*model.PatientRecord, 0, len(s.patients))
	for _, id := range sortedKeys(s.patients) {
		out = append(out, clonePatient(s.patients[id]))
	}
	return out, nil
}

// FindPatientByTokenAndDOB is the legacy lookup: the value is tried as a
// patient id first, then as a visit token of any patient born on dob.
func (s *Store) FindPatientByTokenAndDOB(ctx context.Context, value, dob string) (*model.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	if patient, ok := s.patients[normalizeID(value)]; ok && patient.DOB == dob {
		return clonePatient(patient), nil
	}
	for _, id := range sortedKeys(s.patients) {
		patient := s.patients[id]
		if patient.DOB != dob {
			continue
		}
		for _, visit := range patient.MedicalHistory {
			if visit.VisitToken == value {
				return clonePatient(patient), nil
			}
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (s *Store) patient(id string) (*model.PatientRecord, error) {
	patient, ok := s.patients[normalizeID(id)]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}

func (s *Store) hashPassword(password string) (string, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrHashingFailed) {
			return "", apperrors.Internal(err)
		}
		return "", apperrors.BadRequest(err.Error(), err)
	}
	return hashed, nil
}

// ageOn derives an age in whole years from a YYYY-MM-DD date of birth.
// Unparseable dates give 0.
func (s *Store) ageOn(dob string) int {
	born, err := time.ParseInLocation(dateLayout, dob, s.loc)
	if err != nil {
		return 0
	}
	now := s.now().In(s.loc)
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

package records

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-portal/internal/model"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

// GenerateVisitToken books a visit for today. The token is one more than
// the number of rows already dated today. The queue row and the new
// history entry are written together.
func (s *Store) GenerateVisitToken(ctx context.Context, patientID, department, doctor string) (*model.ActiveVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	patient, err := s.patient(patientID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	count := 0
	for _, row := range s.activeVisits {
		if row.Date == today {
			count++
		}
	}
	token := fmt.Sprintf("%03d", count+1)
	now := s.now()

	visit := model.MedicalVisit{
		ID:            newVisitID(),
		Date:          today,
		Department:    department,
		Doctor:        doctor,
		Symptoms:      "To be recorded",
		Diagnosis:     "Pending",
		Treatment:     "Pending",
		Tests:         []model.Test{},
		Prescriptions: []model.Prescription{},
		VisitToken:    token,
		VisitStatus:   model.VisitStatusActive,
	}
	row := &model.ActiveVisit{
		TokenNumber: token,
		PatientID:   patient.PatientID,
		PatientName: patient.Name,
		Department:  department,
		Doctor:      doctor,
		Date:        today,
		Time:        now.In(s.loc).Format(timeLayout),
		Status:      model.ActiveVisitWaiting,
		CreatedAt:   s.timestamp(),
		VisitID:     visit.ID,
	}

	patient.AppendVisit(visit)
	s.activeVisits[token] = row

	if err := s.persist(ctx, ActiveVisitsKey, PatientsKey); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TokensIssued.Inc()
	}
	s.publish(ctx, model.EventVisitTokenGenerated, map[string]interface{}{
		"token":      token,
		"patient_id": patient.PatientID,
		"visit_id":   visit.ID,
		"department": department,
		"doctor":     doctor,
	})
	return cloneActiveVisit(row), nil
}

// UpdateVisitStatus moves a queue row to status. Completing a row also
// completes the history entry it projects.
func (s *Store) UpdateVisitStatus(ctx context.Context, token string, status model.ActiveVisitStatus) (*model.ActiveVisit, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid visit status %q", status), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	row, ok := s.activeVisits[token]
	if !ok {
		return nil, apperrors.NotFound("active visit", nil)
	}
	row.Status = status
	keys := []string{ActiveVisitsKey}

	if status == model.ActiveVisitCompleted {
		if patient, ok := s.patients[row.PatientID]; ok {
			if visit := linkedVisit(patient, row); visit != nil {
				visit.VisitStatus = model.VisitStatusCompleted
				keys = append(keys, PatientsKey)
			}
		}
	}

	if err := s.persist(ctx, keys...); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.VisitStatusChanges.WithLabelValues(string(status)).Inc()
	}
	s.publish(ctx, model.EventVisitStatusChanged, map[string]interface{}{
		"token":      token,
		"patient_id": row.PatientID,
		"status":     string(status),
	})
	return cloneActiveVisit(row), nil
}

// linkedVisit finds the history entry a queue row was created with. Rows
// written before visit ids existed match the first entry with their token.
func linkedVisit(patient *model.PatientRecord, row *model.ActiveVisit) *model.MedicalVisit {
	if row.VisitID != "" {
		for i := range patient.MedicalHistory {
			if patient.MedicalHistory[i].ID == row.VisitID {
				return &patient.MedicalHistory[i]
			}
		}
	}
	for i := range patient.MedicalHistory {
		if patient.MedicalHistory[i].VisitToken == row.TokenNumber {
			return &patient.MedicalHistory[i]
		}
	}
	return nil
}

// SearchPatientByToken resolves a token through today's queue first. Rows
// from earlier days are ignored; the fallback scans every history for the
// token and picks the most recent visit, lowest patient id on a tie.
func (s *Store) SearchPatientByToken(ctx context.Context, token string) (*model.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	if row, ok := s.activeVisits[token]; ok && row.Date == s.today() {
		if patient, ok := s.patients[row.PatientID]; ok {
			return clonePatient(patient), nil
		}
	}

	var (
		best     *model.PatientRecord
		bestDate string
	)
	for _, id := range sortedKeys(s.patients) {
		patient := s.patients[id]
		for _, visit := range patient.MedicalHistory {
			if visit.VisitToken != token {
				continue
			}
			if best == nil || visit.Date > bestDate {
				best = patient
				bestDate = visit.Date
			}
		}
	}
	if best == nil {
		return nil, apperrors.NotFound("patient", nil)
	}
	return clonePatient(best), nil
}

func (s *Store) GetActiveVisit(ctx context.Context, token string) (*model.ActiveVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	row, ok := s.activeVisits[token]
	if !ok {
		return nil, apperrors.NotFound("active visit", nil)
	}
	return cloneActiveVisit(row), nil
}

// ListActiveVisitsForToday returns today's queue ordered by token.
func (s *Store) ListActiveVisitsForToday(ctx context.Context) ([]*model.ActiveVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	today := s.today()
	out := make([]*model.ActiveVisit, 0)
	for _, row := range s.activeVisits {
		if row.Date == today {
			out = append(out, cloneActiveVisit(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenNumber < out[j].TokenNumber })
	return out, nil
}

// GetPatientActiveVisit returns the patient's open queue row for today.
func (s *Store) GetPatientActiveVisit(ctx context.Context, patientID string) (*model.ActiveVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	id := normalizeID(patientID)
	today := s.today()
	for _, token := range sortedKeys(s.activeVisits) {
		row := s.activeVisits[token]
		if row.PatientID == id && row.Date == today && row.Status != model.ActiveVisitCompleted {
			return cloneActiveVisit(row), nil
		}
	}
	return nil, apperrors.NotFound("active visit", nil)
}

// ExpireActiveVisits drops queue rows dated before today and reports how
// many were removed. History entries are kept.
func (s *Store) ExpireActiveVisits(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return 0, err
	}

	today := s.today()
	removed := 0
	for token, row := range s.activeVisits {
		if row.Date < today {
			delete(s.activeVisits, token)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.persist(ctx, ActiveVisitsKey); err != nil {
		return 0, err
	}
	return removed, nil
}

func newVisitID() string {
	return "visit-" + uuid.NewString()
}

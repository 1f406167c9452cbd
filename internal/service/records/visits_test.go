package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

func TestGenerateVisitToken_SequentialPerDay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	first, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	assert.Equal(t, "001", first.TokenNumber)
	assert.Equal(t, "2026-03-10", first.Date)
	assert.Equal(t, "9:30:00 AM", first.Time)
	assert.Equal(t, model.ActiveVisitWaiting, first.Status)
	assert.Equal(t, "Vaseekar", first.PatientName)

	second, err := s.GenerateVisitToken(ctx, "p002", "General Medicine", "Dr. Pragadish")
	require.NoError(t, err)
	assert.Equal(t, "002", second.TokenNumber)
	assert.Equal(t, "P002", second.PatientID)

	third, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	assert.Equal(t, "003", third.TokenNumber)

	p1, err := s.GetPatient(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, p1.MedicalHistory, 3)

	current := p1.CurrentVisit()
	assert.Equal(t, third.VisitID, current.ID)
	assert.Equal(t, "003", current.VisitToken)
	assert.Equal(t, model.VisitStatusActive, current.VisitStatus)
	assert.Equal(t, "To be recorded", current.Symptoms)
	assert.Equal(t, "Pending", current.Diagnosis)
	assert.Equal(t, "Pending", current.Treatment)
	assert.Empty(t, current.Tests)
	assert.Equal(t, "001", p1.MedicalHistory[1].VisitToken)
	assert.NotEqual(t, p1.MedicalHistory[1].ID, current.ID, "visit ids are unique even when tokens repeat")
}

func TestGenerateVisitToken_RestartsEachDay(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, nil)

	_, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	_, err = s.GenerateVisitToken(ctx, "P002", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	clock.advance(24 * time.Hour)
	v, err := s.GenerateVisitToken(ctx, "P003", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	assert.Equal(t, "001", v.TokenNumber)
	assert.Equal(t, "2026-03-11", v.Date)
}

func TestGenerateVisitToken_UsesConfiguredLocation(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("IST", 5*3600+1800)
	s, clock := newTestStore(t, nil, WithLocation(loc))
	clock.now = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	v, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", v.Date)
}

func TestGenerateVisitToken_UnknownPatient(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s, _ := newTestStore(t, kv)
	before := readBlob(t, kv, PatientsKey)

	v, err := s.GenerateVisitToken(ctx, "P404", "Cardiology", "Dr. Kaviya")
	assert.Nil(t, v)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, before, readBlob(t, kv, PatientsKey))

	visits, err := s.ListActiveVisitsForToday(ctx)
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func TestUpdateVisitStatus_CompletedMirrorsHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	booked, err := s.GenerateVisitToken(ctx, "P003", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	row, err := s.UpdateVisitStatus(ctx, booked.TokenNumber, model.ActiveVisitInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.ActiveVisitInProgress, row.Status)

	p3, err := s.GetPatient(ctx, "P003")
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusActive, p3.CurrentVisit().VisitStatus)

	row, err = s.UpdateVisitStatus(ctx, booked.TokenNumber, model.ActiveVisitCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.ActiveVisitCompleted, row.Status)

	p3, err = s.GetPatient(ctx, "P003")
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, p3.CurrentVisit().VisitStatus)

	_, err = s.GetPatientActiveVisit(ctx, "P003")
	assert.True(t, apperrors.IsNotFound(err), "completed rows are not the patient's open visit")
}

func TestUpdateVisitStatus_TargetsLinkedVisitNotFirstToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	// P001's seeded history already holds a visit with token 001.
	_, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	_, err = s.UpdateVisitStatus(ctx, "001", model.ActiveVisitCompleted)
	require.NoError(t, err)

	p1, err := s.GetPatient(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, p1.MedicalHistory, 2)
	assert.Equal(t, model.VisitStatusCompleted, p1.MedicalHistory[1].VisitStatus)
}

func TestUpdateVisitStatus_Failures(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s, _ := newTestStore(t, kv)

	_, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	patients := readBlob(t, kv, PatientsKey)
	visits := readBlob(t, kv, ActiveVisitsKey)

	_, err = s.UpdateVisitStatus(ctx, "042", model.ActiveVisitCompleted)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.UpdateVisitStatus(ctx, "001", model.ActiveVisitStatus("teleported"))
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	assert.Equal(t, patients, readBlob(t, kv, PatientsKey))
	assert.Equal(t, visits, readBlob(t, kv, ActiveVisitsKey))
}

func TestSearchPatientByToken(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, nil)

	// Seeded history: P001 holds 001 from 2025-01-15, P002 holds 002.
	p, err := s.SearchPatientByToken(ctx, "002")
	require.NoError(t, err)
	assert.Equal(t, "P002", p.PatientID)

	_, err = s.GenerateVisitToken(ctx, "P003", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	p, err = s.SearchPatientByToken(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "P003", p.PatientID, "today's queue wins over history")

	clock.advance(48 * time.Hour)
	_, err = s.GenerateVisitToken(ctx, "P002", "General Medicine", "Dr. Pragadish")
	require.NoError(t, err)
	clock.advance(24 * time.Hour)

	p, err = s.SearchPatientByToken(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "P002", p.PatientID, "stale rows fall back to the most recent visit")

	_, err = s.SearchPatientByToken(ctx, "999")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSearchPatientByToken_TieGoesToLowestID(t *testing.T) {
	ctx := context.Background()
	visit := func() []model.MedicalVisit {
		return []model.MedicalVisit{{ID: "visit-" + t.Name(), Date: "2026-01-05", VisitToken: "007", VisitStatus: model.VisitStatusCompleted}}
	}
	kv := newSeededKV(t, map[string]*model.PatientRecord{
		"P021": {PatientID: "P021", Name: "Later", Password: "pw", MedicalHistory: visit()},
		"P020": {PatientID: "P020", Name: "Earlier", Password: "pw", MedicalHistory: visit()},
	})
	s, _ := newTestStore(t, kv)

	p, err := s.SearchPatientByToken(ctx, "007")
	require.NoError(t, err)
	assert.Equal(t, "P020", p.PatientID)
}

func TestActiveVisitQueries(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, nil)

	_, err := s.GenerateVisitToken(ctx, "P002", "General Medicine", "Dr. Pragadish")
	require.NoError(t, err)
	_, err = s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	today, err := s.ListActiveVisitsForToday(ctx)
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "001", today[0].TokenNumber)
	assert.Equal(t, "002", today[1].TokenNumber)

	row, err := s.GetActiveVisit(ctx, "002")
	require.NoError(t, err)
	assert.Equal(t, "P001", row.PatientID)

	open, err := s.GetPatientActiveVisit(ctx, "p001")
	require.NoError(t, err)
	assert.Equal(t, "002", open.TokenNumber)

	_, err = s.GetActiveVisit(ctx, "003")
	assert.True(t, apperrors.IsNotFound(err))

	clock.advance(24 * time.Hour)
	today, err = s.ListActiveVisitsForToday(ctx)
	require.NoError(t, err)
	assert.Empty(t, today)
	_, err = s.GetPatientActiveVisit(ctx, "P001")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExpireActiveVisits(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s, clock := newTestStore(t, kv)

	_, err := s.GenerateVisitToken(ctx, "P001", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)
	_, err = s.GenerateVisitToken(ctx, "P002", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	n, err := s.ExpireActiveVisits(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.advance(24 * time.Hour)
	_, err = s.GenerateVisitToken(ctx, "P003", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	n, err = s.ExpireActiveVisits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "today's 001 replaced yesterday's, leaving only 002 stale")

	_, err = s.GetActiveVisit(ctx, "002")
	assert.True(t, apperrors.IsNotFound(err))
	row, err := s.GetActiveVisit(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "P003", row.PatientID)

	p2, err := s.GetPatient(ctx, "P002")
	require.NoError(t, err)
	assert.Len(t, p2.MedicalHistory, 2, "history survives expiry")
}

package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

type blobState int

const (
	blobAbsent blobState = iota
	blobCorrupt
	blobPresent
)

// initialize reconciles the bootstrap tables with the medium and writes
// back whatever changed.
func (s *Store) initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = bootstrapPatients(s.now())
	s.staff = bootstrapStaff()
	s.activeVisits = map[string]*model.ActiveVisit{}

	var persistedPatients map[string]*model.PatientRecord
	state, err := s.probe(ctx, PatientsKey, &persistedPatients)
	if err != nil {
		return err
	}
	if state == blobPresent {
		mergePatients(s.patients, persistedPatients)
	}
	// The patient and staff tables are always written back: absent and
	// corrupt blobs get the bootstrap copy, present ones the merge.
	toWrite := []string{PatientsKey, StaffKey}

	var persistedStaff map[string]*model.StaffUser
	state, err = s.probe(ctx, StaffKey, &persistedStaff)
	if err != nil {
		return err
	}
	if state == blobPresent {
		mergeStaff(s.staff, persistedStaff)
	}

	var persistedVisits map[string]*model.ActiveVisit
	state, err = s.probe(ctx, ActiveVisitsKey, &persistedVisits)
	if err != nil {
		return err
	}
	switch state {
	case blobPresent:
		s.activeVisits = persistedVisits
	case blobCorrupt:
		toWrite = append(toWrite, ActiveVisitsKey)
	}

	return s.persist(ctx, toWrite...)
}

func (s *Store) probe(ctx context.Context, key string, dst interface{}) (blobState, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return blobAbsent, nil
	}
	if err != nil {
		return blobAbsent, apperrors.Internal(fmt.Errorf("failed to read %s: %w", key, err))
	}
	if err := decodeTable(raw, dst); err != nil {
		s.log.Warn("persisted table is corrupt, reseeding", "key", key, "error", err.Error())
		return blobCorrupt, nil
	}
	return blobPresent, nil
}

// mergePatients folds persisted records into the bootstrap table. Bootstrap
// patients keep their identity and credentials; everything else comes from
// the persisted copy.
func mergePatients(dst, persisted map[string]*model.PatientRecord) {
	for id, saved := range persisted {
		seed, ok := dst[id]
		if !ok {
			dst[id] = saved
			continue
		}
		merged := *saved
		merged.PatientID = seed.PatientID
		merged.Name = seed.Name
		merged.Password = firstNonEmpty(seed.Password, saved.Password, defaultPatientPassword)
		dst[id] = &merged
	}
}

// mergeStaff is mergePatients for staff; role and department are forced too.
func mergeStaff(dst, persisted map[string]*model.StaffUser) {
	for id, saved := range persisted {
		seed, ok := dst[id]
		if !ok {
			dst[id] = saved
			continue
		}
		merged := *saved
		merged.ID = seed.ID
		merged.Name = seed.Name
		merged.Role = seed.Role
		merged.Department = seed.Department
		merged.Password = firstNonEmpty(seed.Password, saved.Password)
		dst[id] = &merged
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}


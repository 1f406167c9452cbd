package records

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

// ResetDatabase removes every key the portal writes, including sessions and
// dashboard scratch keys, and persists a fresh bootstrap copy.
func (s *Store) ResetDatabase(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []string{PatientsKey, StaffKey, ActiveVisitsKey}
	for _, role := range model.SessionRoles {
		keys = append(keys, role.Key())
	}
	keys = append(keys, scratchKeys...)

	if err := s.kv.Remove(ctx, keys...); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to clear storage: %w", err))
	}

	s.patients = bootstrapPatients(s.now())
	s.staff = bootstrapStaff()
	s.activeVisits = map[string]*model.ActiveVisit{}

	if err := s.persist(ctx, PatientsKey, StaffKey, ActiveVisitsKey); err != nil {
		return err
	}

	s.log.Info("record store reset to bootstrap data")
	s.publish(ctx, model.EventStoreReset, nil)
	return nil
}

package records

import (
	"context"

	"github.com/jwalitptl/hospital-portal/internal/model"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

func (s *Store) LoginStaff(ctx context.Context, id, password string) (*model.StaffUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	user, ok := s.staff[normalizeID(id)]
	if !ok {
		return nil, apperrors.Unauthorized("invalid staff id or password")
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, apperrors.Unauthorized("invalid staff id or password")
	}
	return cloneStaff(user), nil
}

// AddStaff allocates the next id for the role's prefix (D, N, A, or R for
// anything else).
func (s *Store) AddStaff(ctx context.Context, req model.AddStaffRequest) (*model.StaffUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	password, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.StaffUser{
		ID:             nextID(req.Role.IDPrefix(), s.staff),
		Password:       password,
		Name:           req.Name,
		Role:           req.Role,
		Department:     req.Department,
		Specialization: req.Specialization,
		ContactNumber:  req.ContactNumber,
	}
	s.staff[user.ID] = user

	if err := s.persist(ctx, StaffKey); err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventStaffAdded, map[string]interface{}{
		"staff_id": user.ID,
		"role":     string(user.Role),
	})
	return cloneStaff(user), nil
}

func (s *Store) GetStaff(ctx context.Context, id string) (*model.StaffUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	user, ok := s.staff[normalizeID(id)]
	if !ok {
		return nil, apperrors.NotFound("staff member", nil)
	}
	return cloneStaff(user), nil
}

// ListStaff returns every staff member ordered by id.
func (s *Store) ListStaff(ctx context.Context) ([]*model.StaffUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	out := make([]*model.StaffUser, 0, len(s.staff))
	for _, id := range sortedKeys(s.staff) {
		out = append(out, cloneStaff(s.staff[id]))
	}
	return out, nil
}

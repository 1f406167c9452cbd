package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
)

// Service keeps one session blob per portal in the key-value medium. A
// stored session is trusted as is; it is never checked against the
// record store.
type Service struct {
	kv repository.KeyValueStore
}

func NewService(kv repository.KeyValueStore) *Service {
	return &Service{kv: kv}
}

// Start replaces the portal's session.
func (s *Service) Start(ctx context.Context, role model.SessionRole, sess model.Session) error {
	if !role.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("unknown portal %q", role), nil)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to encode session: %w", err))
	}
	if err := s.kv.Set(ctx, role.Key(), string(data)); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to store session: %w", err))
	}
	return nil
}

// Get returns the portal's session. Missing and unparseable blobs are
// both reported as not found.
func (s *Service) Get(ctx context.Context, role model.SessionRole) (*model.Session, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown portal %q", role), nil)
	}
	raw, err := s.kv.Get(ctx, role.Key())
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, apperrors.NotFound("session", nil)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to read session: %w", err))
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.Subject() == "" {
		return nil, apperrors.NotFound("session", err)
	}
	return &sess, nil
}

func (s *Service) End(ctx context.Context, role model.SessionRole) error {
	if !role.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("unknown portal %q", role), nil)
	}
	if err := s.kv.Remove(ctx, role.Key()); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to remove session: %w", err))
	}
	return nil
}

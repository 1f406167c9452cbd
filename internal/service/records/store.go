package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	apperrors "github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
	"github.com/jwalitptl/hospital-portal/pkg/security"
)

// Storage keys of the three tables.
const (
	PatientsKey     = "patients_db"
	StaffKey        = "staff_db"
	ActiveVisitsKey = "active_visits_db"
)

// Scratch keys the dashboards keep next to the tables. Reset clears them.
var scratchKeys = []string{"currentPatient", "doctorSearch", "nurseSearch"}

const (
	dateLayout = "2006-01-02"
	timeLayout = "3:04:05 PM"
)

// Store owns the patient, staff and active-visit tables and writes every
// mutation through to the key-value medium. Methods are safe for concurrent
// use inside one process; separate processes sharing a medium are
// last-write-wins.
type Store struct {
	mu sync.Mutex

	kv           repository.KeyValueStore
	patients     map[string]*model.PatientRecord
	staff        map[string]*model.StaffUser
	activeVisits map[string]*model.ActiveVisit

	now          func() time.Time
	loc          *time.Location
	hasher       security.PasswordHasher
	publisher    messaging.Publisher
	channel      string
	log          *logger.Logger
	metrics      *metrics.Metrics
	reloadOnRead bool
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone that decides the calendar day of a token.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithHasher(h security.PasswordHasher) Option {
	return func(s *Store) { s.hasher = h }
}

// WithPublisher publishes store events to channel after each mutation.
func WithPublisher(p messaging.Publisher, channel string) Option {
	return func(s *Store) {
		s.publisher = p
		s.channel = channel
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithReloadOnRead controls whether every operation re-reads the tables
// from the medium first. Enabled by default.
func WithReloadOnRead(enabled bool) Option {
	return func(s *Store) { s.reloadOnRead = enabled }
}

// New seeds the bootstrap tables and reconciles them with whatever the
// medium already holds.
func New(ctx context.Context, kv repository.KeyValueStore, opts ...Option) (*Store, error) {
	s := &Store{
		kv:           kv,
		now:          time.Now,
		loc:          time.UTC,
		hasher:       security.NewPlainHasher(),
		publisher:    messaging.NopPublisher(),
		log:          logger.Nop(),
		reloadOnRead: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory tables with the persisted blobs. A blob
// that is missing or does not parse leaves its table untouched.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, false)
}

// begin must be called with mu held at the top of every operation.
func (s *Store) begin(ctx context.Context) error {
	if !s.reloadOnRead {
		return nil
	}
	if err := s.load(ctx, false); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// load reads the three tables. With resetMissing an absent active-visits
// blob empties that table instead of keeping it.
func (s *Store) load(ctx context.Context, resetMissing bool) error {
	patients := map[string]*model.PatientRecord{}
	ok, err := s.readTable(ctx, PatientsKey, &patients)
	if err != nil {
		return err
	}
	if ok {
		s.patients = patients
	}

	staff := map[string]*model.StaffUser{}
	ok, err = s.readTable(ctx, StaffKey, &staff)
	if err != nil {
		return err
	}
	if ok {
		s.staff = staff
	}

	visits := map[string]*model.ActiveVisit{}
	ok, err = s.readTable(ctx, ActiveVisitsKey, &visits)
	if err != nil {
		return err
	}
	if ok {
		s.activeVisits = visits
	} else if resetMissing {
		s.activeVisits = map[string]*model.ActiveVisit{}
	}
	return nil
}

// readTable decodes the blob at key into dst. It reports false without an
// error when the blob is absent or corrupt.
func (s *Store) readTable(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := decodeTable(raw, dst); err != nil {
		s.log.Warn("ignoring unparseable table", "key", key, "error", err.Error())
		return false, nil
	}
	return true, nil
}

var errNullTable = errors.New("table is null")

// decodeTable unmarshals a table blob and drops null entries.
func decodeTable(raw string, dst interface{}) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return err
	}
	switch m := dst.(type) {
	case *map[string]*model.PatientRecord:
		if *m == nil {
			return errNullTable
		}
		for k, v := range *m {
			if v == nil {
				delete(*m, k)
			}
		}
	case *map[string]*model.StaffUser:
		if *m == nil {
			return errNullTable
		}
		for k, v := range *m {
			if v == nil {
				delete(*m, k)
			}
		}
	case *map[string]*model.ActiveVisit:
		if *m == nil {
			return errNullTable
		}
		for k, v := range *m {
			if v == nil {
				delete(*m, k)
			}
		}
	}
	return nil
}

// persist writes the named tables in one atomic SetMany. On failure the
// tables are reloaded so memory matches the medium again.
func (s *Store) persist(ctx context.Context, keys ...string) error {
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		var table interface{}
		switch key {
		case PatientsKey:
			table = s.patients
		case StaffKey:
			table = s.staff
		case ActiveVisitsKey:
			table = s.activeVisits
		default:
			return apperrors.Internal(fmt.Errorf("unknown table %q", key))
		}
		data, err := json.Marshal(table)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to encode %s: %w", key, err))
		}
		entries[key] = string(data)
	}

	if err := s.kv.SetMany(ctx, entries); err != nil {
		if rerr := s.load(ctx, true); rerr != nil {
			s.log.Error(rerr, "failed to reload tables after write failure")
		}
		return apperrors.Internal(fmt.Errorf("failed to persist %s: %w", strings.Join(keys, ","), err))
	}
	return nil
}

func (s *Store) publish(ctx context.Context, typ model.EventType, payload map[string]interface{}) {
	event := model.Event{
		Type:       typ,
		Payload:    payload,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, s.channel, event); err != nil {
		s.log.Error(err, "failed to publish store event", "type", string(typ))
	}
}

func (s *Store) today() string {
	return s.now().In(s.loc).Format(dateLayout)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

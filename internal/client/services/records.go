package services

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/records"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/google/uuid"
)

// SyncTrigger requests an on-demand sync cycle.
type SyncTrigger interface {
	Trigger()
}

// RecordService stages new records in the local cache. Records with equal
// names but different ids are kept side by side; nothing is merged.
type RecordService struct {
	records records.Repository
	session *Session
	sync    SyncTrigger
	clock   timex.Clock
}

// NewRecordService builds the service. trigger may be nil.
func NewRecordService(repo records.Repository, session *Session, trigger SyncTrigger, clock timex.Clock) *RecordService {
	if clock == nil {
		clock = timex.Real{}
	}
	return &RecordService{records: repo, session: session, sync: trigger, clock: clock}
}

// Create stores a new unsynchronized record and asks for a sync.
func (s *RecordService) Create(ctx context.Context, fields map[string]string) (*models.Record, error) {
	if !s.session.Authenticated() {
		return nil, fmt.Errorf("%w: you need to be authenticated first", common.ErrorUnauthorized)
	}
	if strings.TrimSpace(fields[common.FieldName]) == "" {
		return nil, fmt.Errorf("%w: %s is required", common.ErrorValidation, common.FieldName)
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	rec := &models.Record{
		ID:        uuid.NewString(),
		Fields:    maps.Clone(fields),
		CreatedAt: s.clock.Now().UTC(),
	}

	if _, err := s.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store record: %w", err)
	}

	if s.sync != nil {
		s.sync.Trigger()
	}
	return rec, nil
}

// validateFields rejects text that would not survive storage unchanged:
// invalid UTF-8 is rewritten by the JSON encoder and NUL is refused by the
// remote store.
func validateFields(fields map[string]string) error {
	for k, v := range fields {
		for _, str := range []string{k, v} {
			if !utf8.ValidString(str) {
				return fmt.Errorf("%w: field %q is not valid UTF-8", common.ErrorValidation, k)
			}
			if strings.ContainsRune(str, 0) {
				return fmt.Errorf("%w: field %q contains a NUL character", common.ErrorValidation, k)
			}
		}
	}
	return nil
}

func (s *RecordService) List(ctx context.Context) ([]*models.Record, error) {
	if !s.session.Authenticated() {
		return nil, fmt.Errorf("%w: you need to be authenticated first", common.ErrorUnauthorized)
	}
	return s.records.List(ctx)
}

// Get returns one record from the local cache or common.ErrorNotFound.
func (s *RecordService) Get(ctx context.Context, id string) (*models.Record, error) {
	if !s.session.Authenticated() {
		return nil, fmt.Errorf("%w: you need to be authenticated first", common.ErrorUnauthorized)
	}
	return s.records.GetByID(ctx, id)
}

// Backlog returns the number of records waiting for sync.
func (s *RecordService) Backlog(ctx context.Context) (int, error) {
	return s.records.CountUnsynchronized(ctx)
}

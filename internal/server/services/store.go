// Package services contains the remote store's business logic: input
// validation in front of the user and record repositories.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/server/models"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/records"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const maxIDLen = 128

type StoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	records     records.Repository
}

// NewStoreService builds the service. A nil recordStore keeps records in
// PostgreSQL next to the users.
func NewStoreService(db *sql.DB, m repomanager.RepositoryManager, recordStore records.Repository) *StoreService {
	if recordStore == nil {
		recordStore = m.Records(db)
	}
	return &StoreService{db: db, repomanager: m, records: recordStore}
}

func validID(id string) bool {
	return strings.TrimSpace(id) != "" && len(id) <= maxIDLen && validText(id)
}

// validText rejects what PostgreSQL text and JSONB cannot hold.
func validText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// UpsertRecord stores the record, replacing any previous copy with the same ID.
func (s *StoreService) UpsertRecord(ctx context.Context, id string, fields map[string]string) error {
	if !validID(id) {
		return fmt.Errorf("%w: invalid record id", common.ErrorValidation)
	}
	if fields[common.FieldName] == "" {
		return fmt.Errorf("%w: record %s has no name", common.ErrorValidation, id)
	}
	for k, v := range fields {
		if !validText(k) || !validText(v) {
			return fmt.Errorf("%w: record %s field %q has invalid text", common.ErrorValidation, id, k)
		}
	}

	if err := s.records.Upsert(ctx, &models.Record{ID: id, Fields: fields}); err != nil {
		return fmt.Errorf("upsert record %s: %w", id, err)
	}
	return nil
}

// GetRecord returns the stored copy of a record or common.ErrorNotFound.
func (s *StoreService) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: invalid record id", common.ErrorValidation)
	}
	return s.records.Get(ctx, id)
}

// FindUser returns the stored credential or common.ErrorNotFound.
func (s *StoreService) FindUser(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", common.ErrorValidation)
	}
	return s.repomanager.Users(s.db).GetByUsername(ctx, username)
}

// CreateUser stores a credential. The hash must be a bcrypt hash; the
// server never receives plaintext passwords.
func (s *StoreService) CreateUser(ctx context.Context, user *models.User) error {
	if !validID(user.ID) || user.Username == "" || !validText(user.Username) {
		return fmt.Errorf("%w: id and username are required", common.ErrorValidation)
	}
	if _, err := bcrypt.Cost([]byte(user.PasswordHash)); err != nil {
		return fmt.Errorf("%w: password hash: %v", common.ErrorValidation, err)
	}

	return s.repomanager.Users(s.db).Create(ctx, user)
}

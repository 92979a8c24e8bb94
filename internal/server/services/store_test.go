package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/server/models"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/records"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error

	LastCreated *models.User
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return common.ErrorUsernameTaken
	}
	f.byName[u.Username] = u
	f.LastCreated = u
	return nil
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRecordsRepo struct {
	upsertErr error
	stored    map[string]map[string]string
	upserts   int
}

func (f *fakeRecordsRepo) Upsert(_ context.Context, r *models.Record) error {
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.stored[r.ID] = r.Fields
	return nil
}

func (f *fakeRecordsRepo) Get(_ context.Context, id string) (*models.Record, error) {
	fields, ok := f.stored[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Record{ID: id, Fields: fields}, nil
}

type fakeManager struct {
	users   *fakeUsersRepo
	records *fakeRecordsRepo
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository            { return m.users }
func (m *fakeManager) Records(dbx.DBTX) records.Repository        { return m.records }

func newTestService(t *testing.T) (*StoreService, *fakeManager) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := &fakeManager{
		users:   &fakeUsersRepo{byName: map[string]*models.User{}},
		records: &fakeRecordsRepo{stored: map[string]map[string]string{}},
	}
	return NewStoreService(db, m, nil), m
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUpsertRecord(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecord(ctx, "r-1", map[string]string{"name": "p1"}))
	require.NoError(t, s.UpsertRecord(ctx, "r-1", map[string]string{"name": "p1"}))

	assert.Equal(t, 2, m.records.upserts)
	assert.Equal(t, map[string]string{"name": "p1"}, m.records.stored["r-1"])
}

func TestUpsertRecord_Validation(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		id     string
		fields map[string]string
	}{
		{"empty id", "", map[string]string{"name": "x"}},
		{"blank id", "   ", map[string]string{"name": "x"}},
		{"long id", string(make([]byte, maxIDLen+1)), map[string]string{"name": "x"}},
		{"no name", "r-1", map[string]string{"note": "x"}},
		{"nil fields", "r-1", nil},
		{"nul in id", "r\x001", map[string]string{"name": "x"}},
		{"nul in value", "r-1", map[string]string{"name": "a\x00b"}},
		{"nul in key", "r-1", map[string]string{"name": "x", "k\x00": "v"}},
		{"invalid utf8 value", "r-1", map[string]string{"name": "caf\xff"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpsertRecord(ctx, tt.id, tt.fields)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
	assert.Zero(t, m.records.upserts)
}

func TestUpsertRecord_RepoError(t *testing.T) {
	s, m := newTestService(t)
	m.records.upsertErr = errors.New("db down")

	err := s.UpsertRecord(context.Background(), "r-1", map[string]string{"name": "p1"})
	require.ErrorContains(t, err, "db down")
}

func TestNewStoreService_ExplicitRecordStore(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	other := &fakeRecordsRepo{stored: map[string]map[string]string{}}
	m := &fakeManager{records: &fakeRecordsRepo{stored: map[string]map[string]string{}}}
	s := NewStoreService(db, m, other)

	require.NoError(t, s.UpsertRecord(context.Background(), "r-1", map[string]string{"name": "p1"}))
	assert.Equal(t, 1, other.upserts)
	assert.Zero(t, m.records.upserts)
}

func TestCreateAndFindUser(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	u := &models.User{ID: "u-1", Username: "alice", PasswordHash: hash(t, "secret123")}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Same(t, u, m.users.LastCreated)

	got, err := s.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	err = s.CreateUser(ctx, &models.User{ID: "u-2", Username: "alice", PasswordHash: hash(t, "other")})
	require.ErrorIs(t, err, common.ErrorUsernameTaken)

	_, err = s.FindUser(ctx, "bob")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreateUser_Validation(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()
	good := hash(t, "pw")

	tests := []struct {
		name string
		user models.User
	}{
		{"no id", models.User{Username: "alice", PasswordHash: good}},
		{"no username", models.User{ID: "u-1", PasswordHash: good}},
		{"plaintext password", models.User{ID: "u-1", Username: "alice", PasswordHash: "secret123"}},
		{"empty hash", models.User{ID: "u-1", Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, s.CreateUser(ctx, &tt.user), common.ErrorValidation)
		})
	}
	assert.Nil(t, m.users.LastCreated)
}

func TestFindUser_EmptyUsername(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.FindUser(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestGetRecord(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecord(ctx, "r-1", map[string]string{"name": "p1", "city": "Riga"}))

	r, err := s.GetRecord(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "p1", "city": "Riga"}, r.Fields)

	_, err = s.GetRecord(ctx, "r-2")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.GetRecord(ctx, " ")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.GetRecord(ctx, "a\x00b")
	require.ErrorIs(t, err, common.ErrorValidation)
}

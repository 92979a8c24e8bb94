package services

import (
	"context"
	"database/sql"
	"maps"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/client/client"
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

// ---- fake connectivity ----

type fakeOnline struct {
	online atomic.Bool
	calls  atomic.Int32
}

func newFakeOnline(online bool) *fakeOnline {
	f := &fakeOnline{}
	f.online.Store(online)
	return f
}

func (f *fakeOnline) IsOnline(ctx context.Context) bool {
	f.calls.Add(1)
	return f.online.Load()
}

// ---- fake remote store ----

type fakeRemote struct {
	mu sync.Mutex

	records map[string]map[string]string
	users   map[string]*models.UserCredential

	UpsertCalls int
	// UpsertErrAt fails the n-th upsert (1-based) with UpsertErr; 0 fails all
	// when UpsertErr is set.
	UpsertErrAt int
	UpsertErr   error

	FindErr   error
	CreateErr error

	// CreateHook runs before a user is stored, e.g. to simulate a racing
	// registration from another client.
	CreateHook func()

	LastUpsertID string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records: map[string]map[string]string{},
		users:   map[string]*models.UserCredential{},
	}
}

func (f *fakeRemote) UpsertRecord(ctx context.Context, id string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpsertCalls++
	f.LastUpsertID = id
	if f.UpsertErr != nil && (f.UpsertErrAt == 0 || f.UpsertErrAt == f.UpsertCalls) {
		return f.UpsertErr
	}
	f.records[id] = maps.Clone(fields)
	return nil
}

func (f *fakeRemote) FindUserByUsername(ctx context.Context, username string) (*models.UserCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeRemote) CreateUser(ctx context.Context, user *models.UserCredential) error {
	if f.CreateHook != nil {
		f.CreateHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, ok := f.users[user.Username]; ok {
		return common.ErrorUsernameTaken
	}
	c := *user
	f.users[user.Username] = &c
	return nil
}

func (f *fakeRemote) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeRemote) record(id string) (map[string]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r, ok
}

func (f *fakeRemote) snapshot() map[string]map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]map[string]string, len(f.records))
	for k, v := range f.records {
		out[k] = maps.Clone(v)
	}
	return out
}

package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/server/models"
)

type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	records map[string]map[string]string

	upsertErr error
	findErr   error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}, records: map[string]map[string]string{}}
}

func (f *fakeStore) UpsertRecord(_ context.Context, id string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[id] = fields
	return nil
}

func (f *fakeStore) FindUser(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.Username]; ok {
		return common.ErrorUsernameTaken
	}
	f.users[u.Username] = u
	return nil
}

type rpcCall struct {
	method string
	code   string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []rpcCall
}

func (r *fakeRecorder) RecordRPC(method string, code string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rpcCall{method: method, code: code})
}

func newTestServer(store Store, opts ...Option) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), store, opts...)
}

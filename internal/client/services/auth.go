package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential half of the remote store client.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.UserCredential, error)
	CreateUser(ctx context.Context, user *models.UserCredential) error
}

// maxPasswordLen is bcrypt's input limit.
const maxPasswordLen = 72

const DefaultRemoteTimeout = 5 * time.Second

// Authenticator registers users and verifies login attempts. The remote store
// is the only source of truth for credentials; nothing is cached locally.
type Authenticator struct {
	users   UserStore
	online  OnlineChecker
	session *Session
	clock   timex.Clock
	log     logging.Logger
	cost    int
	timeout time.Duration

	dummyOnce sync.Once
	dummy     []byte
}

type AuthOption func(*Authenticator)

// WithBcryptCost sets the bcrypt work factor used for new hashes.
func WithBcryptCost(cost int) AuthOption {
	return func(a *Authenticator) { a.cost = cost }
}

func WithAuthClock(c timex.Clock) AuthOption {
	return func(a *Authenticator) { a.clock = c }
}

func WithAuthLogger(l logging.Logger) AuthOption {
	return func(a *Authenticator) { a.log = l }
}

// WithAuthTimeout bounds each remote call.
func WithAuthTimeout(d time.Duration) AuthOption {
	return func(a *Authenticator) { a.timeout = d }
}

func NewAuthenticator(users UserStore, online OnlineChecker, session *Session, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		users:   users,
		online:  online,
		session: session,
		clock:   timex.Real{},
		log:     logging.Nop(),
		cost:    bcrypt.DefaultCost,
		timeout: DefaultRemoteTimeout,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func validateCredentials(username string, password []byte) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, maxPasswordLen)
	}
	return nil
}

func remoteError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorRemoteWrite, err)
}

// Register creates a credential for username. The uniqueness check and the
// insert are two separate remote calls; a concurrent registration of the same
// name from another client is settled by the remote store's constraint, which
// surfaces here as common.ErrorUsernameTaken.
func (a *Authenticator) Register(ctx context.Context, username string, password []byte) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if !a.online.IsOnline(ctx) {
		return common.ErrorOffline
	}

	findCtx, cancel := context.WithTimeout(ctx, a.timeout)
	_, err := a.users.FindUserByUsername(findCtx, username)
	cancel()
	switch {
	case err == nil:
		return common.ErrorUsernameTaken
	case errors.Is(err, common.ErrorNotFound):
	default:
		return remoteError(err)
	}

	hash, err := bcrypt.GenerateFromPassword(password, a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.UserCredential{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}

	createCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.users.CreateUser(createCtx, user); err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return common.ErrorUsernameTaken
		}
		return remoteError(err)
	}

	a.log.Info(ctx, "user registered", "username", username)
	return nil
}

// Authenticate reports whether password matches the stored hash for
// username. An unknown username and a wrong password give the same result.
// On success the session becomes authenticated.
func (a *Authenticator) Authenticate(ctx context.Context, username string, password []byte) (bool, error) {
	if err := validateCredentials(username, password); err != nil {
		return false, err
	}
	if !a.online.IsOnline(ctx) {
		return false, common.ErrorOffline
	}

	findCtx, cancel := context.WithTimeout(ctx, a.timeout)
	user, err := a.users.FindUserByUsername(findCtx, username)
	cancel()

	hash := a.dummyHash()
	switch {
	case err == nil:
		hash = []byte(user.PasswordHash)
	case errors.Is(err, common.ErrorNotFound):
		user = nil
	default:
		return false, remoteError(err)
	}

	err = bcrypt.CompareHashAndPassword(hash, password)
	if user == nil {
		return false, nil
	}
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			a.log.Warn(ctx, "stored hash rejected", "username", username, "error", err)
		}
		return false, nil
	}

	a.session.grant(username, a.clock.Now())
	return true, nil
}

// dummyHash is compared against when the user does not exist so both
// negative paths do the same bcrypt work.
func (a *Authenticator) dummyHash() []byte {
	a.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("offsync-no-such-user"), a.cost)
		if err != nil {
			a.log.Error(context.Background(), "failed to prepare dummy hash", "error", err)
			return
		}
		a.dummy = h
	})
	return a.dummy
}

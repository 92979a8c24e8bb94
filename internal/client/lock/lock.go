// Package lock implements the inactivity lock of an authenticated session.
//
// The machine starts Active after the first login. When no activity is
// reported for the idle interval it moves to Locked, revokes the session and
// asks the host for a re-authentication. A successful unlock returns to
// Active with a fresh idle interval; abandoning the challenge ends the session
// for good (Terminated).
//
//	Active --idle--> Locked --unlock ok--> Active
//	                 Locked --abandon--> Terminated
//
// Each armed timer carries a generation number. Activity and Stop bump the
// generation under the machine's mutex, so a timer that fires concurrently
// with a reset sees a stale generation and does nothing, while a timer that
// wins the mutex first locks the session and the late Activity is rejected.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/timex"
)

type State int

const (
	Inactive State = iota
	Active
	Locked
	Terminated
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Locked:
		return "locked"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var (
	ErrNotLocked  = errors.New("session is not locked")
	ErrTerminated = errors.New("session terminated")
	ErrWrongUser  = errors.New("session belongs to another user")
)

// Authenticator verifies a re-authentication attempt.
type Authenticator interface {
	Authenticate(ctx context.Context, username string, password []byte) (bool, error)
}

// Session is the state the machine revokes and resets. Username is the
// owner a Locked session may be unlocked by.
type Session interface {
	Username() string
	Touch(t time.Time)
	Revoke()
	Reset()
}

type Machine struct {
	mu      sync.Mutex
	state   State
	gen     uint64
	timer   timex.Timer
	done    chan struct{}
	idle    time.Duration
	clock   timex.Clock
	auth    Authenticator
	session Session
	log     logging.Logger

	onLock         func()
	onUnlockResult func(ok bool, err error)
}

type Option func(*Machine)

func WithClock(c timex.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// OnLock is called, outside the machine's mutex, each time the session locks.
func OnLock(f func()) Option {
	return func(m *Machine) { m.onLock = f }
}

// OnUnlockResult is called after every unlock attempt.
func OnUnlockResult(f func(ok bool, err error)) Option {
	return func(m *Machine) { m.onUnlockResult = f }
}

func New(auth Authenticator, session Session, idle time.Duration, opts ...Option) *Machine {
	m := &Machine{
		idle:    idle,
		clock:   timex.Real{},
		auth:    auth,
		session: session,
		log:     logging.Nop(),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start enters Active and arms the idle timer. Starting an Active machine
// is a no-op.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Terminated:
		return ErrTerminated
	case Active:
		return nil
	case Locked:
		return errors.New("session is locked")
	}
	m.state = Active
	m.session.Touch(m.clock.Now())
	m.arm()
	return nil
}

// arm must be called with m.mu held.
func (m *Machine) arm() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = m.clock.AfterFunc(m.idle, func() { m.expire(gen) })
}

func (m *Machine) disarm() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

func (m *Machine) expire(gen uint64) {
	m.mu.Lock()
	if m.state != Active || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.state = Locked
	m.timer = nil
	m.session.Revoke()
	m.mu.Unlock()

	m.log.Info(context.Background(), "session locked after inactivity", "idle", m.idle)
	if m.onLock != nil {
		m.onLock()
	}
}

// Activity reports user input. While Active it restarts the idle interval
// and returns true; in any other state it changes nothing and returns false.
func (m *Machine) Activity() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return false
	}
	m.session.Touch(m.clock.Now())
	m.arm()
	return true
}

// Unlock tries to re-authenticate a Locked session. Only the user who owned
// the session can unlock it.
func (m *Machine) Unlock(ctx context.Context, username string, password []byte) (bool, error) {
	m.mu.Lock()
	if m.state != Locked {
		m.mu.Unlock()
		return false, ErrNotLocked
	}
	if owner := m.session.Username(); owner != "" && owner != username {
		m.mu.Unlock()
		return false, ErrWrongUser
	}
	m.mu.Unlock()

	ok, err := m.auth.Authenticate(ctx, username, password)

	m.mu.Lock()
	if m.state != Locked {
		// Abandoned or stopped while we were authenticating: a grant made by
		// the authenticator must not outlive the session.
		if ok && (m.state == Terminated || m.state == Inactive) {
			m.session.Reset()
		}
		m.mu.Unlock()
		return false, ErrNotLocked
	}
	if ok {
		m.state = Active
		m.session.Touch(m.clock.Now())
		m.arm()
	}
	m.mu.Unlock()

	if ok {
		m.log.Info(ctx, "session unlocked", "username", username)
	} else {
		m.log.Info(ctx, "unlock attempt failed", "username", username, "error", err)
	}
	if m.onUnlockResult != nil {
		m.onUnlockResult(ok, err)
	}
	return ok, err
}

// Abandon gives up the re-authentication challenge. The session is reset
// and Done is closed.
func (m *Machine) Abandon() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Locked {
		return ErrNotLocked
	}
	m.state = Terminated
	m.disarm()
	m.session.Reset()
	close(m.done)
	return nil
}

// Stop disarms the machine without terminating it, e.g. on logout. A later
// Start begins a new Active period.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Terminated {
		return
	}
	m.disarm()
	m.state = Inactive
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done is closed when the machine reaches Terminated.
func (m *Machine) Done() <-chan struct{} {
	return m.done
}

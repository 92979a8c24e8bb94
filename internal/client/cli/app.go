package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/offsync/internal/client/client"
	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/dmitrijs2005/offsync/internal/client/connectivity"
	"github.com/dmitrijs2005/offsync/internal/client/lock"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/records"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/metrics"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/prometheus/client_golang/prometheus"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	remote   client.RemoteStore
	oracle   *connectivity.Oracle
	session  *services.Session
	auth     *services.Authenticator
	syncer   *services.SyncEngine
	records  *services.RecordService
	meta     metadata.Repository
	lock     *lock.Machine
	registry *prometheus.Registry

	mu   sync.Mutex
	mode Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and the remote store connection and wires
// the client together.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	remote, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating remote store client: %w", err)
	}

	return newApp(cfg, log, db, remote, timex.Real{}, os.Stdin, os.Stdout), nil
}

func newApp(cfg *config.Config, log logging.Logger, db *sql.DB, remote client.RemoteStore,
	clock timex.Clock, in io.Reader, out io.Writer, authOpts ...services.AuthOption) *App {

	a := &App{
		config:   cfg,
		log:      log,
		db:       db,
		remote:   remote,
		registry: prometheus.NewRegistry(),
		mode:     ModeOffline,
		reader:   bufio.NewReader(in),
		out:      &lockedWriter{w: out},
	}

	a.oracle = connectivity.NewOracle(remote, cfg.ConnectivityTimeout, log)
	a.session = services.NewSession()

	authOpts = append([]services.AuthOption{
		services.WithAuthClock(clock),
		services.WithAuthLogger(log),
		services.WithAuthTimeout(cfg.RemoteTimeout),
	}, authOpts...)
	a.auth = services.NewAuthenticator(remote, a.oracle, a.session, authOpts...)

	recordRepo := records.NewSQLiteRepository(db)
	a.meta = metadata.NewSQLiteRepository(db)

	a.syncer = services.NewSyncEngine(recordRepo, remote, a.oracle,
		services.WithMetadata(a.meta),
		services.WithSyncMetrics(metrics.NewSyncCollector(a.registry)),
		services.WithSyncLogger(log),
		services.WithSyncClock(clock),
		services.WithRemoteTimeout(cfg.RemoteTimeout),
	)
	a.records = services.NewRecordService(recordRepo, a.session, a.syncer, clock)

	a.lock = lock.New(a.auth, a.session, cfg.IdleTimeout,
		lock.WithClock(clock),
		lock.WithLogger(log),
		lock.OnLock(a.onLock),
	)
	return a
}

// Run starts the background workers and blocks in the REPL until the user
// exits, the session is terminated or input ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		a.oracle.Watch(ctx, a.config.OnlineCheckInterval, a.setOnline)
	}()
	go func() {
		defer wg.Done()
		a.syncer.Run(ctx, a.config.SyncInterval)
	}()

	if a.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			router := metrics.NewRouter(a.registry, a.db.PingContext)
			if err := metrics.Serve(ctx, a.config.MetricsAddr, router); err != nil {
				a.log.Error(ctx, "metrics server failed", "error", err)
			}
		}()
	}

	fmt.Fprintln(a.out, "Welcome to offsync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)

	cancel()
	wg.Wait()
	return a.Close()
}

func (a *App) Close() error {
	a.lock.Stop()
	if err := a.remote.Close(); err != nil {
		a.log.Warn(context.Background(), "failed to close remote store client", "error", err)
	}
	return a.db.Close()
}

func (a *App) setOnline(online bool) {
	mode := ModeOffline
	if online {
		mode = ModeOnline
	}
	a.mu.Lock()
	a.mode = mode
	a.mu.Unlock()
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.Username(); u != "" {
		s = u + " "
	}
	if a.isLocked() {
		s += "locked "
	}
	s += string(a.currentMode())
	return fmt.Sprintf("(%s)", s)
}

func (a *App) onLock() {
	fmt.Fprintln(a.out, "\nSession locked after inactivity. Press Enter to unlock.")
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/client"
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func startBufconn(t *testing.T, s *GRPCServer) (*client.GRPCClient, context.CancelFunc, <-chan error) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	c, err := client.NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
		cancel()
	})
	return c, cancel, done
}

func TestRoundTrip(t *testing.T) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	c, _, _ := startBufconn(t, newTestServer(store, WithMetrics(rec)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.UpsertRecord(ctx, "r-1", map[string]string{"name": "p1"}))
	require.NoError(t, c.UpsertRecord(ctx, "r-1", map[string]string{"name": "p1"}))
	assert.Len(t, store.records, 1)

	_, err := c.FindUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, common.ErrorNotFound)

	u := &models.UserCredential{ID: "u-1", Username: "alice", PasswordHash: "$2a$h"}
	require.NoError(t, c.CreateUser(ctx, u))
	require.ErrorIs(t, c.CreateUser(ctx, u), common.ErrorUsernameTaken)

	got, err := c.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	assert.NotEmpty(t, rec.calls)
}

func TestRoundTrip_RateLimited(t *testing.T) {
	c, _, _ := startBufconn(t, newTestServer(newFakeStore(), WithRateLimit(0.0001, 1)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.UpsertRecord(ctx, "r-1", map[string]string{"name": "p1"}))
	err := c.UpsertRecord(ctx, "r-2", map[string]string{"name": "p2"})
	require.ErrorIs(t, err, client.ErrUnavailable)

	require.NoError(t, c.Ping(ctx))
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	c, cancel, done := startBufconn(t, newTestServer(newFakeStore()))

	ctx, cancelCall := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCall()
	require.NoError(t, c.Ping(ctx))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:99999", logging.Nop(), newFakeStore())
	require.Error(t, s.Run(context.Background()))
}

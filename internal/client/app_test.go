package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/crypto"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/mock"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/realtime"
	"github.com/MKhiriev/go-vrc-link/internal/service"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/store"
	"github.com/MKhiriev/go-vrc-link/models"
)

type appFixture struct {
	app         *App
	platform    *mock.MockPlatformAdapter
	state       *session.State
	credentials *session.CredentialStore
}

// newTestApp собирает демон целиком поверх мока платформы; pipeline указывает
// на закрытый порт, diagnostics выключены.
func newTestApp(t *testing.T, masterSecret string) *appFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	platform := mock.NewMockPlatformAdapter(ctrl)

	cfg := config.Default()
	cfg.App.MasterKey = masterSecret
	cfg.Adapter.PipelineAddress = "ws://127.0.0.1:1"
	cfg.Server.DiagnosticsAddress = ""

	kv := store.NewMemoryKeyValueStore()
	state := session.NewState()
	credentials := session.NewCredentialStore(kv, crypto.NewKeyChainService(), masterSecret)
	q := queue.New(queue.Config{}, queue.WithPollInterval(time.Millisecond))

	services := service.NewServices(platform, q, state, credentials, kv, *cfg, logger.Nop(), nil)
	rt := realtime.New(state, credentials, cfg.Adapter, cfg.App, cfg.Workers, logger.Nop())

	app, err := NewApp(cfg, models.NewAppBuildInfo("1.0.0", "2026-10-01", "abc123"), state, q, services, rt, nil, logger.Nop())
	require.NoError(t, err)

	return &appFixture{app: app, platform: platform, state: state, credentials: credentials}
}

// runUntil запускает run и отменяет контекст, как только cond выполнено.
func runUntil(t *testing.T, app *App, cond func() bool) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.run(ctx) }()

	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestApp_StaysLoggedOutWithoutSession(t *testing.T) {
	f := newTestApp(t, "")

	runUntil(t, f.app, func() bool {
		return f.state.Status.Get() == models.AuthStatusLoggedOut
	})

	health := f.app.Health()
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, models.AuthStatusLoggedOut, health.AuthStatus)
	assert.False(t, health.RealtimeConnected)
	assert.Zero(t, health.PendingTasks)
}

func TestApp_LogsInWithRememberedCredentials(t *testing.T) {
	f := newTestApp(t, "correct horse battery staple")
	require.NoError(t, f.credentials.Remember(context.Background(), "alice", "hunter2"))

	f.platform.EXPECT().Login(gomock.Any(), "alice", "hunter2").
		Return(models.AuthUserResponse{User: &models.CurrentUser{ID: "usr_alice"}}, nil)

	runUntil(t, f.app, f.state.IsLoggedIn)

	assert.Equal(t, "usr_alice", f.state.User.Get().ID)
}

func TestApp_HealthVersion(t *testing.T) {
	f := newTestApp(t, "")
	assert.Equal(t, "1.0.0 (abc123, 2026-10-01)", f.app.Health().Version)

	f.app.version = "2.0.0"
	assert.Equal(t, "2.0.0", f.app.Health().Version)
}

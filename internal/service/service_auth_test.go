// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-vrc-link/internal/adapter"
	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/crypto"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/mock"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/store"
	"github.com/MKhiriev/go-vrc-link/models"
)

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

type authFixture struct {
	auth        *authService
	api         *apiService
	platform    *mock.MockPlatformAdapter
	state       *session.State
	credentials *session.CredentialStore
}

// newTestAuth собирает authService с настоящим CredentialStore в памяти.
// masterSecret пустой, запоминание логина выключено.
func newTestAuth(t *testing.T, masterSecret string) *authFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	platform := mock.NewMockPlatformAdapter(ctrl)

	q := queue.New(queue.Config{}, queue.WithPollInterval(time.Millisecond))
	t.Cleanup(q.Stop)

	state := session.NewState()
	credentials := session.NewCredentialStore(store.NewMemoryKeyValueStore(), crypto.NewKeyChainService(), masterSecret)
	api := NewAPIService(platform, q, state, nil, config.Adapter{}, logger.Nop(), nil).(*apiService)
	auth := NewAuthService(platform, q, state, credentials, api, config.Workers{StaleAfter: time.Minute}, logger.Nop()).(*authService)

	return &authFixture{auth: auth, api: api, platform: platform, state: state, credentials: credentials}
}

func (f *authFixture) seedCookie(t *testing.T) {
	t.Helper()
	require.NoError(t, f.credentials.StoreCookies(context.Background(), []*http.Cookie{
		{Name: session.AuthCookieName, Value: "authcookie_1"},
	}))
}

func me() *models.CurrentUser {
	return &models.CurrentUser{ID: "usr_me", DisplayName: "Me", Status: models.StatusActive}
}

func unauthorized(msg string) error {
	return adapter.NewHTTPError(http.StatusUnauthorized, msg)
}

// ── Init ─────────────────────────────────────────────────────────────────────

func TestInit_NoCookie(t *testing.T) {
	f := newTestAuth(t, "")

	require.NoError(t, f.auth.Init(context.Background()))
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
}

func TestInit_RestoresSession(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)

	f.platform.EXPECT().GetCurrentUser(gomock.Any()).Return(models.AuthUserResponse{User: me()}, nil)

	require.NoError(t, f.auth.Init(context.Background()))
	assert.Equal(t, models.AuthStatusLoggedIn, f.state.Status.Get())
	assert.Equal(t, "usr_me", f.state.User.Get().ID)
}

func TestInit_TransportFailureKeepsCookies(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	ctx := context.Background()

	f.platform.EXPECT().GetCurrentUser(gomock.Any()).
		Return(models.AuthUserResponse{}, errors.New("dial tcp: connection refused"))

	err := f.auth.Init(ctx)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
	assert.Equal(t, "authcookie_1", f.credentials.AuthToken(ctx))
}

func TestInit_RejectedSessionClearsCookies(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	ctx := context.Background()

	f.platform.EXPECT().GetCurrentUser(gomock.Any()).
		Return(models.AuthUserResponse{}, unauthorized("Missing Credentials"))

	err := f.auth.Init(ctx)
	assert.ErrorIs(t, err, ErrLoginExpired)
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
	assert.Empty(t, f.credentials.AuthToken(ctx))
}

func TestInit_TwoFactorPendingIsLoginExpired(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	ctx := context.Background()

	f.platform.EXPECT().GetCurrentUser(gomock.Any()).
		Return(models.AuthUserResponse{RequiresTwoFactorAuth: []string{"totp", "otp"}}, nil)

	assert.ErrorIs(t, f.auth.Init(ctx), ErrLoginExpired)
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
	assert.Empty(t, f.credentials.AuthToken(ctx))
}

func TestInit_OnlyFromPreInit(t *testing.T) {
	f := newTestAuth(t, "")
	f.state.SetLoggedOut()
	f.seedCookie(t)

	// статус уже не PRE_INIT, платформа не вызывается
	require.NoError(t, f.auth.Init(context.Background()))
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	f := newTestAuth(t, "")

	f.platform.EXPECT().Login(gomock.Any(), "alice", "secret").Return(models.AuthUserResponse{User: me()}, nil)

	require.NoError(t, f.auth.Login(context.Background(), "alice", "secret", false))
	assert.Equal(t, models.AuthStatusLoggedIn, f.state.Status.Get())
	assert.Equal(t, "Me", f.state.User.Get().DisplayName)
	assert.False(t, f.api.LastUserFetch().IsZero())
}

func TestLogin_InvalidCredentialsLeaveCookies(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	ctx := context.Background()

	f.platform.EXPECT().Login(gomock.Any(), "alice", "wrong").
		Return(models.AuthUserResponse{}, unauthorized("Invalid Username/Email or Password"))

	err := f.auth.Login(ctx, "alice", "wrong", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
	assert.Equal(t, "authcookie_1", f.credentials.AuthToken(ctx))
}

func TestLogin_EmailCheckRequired(t *testing.T) {
	f := newTestAuth(t, "")

	f.platform.EXPECT().Login(gomock.Any(), "alice", "secret").
		Return(models.AuthUserResponse{}, unauthorized("Check your email to confirm this login"))

	assert.ErrorIs(t, f.auth.Login(context.Background(), "alice", "secret", false), ErrEmailCheckRequired)
}

func TestLogin_TwoFactorRequired(t *testing.T) {
	tests := []struct {
		name    string
		methods []string
		want    error
	}{
		{name: "email only", methods: []string{"emailOtp"}, want: ErrTwoFactorRequiredEmail},
		{name: "authenticator", methods: []string{"totp", "otp"}, want: ErrTwoFactorRequiredTOTP},
		{name: "recovery only", methods: []string{"otp"}, want: ErrTwoFactorRequiredOTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestAuth(t, "")
			f.platform.EXPECT().Login(gomock.Any(), "alice", "secret").
				Return(models.AuthUserResponse{RequiresTwoFactorAuth: tt.methods}, nil)

			err := f.auth.Login(context.Background(), "alice", "secret", false)
			assert.ErrorIs(t, err, tt.want)

			var tfa *TwoFactorRequiredError
			require.ErrorAs(t, err, &tfa)
			assert.Len(t, tfa.Methods, len(tt.methods))
			assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
		})
	}
}

func TestLogin_UnknownTwoFactorMethod(t *testing.T) {
	f := newTestAuth(t, "")
	f.platform.EXPECT().Login(gomock.Any(), "alice", "secret").
		Return(models.AuthUserResponse{RequiresTwoFactorAuth: []string{"sms"}}, nil)

	assert.ErrorIs(t, f.auth.Login(context.Background(), "alice", "secret", false), ErrUnsupportedTwoFactor)
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	f := newTestAuth(t, "")
	f.state.SetLoggedIn(me())

	assert.ErrorIs(t, f.auth.Login(context.Background(), "alice", "secret", false), ErrAlreadyLoggedIn)
}

func TestLogin_RememberThenLoginWithRemembered(t *testing.T) {
	f := newTestAuth(t, "master-secret")
	ctx := context.Background()

	f.platform.EXPECT().Login(gomock.Any(), "alice", "secret").Return(models.AuthUserResponse{User: me()}, nil).Times(2)

	require.NoError(t, f.auth.Login(ctx, "alice", "secret", true))
	require.NoError(t, f.auth.Logout(ctx))

	// Logout не трогает запомненные учётные данные
	require.NoError(t, f.auth.LoginWithRemembered(ctx))
	assert.Equal(t, models.AuthStatusLoggedIn, f.state.Status.Get())
}

func TestLoginWithRemembered_NothingStored(t *testing.T) {
	f := newTestAuth(t, "master-secret")

	assert.ErrorIs(t, f.auth.LoginWithRemembered(context.Background()), session.ErrNoRememberedCredentials)
}

// ── VerifyTwoFactor ──────────────────────────────────────────────────────────

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name    string
		method  models.TwoFactorMethod
		code    string
		want    string
		wantErr error
	}{
		{name: "totp", method: models.TwoFactorTOTP, code: "123456", want: "123456"},
		{name: "totp with spaces", method: models.TwoFactorTOTP, code: " 123 456 ", want: "123456"},
		{name: "totp too short", method: models.TwoFactorTOTP, code: "12345", wantErr: ErrInvalidCode},
		{name: "email letters", method: models.TwoFactorEmailOTP, code: "12a456", wantErr: ErrInvalidCode},
		{name: "recovery with dash", method: models.TwoFactorOTP, code: "abcd-1234", want: "abcd1234"},
		{name: "recovery too long", method: models.TwoFactorOTP, code: "abcd12345", wantErr: ErrInvalidCode},
		{name: "unknown method", method: "sms", code: "123456", wantErr: ErrUnsupportedTwoFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeCode(tt.method, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyTwoFactor_MalformedCodeNeverSent(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)

	assert.ErrorIs(t, f.auth.VerifyTwoFactor(context.Background(), models.TwoFactorTOTP, "12"), ErrInvalidCode)
}

func TestVerifyTwoFactor_NoCookie(t *testing.T) {
	f := newTestAuth(t, "")

	assert.ErrorIs(t, f.auth.VerifyTwoFactor(context.Background(), models.TwoFactorTOTP, "123456"), ErrLoginExpired)
}

func TestVerifyTwoFactor_Rejected(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	ctx := context.Background()

	gomock.InOrder(
		f.platform.EXPECT().VerifyTwoFactor(gomock.Any(), models.TwoFactorTOTP, "123456").Return(false, nil),
		f.platform.EXPECT().VerifyTwoFactor(gomock.Any(), models.TwoFactorTOTP, "654321").
			Return(false, adapter.NewHTTPError(http.StatusBadRequest, "bad code")),
	)

	assert.ErrorIs(t, f.auth.VerifyTwoFactor(ctx, models.TwoFactorTOTP, "123456"), ErrInvalidCode)
	assert.ErrorIs(t, f.auth.VerifyTwoFactor(ctx, models.TwoFactorTOTP, "654321"), ErrInvalidCode)
	assert.NotEqual(t, models.AuthStatusLoggedIn, f.state.Status.Get())
}

func TestVerifyTwoFactor_CompletesPendingLogin(t *testing.T) {
	f := newTestAuth(t, "master-secret")
	ctx := context.Background()

	f.platform.EXPECT().Login(gomock.Any(), "alice", "secret").
		DoAndReturn(func(ctx context.Context, _, _ string) (models.AuthUserResponse, error) {
			// платформа выставляет cookie ещё до второго фактора
			_ = f.credentials.StoreCookies(ctx, []*http.Cookie{{Name: session.AuthCookieName, Value: "authcookie_2"}})
			return models.AuthUserResponse{RequiresTwoFactorAuth: []string{"emailOtp"}}, nil
		})
	f.platform.EXPECT().VerifyTwoFactor(gomock.Any(), models.TwoFactorEmailOTP, "123456").Return(true, nil)
	f.platform.EXPECT().GetCurrentUser(gomock.Any()).Return(models.AuthUserResponse{User: me()}, nil)

	err := f.auth.Login(ctx, "alice", "secret", true)
	require.ErrorIs(t, err, ErrTwoFactorRequiredEmail)

	require.NoError(t, f.auth.VerifyTwoFactor(ctx, models.TwoFactorEmailOTP, "123 456"))
	assert.Equal(t, models.AuthStatusLoggedIn, f.state.Status.Get())

	// запомненный логин сохранён только после второго фактора
	creds, err := f.credentials.Recall(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.Username)
}

// ── Logout ───────────────────────────────────────────────────────────────────

func TestLogout_ClearsEverything(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	f.state.SetLoggedIn(me())
	ctx := context.Background()

	f.api.friends.Set(ctx, []models.LimitedUser{{ID: "usr_1"}})
	f.platform.EXPECT().Logout(gomock.Any()).Return(nil)

	require.NoError(t, f.auth.Logout(ctx))
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
	assert.Nil(t, f.state.User.Get())
	assert.Empty(t, f.credentials.AuthToken(ctx))

	_, ok := f.api.friends.Get(ctx)
	assert.False(t, ok)
}

func TestLogout_RemoteFailureStillLogsOut(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	f.state.SetLoggedIn(me())

	f.platform.EXPECT().Logout(gomock.Any()).Return(errors.New("connection reset"))

	require.NoError(t, f.auth.Logout(context.Background()))
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
}

// ── Push updates and polling ─────────────────────────────────────────────────

func TestHandleUserUpdate_PatchesCurrentUser(t *testing.T) {
	f := newTestAuth(t, "")
	f.state.SetLoggedIn(me())

	content := json.RawMessage(`{"userId":"usr_me","user":{"status":"busy","statusDescription":"working"}}`)
	require.NoError(t, f.auth.HandleUserUpdate(context.Background(), content))

	user := f.state.User.Get()
	assert.Equal(t, models.StatusBusy, user.Status)
	assert.Equal(t, "working", user.StatusDescription)
	assert.Equal(t, "Me", user.DisplayName)
}

func TestHandleUserUpdate_OtherUserIgnored(t *testing.T) {
	f := newTestAuth(t, "")
	f.state.SetLoggedIn(me())

	content := json.RawMessage(`{"userId":"usr_other","user":{"status":"busy"}}`)
	require.NoError(t, f.auth.HandleUserUpdate(context.Background(), content))
	assert.Equal(t, models.StatusActive, f.state.User.Get().Status)
}

func TestPollIfStale(t *testing.T) {
	f := newTestAuth(t, "")
	ctx := context.Background()
	clock := &stubClock{now: time.Now()}
	f.auth.clock = clock

	// не залогинен, ничего не делаем
	polled, err := f.auth.PollIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, polled)

	f.state.SetLoggedIn(me())
	f.api.ReplaceCurrentUser(ctx, me())

	// свежая загрузка, опрос не нужен
	polled, err = f.auth.PollIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, polled)

	// через две минуты без push-событий данные устарели
	clock.now = clock.now.Add(2 * time.Minute)
	f.platform.EXPECT().GetCurrentUser(gomock.Any()).Return(models.AuthUserResponse{User: me()}, nil)

	polled, err = f.auth.PollIfStale(ctx)
	require.NoError(t, err)
	assert.True(t, polled)
}

func TestPollIfStale_RecentPushSkips(t *testing.T) {
	f := newTestAuth(t, "")
	ctx := context.Background()
	clock := &stubClock{now: time.Now().Add(time.Hour)}
	f.auth.clock = clock
	f.state.SetLoggedIn(me())

	require.NoError(t, f.auth.HandleUserUpdate(ctx, json.RawMessage(`{"userId":"usr_me","user":{}}`)))

	polled, err := f.auth.PollIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, polled)
}

func TestPollIfStale_ExpiredSessionLogsOut(t *testing.T) {
	f := newTestAuth(t, "")
	f.seedCookie(t)
	ctx := context.Background()
	f.auth.clock = &stubClock{now: time.Now().Add(time.Hour)}
	f.state.SetLoggedIn(me())

	f.platform.EXPECT().GetCurrentUser(gomock.Any()).
		Return(models.AuthUserResponse{}, unauthorized("Missing Credentials"))

	polled, err := f.auth.PollIfStale(ctx)
	assert.True(t, polled)
	assert.ErrorIs(t, err, ErrLoginExpired)
	assert.Equal(t, models.AuthStatusLoggedOut, f.state.Status.Get())
	assert.Empty(t, f.credentials.AuthToken(ctx))
}

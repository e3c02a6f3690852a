package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-vrc-link/internal/adapter"
	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
	"github.com/MKhiriev/go-vrc-link/models"
)

const defaultStaleAfter = 2 * time.Minute

var (
	numericCodePattern  = regexp.MustCompile(`^[0-9]{6}$`)
	recoveryCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{8}$`)
)

// authService is the concrete implementation of AuthService.
// It owns the transitions of session.State and keeps the stored cookies in
// step with them.
type authService struct {
	// platform is used directly for the calls made before the session is
	// LOGGED_IN; the API service refuses them.
	platform adapter.PlatformAdapter

	// queue paces the login, verification and logout calls together with
	// everything else.
	queue *queue.TaskQueue

	state       *session.State
	credentials *session.CredentialStore
	api         APIService

	// staleAfter is how old both the last push and the last fetch must be
	// before PollIfStale fetches again.
	staleAfter time.Duration

	clock  utils.Clock
	logger *logger.Logger

	mu sync.Mutex
	// pendingRemember holds credentials to remember once a login that is
	// waiting for its second factor completes.
	pendingRemember *models.RememberedCredentials

	// unix nanoseconds of the last user-update push
	lastPush atomic.Int64
}

// NewAuthService constructs an AuthService. api must share state with the
// returned service.
func NewAuthService(
	platform adapter.PlatformAdapter,
	q *queue.TaskQueue,
	state *session.State,
	credentials *session.CredentialStore,
	api APIService,
	workersCfg config.Workers,
	log *logger.Logger,
) AuthService {
	staleAfter := workersCfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}

	return &authService{
		platform:    platform,
		queue:       q,
		state:       state,
		credentials: credentials,
		api:         api,
		staleAfter:  staleAfter,
		clock:       utils.SystemClock{},
		logger:      log.Component("auth"),
	}
}

// Init restores the previous session. Without a stored auth cookie it simply
// moves to LOGGED_OUT. A platform that cannot be reached leaves the cookies
// in place so the next Init can try again; any answer from the platform
// other than a user invalidates them.
//
// Init only acts in PRE_INIT.
func (a *authService) Init(ctx context.Context) error {
	if a.state.Status.Get() != models.AuthStatusPreInit {
		return nil
	}

	if err := a.credentials.Load(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("stored credentials unreadable, starting without session")
	}

	if a.credentials.AuthToken(ctx) == "" {
		a.state.SetLoggedOut()
		return nil
	}

	resp, err := queue.Do(ctx, a.queue, TypeGetCurrentUser, false, a.platform.GetCurrentUser)
	switch {
	case err != nil && isTransportFailure(err):
		a.logger.Warn().Err(err).Msg("session restore failed, keeping cookies")
		a.state.SetLoggedOut()
		return mapAdapterError(err)

	case err != nil:
		a.logger.Info().Err(err).Msg("stored session rejected")
		a.dropSession(ctx)
		return mapAdapterError(err)

	case resp.User == nil:
		// a session that still needs its second factor cannot be resumed
		a.logger.Info().Strs("methods", resp.RequiresTwoFactorAuth).Msg("stored session awaits two-factor verification")
		a.dropSession(ctx)
		return ErrLoginExpired
	}

	a.completeLogin(ctx, resp.User, nil)
	a.logger.Info().Str("user_id", resp.User.ID).Msg("session restored")
	return nil
}

func (a *authService) Login(ctx context.Context, username, password string, remember bool) error {
	if a.state.IsLoggedIn() {
		return ErrAlreadyLoggedIn
	}

	resp, err := queue.Do(ctx, a.queue, TypeLogin, false, func(ctx context.Context) (models.AuthUserResponse, error) {
		return a.platform.Login(ctx, username, password)
	})
	if err != nil {
		a.leavePreInit()
		return mapAdapterError(err)
	}

	var rememberCreds *models.RememberedCredentials
	if remember {
		rememberCreds = &models.RememberedCredentials{Username: username, Password: password}
	}

	if resp.User == nil {
		methods := parseTwoFactorMethods(resp.RequiresTwoFactorAuth)
		if len(methods) == 0 {
			a.leavePreInit()
			return fmt.Errorf("%w: unknown two-factor methods %v", ErrUnsupportedTwoFactor, resp.RequiresTwoFactorAuth)
		}

		a.mu.Lock()
		a.pendingRemember = rememberCreds
		a.mu.Unlock()

		a.leavePreInit()
		return &TwoFactorRequiredError{Methods: methods}
	}

	a.completeLogin(ctx, resp.User, rememberCreds)
	a.logger.Info().Str("user_id", resp.User.ID).Msg("logged in")
	return nil
}

func (a *authService) LoginWithRemembered(ctx context.Context) error {
	creds, err := a.credentials.Recall(ctx)
	if err != nil {
		return err
	}
	return a.Login(ctx, creds.Username, creds.Password, false)
}

func (a *authService) ForgetRemembered(ctx context.Context) error {
	return a.credentials.Forget(ctx)
}

// VerifyTwoFactor submits the second factor of a login. The code is checked
// locally first; a malformed or rejected code returns ErrInvalidCode and the
// user may try again.
func (a *authService) VerifyTwoFactor(ctx context.Context, method models.TwoFactorMethod, code string) error {
	if a.state.IsLoggedIn() {
		return ErrAlreadyLoggedIn
	}

	code, err := normalizeCode(method, code)
	if err != nil {
		return err
	}

	if a.credentials.AuthToken(ctx) == "" {
		return ErrLoginExpired
	}

	verified, err := queue.Do(ctx, a.queue, TypeVerifyTwoFactor, false, func(ctx context.Context) (bool, error) {
		return a.platform.VerifyTwoFactor(ctx, method, code)
	})
	if err != nil {
		if errors.Is(err, adapter.ErrBadRequest) {
			return ErrInvalidCode
		}
		return mapAdapterError(err)
	}
	if !verified {
		return ErrInvalidCode
	}

	resp, err := queue.Do(ctx, a.queue, TypeGetCurrentUser, false, a.platform.GetCurrentUser)
	if err != nil {
		return mapAdapterError(err)
	}
	if resp.User == nil {
		return fmt.Errorf("%w: second factor still required after verification", ErrUnexpectedResponse)
	}

	a.mu.Lock()
	remember := a.pendingRemember
	a.pendingRemember = nil
	a.mu.Unlock()

	a.completeLogin(ctx, resp.User, remember)
	a.logger.Info().Str("user_id", resp.User.ID).Str("method", string(method)).Msg("logged in with second factor")
	return nil
}

// Logout tells the platform best-effort and always ends the local session.
func (a *authService) Logout(ctx context.Context) error {
	if a.credentials.AuthToken(ctx) != "" {
		_, err := queue.Do(ctx, a.queue, TypeLogout, false, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, a.platform.Logout(ctx)
		})
		if err != nil {
			a.logger.Warn().Err(err).Msg("remote logout failed")
		}
	}

	a.mu.Lock()
	a.pendingRemember = nil
	a.mu.Unlock()

	a.dropSession(ctx)
	a.logger.Info().Msg("logged out")
	return nil
}

func (a *authService) HandleUserUpdate(ctx context.Context, content json.RawMessage) error {
	var event models.UserUpdateEvent
	if err := json.Unmarshal(content, &event); err != nil {
		return fmt.Errorf("decode user update: %w", err)
	}

	user := a.state.User.Get()
	if !a.state.IsLoggedIn() || user == nil {
		return nil
	}
	if event.UserID != "" && event.UserID != user.ID {
		return nil
	}

	a.lastPush.Store(a.clock.Now().UnixNano())
	return a.api.PatchCurrentUser(ctx, event.User)
}

func (a *authService) PollIfStale(ctx context.Context) (bool, error) {
	if !a.state.IsLoggedIn() {
		return false, nil
	}

	now := a.clock.Now()
	lastPush := time.Unix(0, a.lastPush.Load())
	if now.Sub(lastPush) < a.staleAfter || now.Sub(a.api.LastUserFetch()) < a.staleAfter {
		return false, nil
	}

	_, err := a.api.GetCurrentUser(ctx, true)
	if errors.Is(err, ErrLoginExpired) {
		a.logger.Info().Msg("session expired on the platform")
		a.dropSession(ctx)
	}
	return true, err
}

// completeLogin publishes user and persists remember if set.
func (a *authService) completeLogin(ctx context.Context, user *models.CurrentUser, remember *models.RememberedCredentials) {
	a.api.ReplaceCurrentUser(ctx, user)
	a.state.SetLoggedIn(user)

	if remember == nil {
		return
	}
	if err := a.credentials.Remember(ctx, remember.Username, remember.Password); err != nil {
		a.logger.Warn().Err(err).Msg("failed to remember credentials")
	}
}

// dropSession forgets the cookies and everything cached for the user.
func (a *authService) dropSession(ctx context.Context) {
	if err := a.credentials.ClearCookies(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("failed to clear cookies")
	}
	a.api.ClearCaches(ctx)
	a.state.SetLoggedOut()
}

func (a *authService) leavePreInit() {
	if a.state.Status.Get() == models.AuthStatusPreInit {
		a.state.SetLoggedOut()
	}
}

func parseTwoFactorMethods(raw []string) []models.TwoFactorMethod {
	methods := make([]models.TwoFactorMethod, 0, len(raw))
	for _, r := range raw {
		switch m := models.TwoFactorMethod(strings.ToLower(r)); m {
		case models.TwoFactorTOTP, models.TwoFactorOTP, models.TwoFactorEmailOTP:
			methods = append(methods, m)
		}
	}
	return methods
}

// normalizeCode validates a code for method. Recovery codes are accepted
// with the dash and spaces they are usually displayed with.
func normalizeCode(method models.TwoFactorMethod, code string) (string, error) {
	code = strings.TrimSpace(code)

	switch method {
	case models.TwoFactorTOTP, models.TwoFactorEmailOTP:
		code = strings.ReplaceAll(code, " ", "")
		if !numericCodePattern.MatchString(code) {
			return "", ErrInvalidCode
		}
	case models.TwoFactorOTP:
		code = strings.NewReplacer("-", "", " ", "").Replace(code)
		if !recoveryCodePattern.MatchString(code) {
			return "", ErrInvalidCode
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTwoFactor, method)
	}

	return code, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-vrc-link/internal/adapter"
	"github.com/MKhiriev/go-vrc-link/internal/cache"
	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/store"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
	"github.com/MKhiriev/go-vrc-link/internal/validators"
	"github.com/MKhiriev/go-vrc-link/models"
)

const (
	PageSize          = 100
	DefaultMaxEntries = 5000

	defaultPageRetryDelay = 5 * time.Second
	defaultPageRetries    = 5
)

// Cache keys, also used as persistence keys.
const (
	CacheKeyCurrentUser    = "CURRENT_USER"
	CacheKeyFriends        = "FRIENDS"
	CacheKeyAvatars        = "AVATARS"
	CacheKeyGroups         = "GROUPS"
	CacheKeyInviteMessages = "INVITE_MESSAGES_"
)

const (
	currentUserTTL    = time.Hour
	friendsTTL        = 5 * time.Minute
	avatarsTTL        = 15 * time.Minute
	groupsTTL         = 15 * time.Minute
	inviteMessagesTTL = 15 * time.Minute
)

var inviteMessageTypes = []models.InviteMessageType{
	models.InviteMessageTypeMessage,
	models.InviteMessageTypeResponse,
	models.InviteMessageTypeRequest,
	models.InviteMessageTypeRequestResponse,
}

type apiService struct {
	platform adapter.PlatformAdapter
	queue    *queue.TaskQueue
	state    *session.State
	clock    utils.Clock
	logger   *logger.Logger
	metrics  *metrics.Collector

	// validator rejects malformed mutations before they are queued
	validator validators.Validator

	pageRetryDelay time.Duration
	pageRetries    int

	// maxEntries bounds every cached collection fetch; callers trim the
	// cached list to their own FetchOptions.Max
	maxEntries int

	flight singleflight.Group

	currentUser    *cache.CachedValue[*models.CurrentUser]
	friends        *cache.CachedValue[[]models.LimitedUser]
	avatars        *cache.CachedValue[[]models.Avatar]
	groups         *cache.CachedValue[[]models.Group]
	inviteMessages map[models.InviteMessageType]*cache.CachedValue[[]models.InviteMessage]

	// unix nanoseconds of the last good current-user fetch
	lastUserFetch atomic.Int64

	// serialises slot allocation per category
	slotMu sync.Mutex
}

// NewAPIService wires the API client. kv may be nil, in which case the
// caches live in memory only.
func NewAPIService(
	platform adapter.PlatformAdapter,
	q *queue.TaskQueue,
	state *session.State,
	kv store.KeyValueStore,
	adapterCfg config.Adapter,
	log *logger.Logger,
	m *metrics.Collector,
) APIService {
	s := &apiService{
		platform:       platform,
		queue:          q,
		state:          state,
		clock:          utils.SystemClock{},
		logger:         log.Component("api"),
		metrics:        m,
		pageRetryDelay: adapterCfg.PageRetryDelay,
		pageRetries:    adapterCfg.PageRetries,
		maxEntries:     DefaultMaxEntries,
		validator:      validators.NewRequestValidator(),
	}
	if s.pageRetryDelay <= 0 {
		s.pageRetryDelay = defaultPageRetryDelay
	}
	if s.pageRetries <= 0 {
		s.pageRetries = defaultPageRetries
	}

	opts := func(key string) []cache.Option {
		o := []cache.Option{cache.WithLogger(log), cache.WithMetrics(m, key)}
		if kv != nil {
			o = append(o, cache.WithPersistence(kv, key))
		}
		return o
	}

	s.currentUser = cache.New[*models.CurrentUser](currentUserTTL, opts(CacheKeyCurrentUser)...)
	s.friends = cache.New[[]models.LimitedUser](friendsTTL, opts(CacheKeyFriends)...)
	s.avatars = cache.New[[]models.Avatar](avatarsTTL, opts(CacheKeyAvatars)...)
	s.groups = cache.New[[]models.Group](groupsTTL, opts(CacheKeyGroups)...)
	s.inviteMessages = make(map[models.InviteMessageType]*cache.CachedValue[[]models.InviteMessage], len(inviteMessageTypes))
	for _, t := range inviteMessageTypes {
		key := CacheKeyInviteMessages + string(t)
		s.inviteMessages[t] = cache.New[[]models.InviteMessage](inviteMessagesTTL, opts(key)...)
	}

	return s
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *apiService) GetCurrentUser(ctx context.Context, force bool) (*models.CurrentUser, error) {
	if !s.state.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	user, err := cached(ctx, s, CacheKeyCurrentUser, s.currentUser, force, func(ctx context.Context) (*models.CurrentUser, error) {
		resp, err := queue.Do(ctx, s.queue, TypeGetCurrentUser, false, func(ctx context.Context) (models.AuthUserResponse, error) {
			return s.platform.GetCurrentUser(ctx)
		})
		if err != nil {
			return nil, mapAdapterError(err)
		}
		if resp.User == nil {
			return nil, ErrLoginExpired
		}

		raw, err := json.Marshal(resp.User)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		patched, err := s.applyUserPatch(raw)
		if err != nil {
			return nil, err
		}
		if patched == nil {
			// logged out while the request was in flight
			return nil, ErrNotLoggedIn
		}
		s.lastUserFetch.Store(s.clock.Now().UnixNano())
		return patched, nil
	})
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

func (s *apiService) ListFriends(ctx context.Context, opts FetchOptions) ([]models.LimitedUser, error) {
	if !s.state.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	all, err := cached(ctx, s, CacheKeyFriends, s.friends, opts.Force, func(ctx context.Context) ([]models.LimitedUser, error) {
		return paginate(ctx, s, TypeListFriends, s.maxEntries, s.platform.ListFriends)
	})
	if err != nil {
		return nil, err
	}
	return firstN(all, opts.Max), nil
}

func (s *apiService) ListAvatars(ctx context.Context, opts FetchOptions) ([]models.Avatar, error) {
	if !s.state.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	all, err := cached(ctx, s, CacheKeyAvatars, s.avatars, opts.Force, func(ctx context.Context) ([]models.Avatar, error) {
		return paginate(ctx, s, TypeListAvatars, s.maxEntries, s.platform.ListAvatars)
	})
	if err != nil {
		return nil, err
	}
	return firstN(all, opts.Max), nil
}

func (s *apiService) ListGroups(ctx context.Context, opts FetchOptions) ([]models.Group, error) {
	user := s.state.User.Get()
	if !s.state.IsLoggedIn() || user == nil {
		return nil, ErrNotLoggedIn
	}

	all, err := cached(ctx, s, CacheKeyGroups, s.groups, opts.Force, func(ctx context.Context) ([]models.Group, error) {
		return paginate(ctx, s, TypeListGroups, s.maxEntries, func(ctx context.Context, offset, n int) ([]models.Group, error) {
			return s.platform.ListGroups(ctx, user.ID, offset, n)
		})
	})
	if err != nil {
		return nil, err
	}
	return firstN(all, opts.Max), nil
}

func (s *apiService) ListInviteMessages(ctx context.Context, messageType models.InviteMessageType, force bool) ([]models.InviteMessage, error) {
	user := s.state.User.Get()
	if !s.state.IsLoggedIn() || user == nil {
		return nil, ErrNotLoggedIn
	}
	c, ok := s.inviteMessages[messageType]
	if !ok {
		return nil, fmt.Errorf("unknown invite message type %q", messageType)
	}

	return cached(ctx, s, CacheKeyInviteMessages+string(messageType), c, force, func(ctx context.Context) ([]models.InviteMessage, error) {
		messages, err := queue.Do(ctx, s.queue, TypeListInviteMessages, false, func(ctx context.Context) ([]models.InviteMessage, error) {
			return s.platform.ListInviteMessages(ctx, user.ID, messageType)
		})
		return messages, mapAdapterError(err)
	})
}

// ── Mutations ────────────────────────────────────────────────────────────────

func (s *apiService) UpdateStatus(ctx context.Context, status models.UserStatus, description *string) error {
	user := s.state.User.Get()
	if !s.state.IsLoggedIn() || user == nil {
		return ErrNotLoggedIn
	}

	req := models.StatusUpdateRequest{Status: status, StatusDescription: description}
	if err := s.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	// a newer status change supersedes one still waiting in the queue
	raw, err := queue.Do(ctx, s.queue, TypeUpdateStatus, true, func(ctx context.Context) (json.RawMessage, error) {
		return s.platform.UpdateStatus(ctx, user.ID, req)
	})
	if errors.Is(err, queue.ErrTaskReplaced) {
		s.logger.Debug().Str("status", string(status)).Msg("status update superseded")
		return nil
	}
	if err != nil {
		return mapAdapterError(err)
	}

	return s.PatchCurrentUser(ctx, raw)
}

func (s *apiService) SelectAvatar(ctx context.Context, avatarID string) error {
	if !s.state.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	raw, err := queue.Do(ctx, s.queue, TypeSelectAvatar, false, func(ctx context.Context) (json.RawMessage, error) {
		return s.platform.SelectAvatar(ctx, avatarID)
	})
	if err != nil {
		return mapAdapterError(err)
	}

	return s.PatchCurrentUser(ctx, raw)
}

func (s *apiService) InviteUser(ctx context.Context, userID, instanceID, message string) error {
	if !s.state.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	req := models.InviteRequest{InstanceID: instanceID}
	if err := s.validator.Validate(ctx, req, validators.FieldInstanceID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.MessageSlot = s.slotFor(ctx, models.InviteMessageTypeMessage, message)

	_, err := queue.Do(ctx, s.queue, TypeInviteUser, false, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.platform.Invite(ctx, userID, req)
	})
	return mapAdapterError(err)
}

func (s *apiService) RequestInvite(ctx context.Context, userID, message string) error {
	if !s.state.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	req := models.RequestInviteRequest{}
	req.MessageSlot = s.slotFor(ctx, models.InviteMessageTypeRequest, message)

	_, err := queue.Do(ctx, s.queue, TypeRequestInvite, false, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.platform.RequestInvite(ctx, userID, req)
	})
	return mapAdapterError(err)
}

// slotFor allocates a slot for message. Allocation problems never fail the
// invite itself; it is sent without a message instead.
func (s *apiService) slotFor(ctx context.Context, messageType models.InviteMessageType, message string) *int {
	if message == "" {
		return nil
	}

	slot, ok, err := s.AllocateMessageSlot(ctx, messageType, message)
	if err != nil {
		s.logger.Warn().Err(err).Str("message_type", string(messageType)).Msg("message slot allocation failed, sending without message")
		return nil
	}
	if !ok {
		s.logger.Info().Str("message_type", string(messageType)).Msg("no message slot available, sending without message")
		return nil
	}
	return &slot
}

func (s *apiService) AllocateMessageSlot(ctx context.Context, messageType models.InviteMessageType, text string) (int, bool, error) {
	user := s.state.User.Get()
	if !s.state.IsLoggedIn() || user == nil {
		return 0, false, ErrNotLoggedIn
	}

	draft := models.InviteMessage{MessageType: messageType, Message: text}
	if err := s.validator.Validate(ctx, draft, validators.FieldMessageType, validators.FieldMessage); err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	s.slotMu.Lock()
	defer s.slotMu.Unlock()

	slots, err := s.ListInviteMessages(ctx, messageType, false)
	if err != nil {
		return 0, false, err
	}

	target, reuse := pickSlot(slots, text)
	if reuse {
		return target, true, nil
	}
	if target < 0 {
		return 0, false, nil
	}

	updated, err := queue.Do(ctx, s.queue, TypeUpdateInviteMessage, false, func(ctx context.Context) ([]models.InviteMessage, error) {
		return s.platform.UpdateInviteMessage(ctx, user.ID, messageType, target, text)
	})
	if err != nil {
		return 0, false, mapAdapterError(err)
	}

	s.inviteMessages[messageType].Set(ctx, updated)
	return target, true, nil
}

// pickSlot returns the slot already holding text (reuse == true), else the
// highest-numbered slot the server allows to be overwritten, else -1.
func pickSlot(slots []models.InviteMessage, text string) (slot int, reuse bool) {
	for _, m := range slots {
		if m.Message == text {
			return m.Slot, true
		}
	}

	slot = -1
	for _, m := range slots {
		if m.Writable() && m.Slot > slot {
			slot = m.Slot
		}
	}
	return slot, false
}

// ── Local state ──────────────────────────────────────────────────────────────

func (s *apiService) ReplaceCurrentUser(ctx context.Context, user *models.CurrentUser) {
	s.currentUser.Set(ctx, user.Clone())
	s.lastUserFetch.Store(s.clock.Now().UnixNano())
}

func (s *apiService) PatchCurrentUser(ctx context.Context, patch json.RawMessage) error {
	patched, err := s.applyUserPatch(patch)
	if err != nil {
		return err
	}
	if patched != nil {
		s.currentUser.Set(ctx, patched)
	}
	return nil
}

func (s *apiService) applyUserPatch(patch json.RawMessage) (*models.CurrentUser, error) {
	var patchErr error
	patched := s.state.PatchUser(func(u *models.CurrentUser) {
		patchErr = u.ApplyPatch(patch)
	})
	if patchErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, patchErr)
	}
	return patched, nil
}

func (s *apiService) HandleGroupMemberUpdate(ctx context.Context, content json.RawMessage) error {
	var update models.GroupMemberUpdate
	if err := json.Unmarshal(content, &update); err != nil {
		return fmt.Errorf("decode group member update: %w", err)
	}

	groups, ok := s.groups.Get(ctx)
	if !ok {
		return nil
	}

	member := update.Member
	if user := s.state.User.Get(); user != nil && member.UserID != "" && member.UserID != user.ID {
		return nil
	}

	patched := make([]models.Group, len(groups))
	copy(patched, groups)
	found := false
	for i := range patched {
		if patched[i].GroupID == member.GroupID {
			patched[i].IsRepresenting = member.IsRepresenting
			found = true
		} else if member.IsRepresenting {
			// only one group can be represented at a time
			patched[i].IsRepresenting = false
		}
	}
	if !found {
		return nil
	}

	s.groups.Set(ctx, patched)
	return nil
}

func (s *apiService) ClearCaches(ctx context.Context) {
	s.currentUser.Clear(ctx)
	s.friends.Clear(ctx)
	s.avatars.Clear(ctx)
	s.groups.Clear(ctx)
	for _, c := range s.inviteMessages {
		c.Clear(ctx)
	}
	s.lastUserFetch.Store(0)
}

func (s *apiService) LastUserFetch() time.Time {
	n := s.lastUserFetch.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// cached serves c when possible and otherwise runs fetch, coalescing
// concurrent fetches under key. The fetch outlives a cancelled caller so the
// other waiters still get the result.
func cached[T any](ctx context.Context, s *apiService, key string, c *cache.CachedValue[T], force bool, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if err := c.WaitForInitialisation(ctx); err != nil {
		return zero, err
	}
	if !force {
		if v, ok := c.Get(ctx); ok {
			return v, nil
		}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.Set(fetchCtx, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, queue.ErrUnexpectedResultType
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// paginate fetches pages of PageSize at increasing offsets until a page comes
// back short or empty or max entries were collected. Each page is its own
// queued task.
//
// A short page is taken as the end of the collection. An endpoint that
// filters entries out of a page before answering would end the fetch early.
// The friends, avatars and groups endpoints only return short pages at the
// end.
func paginate[T any](ctx context.Context, s *apiService, typeID string, max int, fetch func(ctx context.Context, offset, n int) ([]T, error)) ([]T, error) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	var all []T
	for offset := 0; offset < max; {
		n := min(PageSize, max-offset)

		page, err := fetchPage(ctx, s, typeID, offset, n, fetch)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < n {
			break
		}
		offset += len(page)
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}

// fetchPage retries a throttled page after pageRetryDelay, up to pageRetries
// times, then gives up with ErrRateLimitExhausted.
func fetchPage[T any](ctx context.Context, s *apiService, typeID string, offset, n int, fetch func(ctx context.Context, offset, n int) ([]T, error)) ([]T, error) {
	for attempt := 0; ; attempt++ {
		page, err := queue.Do(ctx, s.queue, typeID, false, func(ctx context.Context) ([]T, error) {
			return fetch(ctx, offset, n)
		})
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, adapter.ErrTooManyRequests) {
			return nil, mapAdapterError(err)
		}
		if attempt >= s.pageRetries {
			return nil, fmt.Errorf("%w: %s at offset %d", ErrRateLimitExhausted, typeID, offset)
		}

		s.metrics.PageRetried(typeID)
		s.logger.Warn().
			Str("type_id", typeID).
			Int("offset", offset).
			Int("attempt", attempt+1).
			Msg("page throttled, retrying")

		if err = sleep(ctx, s.pageRetryDelay); err != nil {
			return nil, err
		}
	}
}

// firstN trims list to max entries. max <= 0 keeps the whole list. The
// result has no spare capacity so appends never write into the cached array.
func firstN[T any](list []T, max int) []T {
	if max <= 0 || len(list) <= max {
		return list
	}
	return list[:max:max]
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

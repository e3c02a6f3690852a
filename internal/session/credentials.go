// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session keeps everything that identifies the signed-in user across
// restarts: the platform cookies, the encrypted remembered login and the
// shared auth [State].
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-vrc-link/internal/crypto"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/store"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
	"github.com/MKhiriev/go-vrc-link/models"
)

const (
	// CredentialsKey is the key-value store key of the credentials blob.
	CredentialsKey = "SESSION_CREDENTIALS"

	AuthCookieName      = "auth"
	TwoFactorCookieName = "twoFactorAuth"
)

// CredentialStore owns the persisted [models.SessionCredentials]. All
// methods are safe for concurrent use.
type CredentialStore struct {
	store        store.KeyValueStore
	keys         crypto.KeyChainService
	masterSecret string
	clock        utils.Clock
	log          *logger.Logger

	mu     sync.Mutex
	loaded bool
	creds  models.SessionCredentials

	// derived master key, cached per salt since Argon2id is expensive
	masterKey     []byte
	masterKeySalt string
}

// Option configures a CredentialStore.
type Option func(*CredentialStore)

func WithClock(c utils.Clock) Option {
	return func(s *CredentialStore) { s.clock = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *CredentialStore) { s.log = l.Component("session") }
}

// NewCredentialStore creates a store backed by kv. masterSecret protects the
// remembered login; with an empty secret remembering is disabled.
func NewCredentialStore(kv store.KeyValueStore, keys crypto.KeyChainService, masterSecret string, opts ...Option) *CredentialStore {
	s := &CredentialStore{
		store:        kv,
		keys:         keys,
		masterSecret: masterSecret,
		clock:        utils.SystemClock{},
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the credentials blob from disk. Subsequent calls are no-ops.
// Every other method loads lazily, so calling Load is only needed to observe
// the error.
func (s *CredentialStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// Cookies returns the non-expired session cookies. Expired ones are cleared
// and the change is persisted.
func (s *CredentialStore) Cookies(ctx context.Context) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	s.pruneLocked(ctx)

	var cookies []*http.Cookie
	if s.creds.AuthCookie != "" {
		cookies = append(cookies, &http.Cookie{Name: AuthCookieName, Value: s.creds.AuthCookie})
	}
	if s.creds.TwoFactorCookie != "" {
		cookies = append(cookies, &http.Cookie{Name: TwoFactorCookieName, Value: s.creds.TwoFactorCookie})
	}
	return cookies
}

// CookieHeader renders Cookies as a Cookie request header value.
func (s *CredentialStore) CookieHeader(ctx context.Context) string {
	cookies := s.Cookies(ctx)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// AuthToken returns the non-expired auth cookie value, or "".
func (s *CredentialStore) AuthToken(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	s.pruneLocked(ctx)
	return s.creds.AuthCookie
}

// StoreCookies ingests Set-Cookie values from a platform response. Only the
// auth and two-factor cookies are kept. A cookie with an empty value, a
// negative Max-Age or an Expires in the past clears the stored one.
func (s *CredentialStore) StoreCookies(ctx context.Context, cookies []*http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)

	now := s.clock.Now()
	changed := false
	for _, c := range cookies {
		var value *string
		var expiry *time.Time
		switch c.Name {
		case AuthCookieName:
			value, expiry = &s.creds.AuthCookie, &s.creds.AuthCookieExpiry
		case TwoFactorCookieName:
			value, expiry = &s.creds.TwoFactorCookie, &s.creds.TwoFactorCookieExpiry
		default:
			continue
		}

		exp, alive := cookieExpiry(c, now)
		if !alive {
			*value, *expiry = "", time.Time{}
		} else {
			*value, *expiry = c.Value, exp
		}
		changed = true
	}

	if !changed {
		return nil
	}
	return s.persistLocked(ctx)
}

// ClearCookies drops both cookies. Remembered credentials are kept.
func (s *CredentialStore) ClearCookies(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)

	s.creds.AuthCookie, s.creds.AuthCookieExpiry = "", time.Time{}
	s.creds.TwoFactorCookie, s.creds.TwoFactorCookieExpiry = "", time.Time{}
	return s.persistLocked(ctx)
}

// Remember encrypts and persists the login so it can be recalled after a
// restart.
func (s *CredentialStore) Remember(ctx context.Context, username, password string) error {
	if s.masterSecret == "" {
		return ErrNoMasterKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)

	var storageKey []byte
	var err error
	if s.creds.WrappedStorageKey != "" {
		if storageKey, err = s.storageKeyLocked(); err != nil {
			s.log.Warn().Err(err).Msg("storage key unusable, cycling")
		}
	}
	if storageKey == nil {
		if storageKey, err = s.cycleKeyLocked(); err != nil {
			return err
		}
	}

	encrypted, err := s.keys.EncryptData(models.RememberedCredentials{
		Username: username,
		Password: password,
	}, storageKey)
	if err != nil {
		return fmt.Errorf("encrypting credentials: %w", err)
	}

	s.creds.EncryptedRememberedCredentials = encrypted
	return s.persistLocked(ctx)
}

// Recall returns the remembered login. When the storage key or the
// ciphertext cannot be decrypted the key is cycled, the remembered login is
// discarded and ErrNoRememberedCredentials is returned.
func (s *CredentialStore) Recall(ctx context.Context) (models.RememberedCredentials, error) {
	var out models.RememberedCredentials
	if s.masterSecret == "" {
		return out, ErrNoRememberedCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)

	if s.creds.EncryptedRememberedCredentials == "" {
		return out, ErrNoRememberedCredentials
	}

	storageKey, err := s.storageKeyLocked()
	if err == nil {
		err = s.keys.DecryptData(s.creds.EncryptedRememberedCredentials, storageKey, &out)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("remembered credentials unreadable, cycling storage key")
		if _, err = s.cycleKeyLocked(); err != nil {
			return models.RememberedCredentials{}, err
		}
		if err = s.persistLocked(ctx); err != nil {
			s.log.Error().Err(err).Msg("failed to persist cycled storage key")
		}
		return models.RememberedCredentials{}, ErrNoRememberedCredentials
	}

	return out, nil
}

// Forget discards the remembered login. The storage key is kept.
func (s *CredentialStore) Forget(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)

	if s.creds.EncryptedRememberedCredentials == "" {
		return nil
	}
	s.creds.EncryptedRememberedCredentials = ""
	return s.persistLocked(ctx)
}

// Snapshot returns a copy of the current credentials blob.
func (s *CredentialStore) Snapshot(ctx context.Context) models.SessionCredentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked(ctx)
	return s.creds
}

func (s *CredentialStore) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	raw, ok, err := s.store.Get(ctx, CredentialsKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadingCredentials, err)
	}
	s.loaded = true
	if !ok {
		return nil
	}

	if err = json.Unmarshal(raw, &s.creds); err != nil {
		s.creds = models.SessionCredentials{}
		return fmt.Errorf("%w: %w", ErrLoadingCredentials, err)
	}
	return nil
}

func (s *CredentialStore) ensureLoadedLocked(ctx context.Context) {
	if err := s.loadLocked(ctx); err != nil {
		s.log.Warn().Err(err).Msg("starting with empty session credentials")
	}
}

func (s *CredentialStore) pruneLocked(ctx context.Context) {
	if !s.creds.PruneExpired(s.clock.Now()) {
		return
	}
	if err := s.persistLocked(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist pruned cookies")
	}
}

func (s *CredentialStore) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.creds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSavingCredentials, err)
	}
	if err = s.store.Set(ctx, CredentialsKey, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrSavingCredentials, err)
	}
	return nil
}

// storageKeyLocked unwraps the persisted storage key.
func (s *CredentialStore) storageKeyLocked() ([]byte, error) {
	if s.creds.WrappedStorageKey == "" || s.creds.StorageKeySalt == "" {
		return nil, crypto.ErrDecryption
	}

	wrapped, err := base64.StdEncoding.DecodeString(s.creds.WrappedStorageKey)
	if err != nil {
		return nil, fmt.Errorf("decode wrapped key: %w", err)
	}
	masterKey, err := s.masterKeyLocked(s.creds.StorageKeySalt)
	if err != nil {
		return nil, err
	}

	return s.keys.UnwrapKey(wrapped, masterKey)
}

// cycleKeyLocked replaces the storage key with a fresh one and drops
// everything the previous key protected. The caller persists.
func (s *CredentialStore) cycleKeyLocked() ([]byte, error) {
	salt, err := s.keys.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	storageKey, err := s.keys.GenerateStorageKey()
	if err != nil {
		return nil, fmt.Errorf("generating storage key: %w", err)
	}

	encodedSalt := base64.StdEncoding.EncodeToString(salt)
	masterKey, err := s.masterKeyLocked(encodedSalt)
	if err != nil {
		return nil, err
	}
	wrapped, err := s.keys.WrapKey(storageKey, masterKey)
	if err != nil {
		return nil, fmt.Errorf("wrapping storage key: %w", err)
	}

	s.creds.StorageKeySalt = encodedSalt
	s.creds.WrappedStorageKey = base64.StdEncoding.EncodeToString(wrapped)
	s.creds.EncryptedRememberedCredentials = ""
	return storageKey, nil
}

func (s *CredentialStore) masterKeyLocked(encodedSalt string) ([]byte, error) {
	if s.masterKey != nil && s.masterKeySalt == encodedSalt {
		return s.masterKey, nil
	}

	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}

	s.masterKey = s.keys.DeriveMasterKey(s.masterSecret, salt)
	s.masterKeySalt = encodedSalt
	return s.masterKey, nil
}

// cookieExpiry reports when c expires and whether it is still alive at now.
// A zero expiry means a session cookie.
func cookieExpiry(c *http.Cookie, now time.Time) (time.Time, bool) {
	if c.Value == "" || c.MaxAge < 0 {
		return time.Time{}, false
	}
	if c.MaxAge > 0 {
		return now.Add(time.Duration(c.MaxAge) * time.Second), true
	}
	if !c.Expires.IsZero() {
		if !c.Expires.After(now) {
			return time.Time{}, false
		}
		return c.Expires, true
	}
	return time.Time{}, true
}

// Package session holds the authenticated identity of the client. The Store is
// the only writer of the bearer credential and of the decoded user; both are
// mirrored to durable storage synchronously with every in-memory change.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/jobboard/internal/client/storage"
	"github.com/atinyakov/jobboard/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// State is the authentication state of the Store.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "ANONYMOUS"
	}
}

// ErrInvalidCredential is returned when a credential cannot be decoded into a user.
var ErrInvalidCredential = errors.New("invalid credential")

// AuthAPI is the part of the API gateway the Store depends on.
type AuthAPI interface {
	Login(ctx context.Context, in models.LoginInput) (models.LoginResponse, error)
	Register(ctx context.Context, in models.RegisterInput) error
}

// claims are the credential payload keys the client understands.
type claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the user from the middle segment of a three-segment
// credential. The signature is not verified; the server does that.
func Decode(token string) (models.User, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return models.User{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidCredential, len(parts))
	}
	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return models.User{}, fmt.Errorf("%w: decode payload: %v", ErrInvalidCredential, err)
	}
	var c claims
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.User{}, fmt.Errorf("%w: parse payload: %v", ErrInvalidCredential, err)
	}
	role, err := models.ParseRole(c.Role)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if c.UserID == 0 {
		return models.User{}, fmt.Errorf("%w: missing user_id", ErrInvalidCredential)
	}
	return models.User{ID: c.UserID, Role: role, Email: c.Email, Name: c.Name}, nil
}

// Store holds the credential and the user decoded from it.
type Store struct {
	api AuthAPI
	kv  storage.Store
	log *zap.Logger

	mu        sync.RWMutex
	token     string
	user      models.User
	loading   bool
	listeners []func(State)
}

// New returns a Store in the loading state. Call Hydrate to restore a
// persisted session.
func New(api AuthAPI, kv storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{api: api, kv: kv, log: log, loading: true}
}

// OnChange registers fn to be called after every state transition.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	state := s.stateLocked()
	ls := append([]func(State){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(state)
	}
}

func (s *Store) stateLocked() State {
	if s.token != "" {
		return Authenticated
	}
	return Anonymous
}

// Hydrate restores the session from storage. A credential that cannot be
// decoded is discarded together with the stored user.
func (s *Store) Hydrate(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.notify()
	}()

	token, ok, err := s.kv.Get(ctx, storage.KeyToken)
	if err != nil {
		s.log.Warn("failed to read stored credential", zap.Error(err))
		return
	}
	if !ok || token == "" {
		s.clear(ctx)
		return
	}
	user, err := Decode(token)
	if err != nil {
		s.log.Info("discarding stored credential", zap.Error(err))
		s.clear(ctx)
		return
	}
	if err := s.persistUser(ctx, user); err != nil {
		s.log.Warn("failed to store user", zap.Error(err))
	}
	s.set(token, user)
}

// Login authenticates against the API and establishes the session. API
// errors are returned unchanged.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, models.LoginInput{Email: email, Password: password})
	if err != nil {
		return err
	}
	user, err := Decode(resp.Token)
	if err != nil {
		s.clear(ctx)
		s.notify()
		return err
	}
	if err := s.kv.Set(ctx, storage.KeyToken, resp.Token); err != nil {
		s.clear(ctx)
		s.notify()
		return fmt.Errorf("persist credential: %w", err)
	}
	if err := s.persistUser(ctx, user); err != nil {
		s.clear(ctx)
		s.notify()
		return err
	}
	s.set(resp.Token, user)
	s.log.Info("logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	s.notify()
	return nil
}

// Register creates an account. It does not log the user in.
func (s *Store) Register(ctx context.Context, name, email, password string, role models.Role) error {
	return s.api.Register(ctx, models.RegisterInput{Name: name, Email: email, Password: password, Role: role})
}

// Logout forgets the session in memory and in storage. It never fails;
// storage errors are logged.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)
	s.notify()
}

func (s *Store) persistUser(ctx context.Context, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyUser, string(b)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (s *Store) set(token string, user models.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = models.User{}
	s.mu.Unlock()
	if err := s.kv.Delete(ctx, storage.KeyToken, storage.KeyUser); err != nil {
		s.log.Warn("failed to clear stored session", zap.Error(err))
	}
}

// CurrentUser returns the decoded user and whether a session exists.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

// IsAuthenticated reports whether a credential is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Loading reports whether Hydrate has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the held credential or an empty string.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

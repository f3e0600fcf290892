// Package session keeps the signed-in shopper's bearer token and identity in
// client storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/users"
	"github.com/novathreads/storefront-backend/pkg/client"
	"github.com/novathreads/storefront-backend/pkg/enums"
	"github.com/novathreads/storefront-backend/pkg/kv"
	"github.com/novathreads/storefront-backend/pkg/logger"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

var (
	ErrNotAuthenticated = errors.New("please log in first")
	ErrNotAdmin         = errors.New("admin privileges required")
)

type authAPI interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error)
	ProfileWithToken(ctx context.Context, token string) (*users.UserDTO, error)
}

// Holder is the client-side auth session. A session is either fully present
// (token and user) or absent.
type Holder struct {
	mu    sync.Mutex
	store kv.Store
	api   authAPI
	logg  *logger.Logger
}

// New builds a Holder persisting its token and user under store.
func New(store kv.Store, api authAPI, logg *logger.Logger) *Holder {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Holder{store: store, api: api, logg: logg}
}

// Register creates an account and keeps the returned session.
func (h *Holder) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	res, err := h.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return h.save(ctx, res)
}

// Login exchanges credentials for a session. A failed login leaves any
// existing session untouched.
func (h *Holder) Login(ctx context.Context, email, password string) (*users.UserDTO, error) {
	res, err := h.api.Login(ctx, auth.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, err
	}
	return h.save(ctx, res)
}

func (h *Holder) save(ctx context.Context, res *auth.AuthResponse) (*users.UserDTO, error) {
	if res == nil || res.Token == "" || res.User == nil {
		return nil, fmt.Errorf("auth response missing token or user")
	}
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.store.Set(ctx, TokenKey, []byte(res.Token)); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if err := h.store.Set(ctx, UserKey, raw); err != nil {
		_ = h.store.Delete(ctx, TokenKey)
		return nil, fmt.Errorf("persist user: %w", err)
	}
	return res.User, nil
}

// Logout removes both keys. Logging out twice is not an error.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clear(ctx)
}

func (h *Holder) clear(ctx context.Context) error {
	if err := h.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := h.store.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

// CurrentUser returns the stored identity. A missing token or an unreadable
// user record counts as logged out.
func (h *Holder) CurrentUser(ctx context.Context) (*users.UserDTO, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, user, err := h.load(ctx)
	return user, err
}

func (h *Holder) load(ctx context.Context) (string, *users.UserDTO, error) {
	token, err := h.store.Get(ctx, TokenKey)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && len(token) == 0) {
		return "", nil, ErrNotAuthenticated
	}
	if err != nil {
		return "", nil, err
	}

	raw, err := h.store.Get(ctx, UserKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil, ErrNotAuthenticated
	}
	if err != nil {
		return "", nil, err
	}
	var user users.UserDTO
	if err := json.Unmarshal(raw, &user); err != nil || user.Email == "" {
		h.logg.Warn(ctx, "session.user_corrupt")
		return "", nil, ErrNotAuthenticated
	}
	return string(token), &user, nil
}

// IsAuthenticated reports whether a complete session is stored.
func (h *Holder) IsAuthenticated(ctx context.Context) bool {
	_, err := h.CurrentUser(ctx)
	return err == nil
}

// IsAdmin reports whether the stored identity carries the admin role.
func (h *Holder) IsAdmin(ctx context.Context) bool {
	user, err := h.CurrentUser(ctx)
	return err == nil && user.Role == enums.UserRoleAdmin
}

// Token implements client.TokenSource. Without a session it returns an
// empty token so the client can refuse the call.
func (h *Holder) Token(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	token, _, err := h.load(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		return "", nil
	}
	return token, err
}

// RequireAdmin gates admin-only calls before they reach the network.
func (h *Holder) RequireAdmin(ctx context.Context) error {
	user, err := h.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user.Role != enums.UserRoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

// RefreshProfile re-reads the identity from the server. A rejected token
// ends the session.
func (h *Holder) RefreshProfile(ctx context.Context) (*users.UserDTO, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	token, _, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	user, err := h.api.ProfileWithToken(ctx, token)
	if err != nil {
		if client.StatusOf(err) == http.StatusUnauthorized {
			if clearErr := h.clear(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := h.store.Set(ctx, UserKey, raw); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	return user, nil
}
var _ client.TokenSource = (*Holder)(nil)

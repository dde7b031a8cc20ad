// Package service holds the caller-side logic around the API client:
// the persisted session, transaction form rules and dashboard totals.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var sessionTracer = otel.Tracer("service/session")

// Keys of the persisted session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationForm is what the user types on the sign-up screen.
type RegistrationForm struct {
	Username        string
	Email           string
	FullName        string
	Password        string
	ConfirmPassword string
}

// PasswordForm is what the user types to change their password.
type PasswordForm struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// TokenInfo is read from the credential's JWT claims without verifying the
// signature. Opaque is set when the credential is not a JWT.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	Expired   bool
	Opaque    bool
}

// SessionService keeps the credential and the user profile in durable
// storage and in the API client.
type SessionService struct {
	client port.SessionClient
	store  port.KeyValueStore
	logger *zap.Logger
	now    func() time.Time

	mu   sync.RWMutex
	user *domain.User
}

func NewSessionService(client port.SessionClient, store port.KeyValueStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads a previously persisted session into the client.
// It reports false when nothing was stored.
func (s *SessionService) Restore(ctx context.Context) (bool, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Restore")
	defer span.End()

	token, ok, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return false, nil
	}
	s.client.SetCredential(token)

	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return true, fmt.Errorf("load user: %w", err)
	}
	if ok {
		var user domain.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.Warn("session: stored user is unreadable, dropping it", zap.Error(err))
			_ = s.store.Delete(ctx, KeyUser)
		} else {
			s.setUser(&user)
		}
	}
	span.SetAttributes(attribute.Bool("session.has_user", s.CurrentUser() != nil))
	return true, nil
}

// Login authenticates, then persists and installs the returned credential.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Login")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	}

	resp, err := s.client.Login(ctx, domain.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}
	s.client.SetCredential(resp.Token)
	s.setUser(&resp.User)

	s.logger.Info("session: logged in", zap.Int("user_id", resp.User.ID), zap.String("username", resp.User.Username))
	return &resp.User, nil
}

// Register validates the sign-up form and creates the account. It does not
// log the user in.
func (s *SessionService) Register(ctx context.Context, form RegistrationForm) (*domain.User, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Register")
	defer span.End()

	if err := form.validate(); err != nil {
		return nil, err
	}
	return s.client.Register(ctx, domain.Registration{
		Username: strings.TrimSpace(form.Username),
		Password: form.Password,
		Email:    strings.TrimSpace(form.Email),
		FullName: strings.TrimSpace(form.FullName),
	})
}

func (f RegistrationForm) validate() error {
	switch {
	case strings.TrimSpace(f.Username) == "":
		return &domain.ErrValidation{Field: "username", Message: "required"}
	case strings.TrimSpace(f.Email) == "":
		return &domain.ErrValidation{Field: "email", Message: "required"}
	case f.Password == "":
		return &domain.ErrValidation{Field: "password", Message: "required"}
	case f.ConfirmPassword == "":
		return &domain.ErrValidation{Field: "confirm_password", Message: "required"}
	case len([]rune(strings.TrimSpace(f.Username))) < minUsernameLen:
		return &domain.ErrValidation{Field: "username", Message: fmt.Sprintf("must have at least %d characters", minUsernameLen)}
	case !emailPattern.MatchString(strings.TrimSpace(f.Email)):
		return &domain.ErrValidation{Field: "email", Message: "invalid format"}
	case len(f.Password) < minPasswordLen:
		return &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("must have at least %d characters", minPasswordLen)}
	case f.Password != f.ConfirmPassword:
		return &domain.ErrValidation{Field: "confirm_password", Message: "passwords do not match"}
	}
	return nil
}

// RequestPasswordReset starts the forgot-password flow for email.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) (*domain.Message, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid format"}
	}
	return s.client.RequestPasswordReset(ctx, domain.PasswordResetRequest{Email: email})
}

func (s *SessionService) ChangePassword(ctx context.Context, form PasswordForm) (*domain.Message, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.ChangePassword")
	defer span.End()

	if !s.LoggedIn() {
		return nil, &domain.ErrNoSession{}
	}
	switch {
	case form.CurrentPassword == "":
		return nil, &domain.ErrValidation{Field: "current_password", Message: "required"}
	case form.NewPassword != form.ConfirmPassword:
		return nil, &domain.ErrValidation{Field: "confirm_password", Message: "passwords do not match"}
	case len(form.NewPassword) < minPasswordLen:
		return nil, &domain.ErrValidation{Field: "new_password", Message: fmt.Sprintf("must have at least %d characters", minPasswordLen)}
	}
	return s.client.ChangePassword(ctx, domain.PasswordChange{
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
	})
}

// UpdateProfile saves the profile remotely and re-persists the returned user.
func (s *SessionService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.UpdateProfile")
	defer span.End()

	if !s.LoggedIn() {
		return nil, &domain.ErrNoSession{}
	}
	update.Email = strings.TrimSpace(update.Email)
	update.FullName = strings.TrimSpace(update.FullName)
	if update.Email != "" && !emailPattern.MatchString(update.Email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid format"}
	}

	user, err := s.client.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	if err := s.persistUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RefreshUser reloads the logged-in user's profile from /users/{id} and
// re-persists it. It needs a stored user to know the id.
func (s *SessionService) RefreshUser(ctx context.Context) (*domain.User, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.RefreshUser")
	defer span.End()

	current := s.CurrentUser()
	if !s.LoggedIn() || current == nil {
		return nil, &domain.ErrNoSession{}
	}
	span.SetAttributes(attribute.Int("user.id", current.ID))

	user, err := s.client.GetUser(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	if err := s.persistUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SessionService) persistUser(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.setUser(user)
	return nil
}

// Logout forgets the credential everywhere, including the cached data.
func (s *SessionService) Logout(ctx context.Context) error {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Logout")
	defer span.End()

	s.client.SetCredential("")
	s.client.ClearCache()
	s.setUser(nil)

	if err := s.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("session: logged out")
	return nil
}

func (s *SessionService) LoggedIn() bool {
	return s.client.Credential() != ""
}

// CurrentUser returns the persisted profile, or nil.
func (s *SessionService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// TokenInfo decodes the current credential's claims. The signature is not
// checked; only the backend can do that.
func (s *SessionService) TokenInfo() (TokenInfo, error) {
	token := s.client.Credential()
	if token == "" {
		return TokenInfo{}, &domain.ErrNoSession{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Opaque: true}, nil
	}

	var info TokenInfo
	info.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = !s.now().Before(exp.Time)
	}
	return info, nil
}

func (s *SessionService) persist(ctx context.Context, token string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (s *SessionService) setUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

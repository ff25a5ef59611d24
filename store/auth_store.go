package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"homesage_client/api"
	"homesage_client/authorization"
	"homesage_client/domain"
)

// Notifier surfaces blocking user-facing messages (the alert dialogs of
// the web client). The default implementation only logs.
type Notifier interface {
	Notify(message string)
}

type logNotifier struct {
	logger *logrus.Logger
}

func (n logNotifier) Notify(message string) {
	n.logger.Infoln(message)
}

// AuthStore tracks the authentication session: a flag, a role and the
// bearer token behind them. Every transition runs through the backend;
// auth failures never propagate past this boundary, they only degrade
// the state to logged-out.
type AuthStore struct {
	mu       sync.RWMutex
	client   *api.Client
	logger   *logrus.Logger
	tracer   trace.Tracer
	notifier Notifier

	session domain.Session
}

func NewAuthStore(client *api.Client, logger *logrus.Logger, tracer trace.Tracer, notifier Notifier) *AuthStore {
	if notifier == nil {
		notifier = logNotifier{logger: logger}
	}
	return &AuthStore{
		client:   client,
		logger:   logger,
		tracer:   tracer,
		notifier: notifier,
	}
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated
}

func (s *AuthStore) UserRole() domain.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Role
}

// Session returns a copy for use as an explicit call credential.
func (s *AuthStore) Session() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session := s.session
	return &session
}

// CheckAuthStatus renews the session through the refresh endpoint. Runs
// on app load and before every protected navigation. Failures are
// swallowed and reflected only in state.
func (s *AuthStore) CheckAuthStatus(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "AuthStore.CheckAuthStatus")
	defer span.End()

	header, err := s.client.Refresh(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Infof("AuthStore.CheckAuthStatus : refresh failed: %s", err)
		s.clearSession()
		return
	}

	s.applyToken(header)
}

func (s *AuthStore) Login(ctx context.Context, credentials *domain.Credentials) {
	ctx, span := s.tracer.Start(ctx, "AuthStore.Login")
	defer span.End()

	if err := credentials.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Infof("AuthStore.Login : invalid credentials payload: %s", err)
		s.clearSession()
		s.notifier.Notify(domain.LoginFailed)
		return
	}

	header, err := s.client.Login(ctx, credentials)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Infof("AuthStore.Login : login failed: %s", err)
		s.clearSession()
		s.notifier.Notify(domain.LoginFailed)
		return
	}

	s.applyToken(header)
	s.notifier.Notify(domain.LoginSuccess)
}

// Logout clears the session no matter what the backend answered.
func (s *AuthStore) Logout(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "AuthStore.Logout")
	defer span.End()

	if err := s.client.Logout(ctx, s.Session()); err != nil {
		s.logger.Infof("AuthStore.Logout : logout call failed: %s", err)
	}

	s.clearSession()
}

// ChangedPassword forces a re-login on success: the old token is dead
// the moment the backend accepts the new password.
func (s *AuthStore) ChangedPassword(ctx context.Context, payload *domain.PasswordChange) {
	ctx, span := s.tracer.Start(ctx, "AuthStore.ChangedPassword")
	defer span.End()

	if err := payload.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.notifier.Notify(domain.PasswordChangeFailed)
		return
	}

	if err := s.client.ChangePassword(ctx, s.Session(), payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.notifier.Notify(domain.PasswordChangeFailed)
		return
	}

	s.notifier.Notify(domain.PasswordChanged)
	s.clearSession()
}

// applyToken stores the Authorization header value and decodes the role
// out of the token payload. A token that cannot be decoded still counts
// as logged in, with an empty role.
func (s *AuthStore) applyToken(header string) {
	token, err := authorization.SplitBearer(header)
	if err != nil {
		token = header
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{
		Token:         header,
		Role:          authorization.ExtractRole(token),
		Authenticated: true,
	}
}

func (s *AuthStore) clearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
}

package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesage_client/domain"
)

func TestCheckAuthStatusSuccess(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), nil)

	auth.CheckAuthStatus(context.Background())

	assert.True(t, auth.IsAuthenticated())
	assert.Equal(t, domain.Consumer, auth.UserRole())

	session := auth.Session()
	require.NotNil(t, session)
	assert.Contains(t, session.Token, "Bearer ")
}

func TestCheckAuthStatusFailureClearsSession(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), nil)

	auth.CheckAuthStatus(context.Background())
	require.True(t, auth.IsAuthenticated())

	backend.SetAuthorized(false)
	auth.CheckAuthStatus(context.Background())

	assert.False(t, auth.IsAuthenticated())
	assert.Equal(t, domain.UserRole(""), auth.UserRole())
	assert.Equal(t, "", auth.Session().Token)
}

func TestLoginSuccess(t *testing.T) {
	backend := newBackend(t, domain.Provider)
	notifier := &captureNotifier{}
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), notifier)

	auth.Login(context.Background(), &domain.Credentials{
		Email:    "provider@homesage.kr",
		Password: "correct-password",
	})

	assert.True(t, auth.IsAuthenticated())
	assert.Equal(t, domain.Provider, auth.UserRole())
	assert.Equal(t, []string{domain.LoginSuccess}, notifier.Messages())
}

func TestLoginWrongPassword(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	notifier := &captureNotifier{}
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), notifier)

	auth.Login(context.Background(), &domain.Credentials{
		Email:    "consumer@homesage.kr",
		Password: "wrong",
	})

	assert.False(t, auth.IsAuthenticated())
	assert.Equal(t, []string{domain.LoginFailed}, notifier.Messages())
}

func TestLoginInvalidPayloadSkipsNetwork(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	notifier := &captureNotifier{}
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), notifier)

	auth.Login(context.Background(), &domain.Credentials{
		Email:    "not-an-email",
		Password: "correct-password",
	})

	assert.False(t, auth.IsAuthenticated())
	assert.Equal(t, []string{domain.LoginFailed}, notifier.Messages())
	assert.Equal(t, 0, backend.Requests(http.MethodPost, "/auth/login"))
}

func TestLogoutClearsDespiteBackendFailure(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	auth := loggedInAuthStore(backend, nil)
	require.True(t, auth.IsAuthenticated())

	backend.Fail(http.MethodDelete, "/auth/logout", http.StatusInternalServerError)
	auth.Logout(context.Background())

	assert.False(t, auth.IsAuthenticated())
	assert.Equal(t, 1, backend.Requests(http.MethodDelete, "/auth/logout"))
}

func TestChangedPasswordSuccessForcesRelogin(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	notifier := &captureNotifier{}
	auth := loggedInAuthStore(backend, notifier)

	auth.ChangedPassword(context.Background(), &domain.PasswordChange{
		OldPassword:        "old-pass",
		NewPassword:        "new-pass",
		NewPasswordConfirm: "new-pass",
	})

	assert.False(t, auth.IsAuthenticated())
	assert.Equal(t, []string{domain.PasswordChanged}, notifier.Messages())
}

func TestChangedPasswordBackendFailureKeepsSession(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	notifier := &captureNotifier{}
	auth := loggedInAuthStore(backend, notifier)

	backend.Fail(http.MethodPut, "/user/changedPassword", http.StatusBadRequest)
	auth.ChangedPassword(context.Background(), &domain.PasswordChange{
		OldPassword:        "old-pass",
		NewPassword:        "new-pass",
		NewPasswordConfirm: "new-pass",
	})

	assert.True(t, auth.IsAuthenticated())
	assert.Equal(t, []string{domain.PasswordChangeFailed}, notifier.Messages())
}

func TestChangedPasswordMismatchSkipsNetwork(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	notifier := &captureNotifier{}
	auth := loggedInAuthStore(backend, notifier)

	auth.ChangedPassword(context.Background(), &domain.PasswordChange{
		OldPassword:        "old-pass",
		NewPassword:        "new-pass",
		NewPasswordConfirm: "different",
	})

	assert.True(t, auth.IsAuthenticated())
	assert.Equal(t, []string{domain.PasswordChangeFailed}, notifier.Messages())
	assert.Equal(t, 0, backend.Requests(http.MethodPut, "/user/changedPassword"))
}

func TestApplyTokenWithoutBearerPrefix(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), nil)

	auth.applyToken("a.eyJ1c2VyUm9sZSI6IkNPTlNVTUVSIn0=.c")

	assert.True(t, auth.IsAuthenticated())
	assert.Equal(t, domain.Consumer, auth.UserRole())
}

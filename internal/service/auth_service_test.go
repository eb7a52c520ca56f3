package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/notice"
	"github.com/spec-kit/ticket-portal/internal/session"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

func newAuthFixture() (*AuthService, *fakeGateway, *memoryStore, *recordingDispatcher) {
	gw := newFakeGateway()
	store := newMemoryStore()
	dispatcher := &recordingDispatcher{}
	svc := NewAuthService(AuthDependencies{
		Gateway:    gw,
		Sessions:   store,
		Tokens:     auth.NewTokenManager("secret", time.Hour),
		Dispatcher: dispatcher,
		SessionTTL: time.Hour,
	})
	return svc, gw, store, dispatcher
}

func TestLoginStoresSessionAndIssuesToken(t *testing.T) {
	svc, gw, store, dispatcher := newAuthFixture()
	gw.login = &gateway.LoginResult{Token: "upstream", Role: domain.RoleAdmin, UserID: 4, Username: "root", Team: "QA"}

	collector := notice.NewCollector()
	outcome, err := svc.Login(context.Background(), "root@example.com", "pw", collector)
	require.NoError(t, err)
	assert.Equal(t, "/admin/dashboard", outcome.LandingRoute)
	assert.NotEmpty(t, outcome.PortalToken)
	assert.Contains(t, store.sessions, outcome.Session.ID)
	assert.Equal(t, []notice.Notice{notice.Success("Login successful")}, collector.Notices())
	assert.Equal(t, []events.EventType{events.EventSessionStarted}, dispatcher.types())

	resolved, err := svc.Resolve(context.Background(), outcome.PortalToken)
	require.NoError(t, err)
	assert.Equal(t, "upstream", resolved.Token)

	require.NoError(t, svc.Logout(context.Background(), *resolved))
	_, err = svc.Resolve(context.Background(), outcome.PortalToken)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLoginFailureUsesAPIMessage(t *testing.T) {
	svc, gw, _, _ := newAuthFixture()
	gw.loginErr = &gateway.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}

	_, err := svc.Login(context.Background(), "a@b.c", "bad", nil)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "Login failed: Invalid credentials", de.Message)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)

	_, err = svc.Login(context.Background(), "", "", nil)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLoginWithFixedSessionID(t *testing.T) {
	gw := newFakeGateway()
	gw.login = &gateway.LoginResult{Token: "upstream", Role: domain.RoleUser, UserID: 4}
	store := newMemoryStore()
	svc := NewAuthService(AuthDependencies{Gateway: gw, Sessions: store, SessionID: func() string { return "default" }})

	outcome, err := svc.Login(context.Background(), "a@b.c", "pw", nil)
	require.NoError(t, err)
	assert.Equal(t, "default", outcome.Session.ID)
	assert.Empty(t, outcome.PortalToken)
	assert.Equal(t, "/user/dashboard", outcome.LandingRoute)

	current, err := svc.Current(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, int64(4), current.UserID)
}

func TestRegister(t *testing.T) {
	svc, gw, _, _ := newAuthFixture()

	err := svc.Register(context.Background(), RegisterInput{Username: "ann"}, nil)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.ElementsMatch(t, []string{"email", "password", "team"}, de.Details["missing"])

	collector := notice.NewCollector()
	err = svc.Register(context.Background(), RegisterInput{
		Username: "ann", Email: "ann@example.com", Password: "pw", Team: domain.TeamQA, Role: domain.RoleAdmin,
	}, collector)
	require.NoError(t, err)
	require.Len(t, gw.registered, 1)
	assert.Equal(t, domain.RoleAdmin, gw.registered[0].Role)
	assert.Equal(t, []notice.Notice{notice.Success("Registration successful!")}, collector.Notices())

	gw.registerErr = &gateway.APIError{StatusCode: http.StatusBadRequest, Message: "Email already exists"}
	err = svc.Register(context.Background(), RegisterInput{
		Username: "ann", Email: "ann@example.com", Password: "pw", Team: domain.TeamQA, Role: domain.RoleUser,
	}, nil)
	assert.Equal(t, "Email already exists", apperrors.ToDomainError(err).Message)
}

func TestCreateUserIsAdminOnlyAndForcesUserRole(t *testing.T) {
	svc, gw, _, dispatcher := newAuthFixture()
	input := RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw", Team: domain.TeamDevOps, Role: domain.RoleAdmin}

	err := svc.CreateUser(context.Background(), domain.Session{Role: domain.RoleUser}, input, nil)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	bad := input
	bad.Team = domain.TeamNone
	err = svc.CreateUser(context.Background(), adminSession(), bad, nil)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	collector := notice.NewCollector()
	require.NoError(t, svc.CreateUser(context.Background(), adminSession(), input, collector))
	require.Len(t, gw.registered, 1)
	assert.Equal(t, domain.RoleUser, gw.registered[0].Role)
	assert.Equal(t, []notice.Notice{notice.Success("User created successfully!")}, collector.Notices())
	assert.Equal(t, []events.EventType{events.EventUserCreated}, dispatcher.types())
}

package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/notice"
	"github.com/spec-kit/ticket-portal/internal/session"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// AuthService coordinates login, registration and session lifecycle.
type AuthService struct {
	gateway    TicketGateway
	sessions   session.Store
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ttl        time.Duration
	sessionID  func() string
	now        func() time.Time
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Gateway    TicketGateway
	Sessions   session.Store
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	SessionTTL time.Duration
	// SessionID names new sessions. Defaults to a random UUID; ticketctl
	// uses the profile name so each profile holds one session.
	SessionID func() string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	svc := &AuthService{
		gateway:    deps.Gateway,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		ttl:        deps.SessionTTL,
		sessionID:  deps.SessionID,
		now:        time.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.sessionID == nil {
		svc.sessionID = uuid.NewString
	}
	if svc.ttl <= 0 {
		svc.ttl = 8 * time.Hour
	}
	return svc
}

// LoginOutcome is what a successful login hands back to the caller.
type LoginOutcome struct {
	Session      domain.Session
	PortalToken  string
	ExpiresAt    time.Time
	LandingRoute string
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Team     domain.Team
	Role     domain.Role
}

// Login authenticates against the API and stores the resulting session.
func (s *AuthService) Login(ctx context.Context, email, password string, notify notice.Sink) (*LoginOutcome, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Email and password are required.", nil)
	}

	result, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return nil, apperrors.NewDomainError("LOGIN_FAILED", "Login failed: "+upstreamMessage(err, "Login failed"), http.StatusUnauthorized, nil)
	}
	if !result.Role.IsValid() {
		return nil, apperrors.NewUnauthorized("Login failed: unknown role " + string(result.Role))
	}

	now := s.now().UTC()
	sess := domain.Session{
		ID:        s.sessionID(),
		Token:     result.Token,
		Role:      result.Role,
		UserID:    result.UserID,
		Username:  result.Username,
		Team:      result.Team,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess, s.ttl); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	outcome := &LoginOutcome{Session: sess, ExpiresAt: sess.ExpiresAt, LandingRoute: sess.Role.LandingRoute()}
	if s.tokens != nil {
		token, expires, err := s.tokens.GenerateToken(sess)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		outcome.PortalToken = token
		outcome.ExpiresAt = expires
	}

	s.publish(ctx, events.New(events.EventSessionStarted, 0, events.ActorFromSession(sess), nil))
	emit(notify, notice.Success("Login successful"))
	return outcome, nil
}

// Register creates an account through the public registration endpoint.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, notify notice.Sink) error {
	req, err := registerRequest(input)
	if err != nil {
		return err
	}
	if !req.Role.IsValid() {
		return apperrors.NewValidationError("Role must be User or Admin.", nil)
	}
	if !req.Team.IsValid() {
		return apperrors.NewValidationError("Team is not a known team.", map[string]any{"teams": domain.Teams})
	}
	if err := s.gateway.Register(ctx, "", req); err != nil {
		return apperrors.NewUpstreamError(upstreamMessage(err, "Registration failed"), err)
	}
	emit(notify, notice.Success("Registration successful!"))
	return nil
}

// CreateUser lets an administrator create a regular user in a member team.
func (s *AuthService) CreateUser(ctx context.Context, sess domain.Session, input RegisterInput, notify notice.Sink) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	input.Role = domain.RoleUser
	req, err := registerRequest(input)
	if err != nil {
		return err
	}
	if !req.Team.IsMemberTeam() {
		return apperrors.NewValidationError("Team must be one of the member teams.", map[string]any{"teams": domain.MemberTeams})
	}
	if err := s.gateway.Register(ctx, sess.Token, req); err != nil {
		return apperrors.NewUpstreamError(upstreamMessage(err, "Failed to create user"), err)
	}

	s.publish(ctx, events.New(events.EventUserCreated, 0, events.ActorFromSession(sess), events.UserCreatedPayload{
		Username: req.Username,
		Team:     req.Team,
		Role:     req.Role,
	}))
	emit(notify, notice.Success("User created successfully!"))
	return nil
}

// Logout deletes the stored session.
func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.New(events.EventSessionEnded, 0, events.ActorFromSession(sess), nil))
	return nil
}

// Current loads a stored session by id.
func (s *AuthService) Current(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Load(ctx, sessionID)
}

// Resolve maps a portal token to its stored session.
func (s *AuthService) Resolve(ctx context.Context, portalToken string) (*domain.Session, error) {
	if s.tokens == nil {
		return nil, apperrors.NewUnauthorized("portal tokens are not enabled")
	}
	claims, err := s.tokens.ParseToken(portalToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return s.Current(ctx, claims.SessionID)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func registerRequest(input RegisterInput) (gateway.RegisterRequest, error) {
	req := gateway.RegisterRequest{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
		Team:     domain.Team(strings.TrimSpace(string(input.Team))),
		Role:     input.Role,
	}
	missing := []string{}
	if req.Username == "" {
		missing = append(missing, "username")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Team == "" {
		missing = append(missing, "team")
	}
	if len(missing) > 0 {
		return req, apperrors.NewValidationError("Please fill in all required fields.", map[string]any{"missing": missing})
	}
	return req, nil
}

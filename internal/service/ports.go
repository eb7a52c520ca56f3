package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/notice"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// TicketGateway is the subset of the ticketing API the services use.
// *gateway.Client satisfies it.
type TicketGateway interface {
	Login(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	Register(ctx context.Context, token string, req gateway.RegisterRequest) error
	ListTickets(ctx context.Context, token string, scope gateway.Scope) ([]domain.Ticket, error)
	FetchTicket(ctx context.Context, token string, id int64) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, token string, ticket gateway.NewTicket) error
	TeamUsers(ctx context.Context, token string, team domain.Team) ([]domain.TeamUser, error)
	UpdateTicketAsRequesterOrAssignee(ctx context.Context, token string, payload gateway.UpdatePayload) (domain.CanonicalFields, error)
	UpdateTicketAsAdmin(ctx context.Context, token string, payload gateway.UpdatePayload) (domain.CanonicalFields, error)
}

// upstreamFailure turns a gateway error into the error shown to the user.
// Missing tickets and rejected credentials keep their own meaning; anything
// else becomes message.
func upstreamFailure(message string, err error) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusNotFound) {
		return err
	}
	return apperrors.NewUpstreamError(message, err)
}

// upstreamMessage prefers the API's own message, as the login and
// registration screens show it verbatim.
func upstreamMessage(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func requireAdmin(sess domain.Session) error {
	if !sess.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func emit(notify notice.Sink, notices ...notice.Notice) {
	if notify == nil {
		return
	}
	for _, n := range notices {
		notify.Notify(n)
	}
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/notice"
	"github.com/spec-kit/ticket-portal/internal/policy"
	"github.com/spec-kit/ticket-portal/internal/session"
)

// AdminPageSize is the number of rows per admin ticket table page.
const AdminPageSize = 8

// AdminService drives the administrator ticket table and editor.
type AdminService struct {
	*recorder
	gateway TicketGateway
	guard   session.InflightGuard
	policy  policy.AdminTransitionPolicy
}

// NewAdminService constructs the service.
func NewAdminService(deps TicketDependencies) *AdminService {
	return &AdminService{
		recorder: newRecorder(deps),
		gateway:  deps.Gateway,
		guard:    guardOrDefault(deps.Guard),
	}
}

// AdminQuery filters the ticket table.
type AdminQuery struct {
	Search string
	Page   int
}

// AdminTicketDetail is the admin editor view.
type AdminTicketDetail struct {
	Ticket          domain.Ticket
	AllowedStatuses []domain.TicketStatus
	CanEditDueDate  bool
}

// AdminUpdateInput is an admin save. A nil DueDate keeps the current one
// unless ClearDueDate is set.
type AdminUpdateInput struct {
	Status       domain.TicketStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// ListTickets returns all tickets ordered by priority, filtered by a
// case-insensitive keyword over title and status.
func (s *AdminService) ListTickets(ctx context.Context, sess domain.Session, query AdminQuery) (*Page[domain.Ticket], error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	tickets, err := s.gateway.ListTickets(ctx, sess.Token, gateway.ScopeAll)
	if err != nil {
		s.logger.Warn("admin ticket list failed", zap.Error(err))
		return nil, upstreamFailure("Failed to fetch tickets.", err)
	}

	keyword := strings.ToLower(strings.TrimSpace(query.Search))
	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if keyword == "" ||
			strings.Contains(strings.ToLower(t.Title), keyword) ||
			strings.Contains(strings.ToLower(string(t.Status)), keyword) {
			filtered = append(filtered, t)
		}
	}
	SortByPriority(filtered)

	page := Paginate(filtered, query.Page, AdminPageSize)
	return &page, nil
}

// FindTicket looks a ticket up by id. A missing ticket yields an empty page
// rather than an error.
func (s *AdminService) FindTicket(ctx context.Context, sess domain.Session, id int64) (*Page[domain.Ticket], error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	ticket, err := s.gateway.FetchTicket(ctx, sess.Token, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			page := Paginate([]domain.Ticket{}, 1, AdminPageSize)
			return &page, nil
		}
		return nil, upstreamFailure("Failed to fetch tickets.", err)
	}
	page := Paginate([]domain.Ticket{*ticket}, 1, AdminPageSize)
	return &page, nil
}

// Detail loads a ticket for the admin editor.
func (s *AdminService) Detail(ctx context.Context, sess domain.Session, id int64) (*AdminTicketDetail, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	ticket, err := s.gateway.FetchTicket(ctx, sess.Token, id)
	if err != nil {
		return nil, upstreamFailure("Failed to load ticket details", err)
	}
	return s.detail(*ticket), nil
}

// SubmitUpdate validates an admin change and sends it to the admin endpoint.
func (s *AdminService) SubmitUpdate(ctx context.Context, sess domain.Session, id int64, input AdminUpdateInput, notify notice.Sink) (*AdminTicketDetail, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	release, err := s.guard.Acquire(ctx, session.GuardKey(sess.ID, id))
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.gateway.FetchTicket(ctx, sess.Token, id)
	if err != nil {
		return nil, upstreamFailure("Failed to load ticket details", err)
	}

	due := input.DueDate
	if due == nil && !input.ClearDueDate {
		due = ticket.DueDate
	}
	sub := policy.Submission{
		PriorStatus:  ticket.Status,
		Status:       input.Status,
		PriorDueDate: ticket.DueDate,
		DueDate:      due,
		CreatedDate:  ticket.CreatedDate,
		EditMode:     true,
	}
	if err := s.policy.Validate(sub); err != nil {
		s.recordRejection(ctx, sess, domain.ChannelAdmin, sub, id, err)
		return nil, err
	}

	fields, err := s.gateway.UpdateTicketAsAdmin(ctx, sess.Token, gateway.UpdatePayload{
		TicketID: id,
		Status:   input.Status,
		DueDate:  due,
	})
	if err != nil {
		s.logger.Warn("admin ticket update failed", zap.Int64("ticket_id", id), zap.Error(err))
		s.recordAudit(ctx, sess, domain.ChannelAdmin, sub, id, domain.OutcomeFailed, err.Error())
		return nil, upstreamFailure("Update failed. Please check your data and try again.", err)
	}

	prior := ticket.Status
	ticket.Apply(fields)
	s.recordAudit(ctx, sess, domain.ChannelAdmin, sub, id, domain.OutcomeAccepted, "")
	s.publish(ctx, events.New(events.EventTicketUpdated, id, events.ActorFromSession(sess), events.TicketUpdatedPayload{
		Channel:   domain.ChannelAdmin,
		OldStatus: prior,
		NewStatus: ticket.Status,
		DueDate:   domain.FormatDate(ticket.DueDate),
	}))
	emit(notify, notice.Success("Ticket updated successfully"))
	return s.detail(*ticket), nil
}

// AuditTrail lists the recorded submissions for a ticket, newest first. It is
// empty when no audit store is configured.
func (s *AdminService) AuditTrail(ctx context.Context, sess domain.Session, id int64) ([]domain.SubmissionAudit, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []domain.SubmissionAudit{}, nil
	}
	return s.audit.ListByTicket(ctx, id)
}

func (s *AdminService) detail(ticket domain.Ticket) *AdminTicketDetail {
	return &AdminTicketDetail{
		Ticket:          ticket,
		AllowedStatuses: s.policy.AllowedStatuses(),
		CanEditDueDate:  s.policy.CanEditDueDate(),
	}
}

// SortByPriority orders tickets from Critical to Low, keeping the API order
// among equal priorities.
func SortByPriority(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Priority.Rank() < tickets[j].Priority.Rank()
	})
}

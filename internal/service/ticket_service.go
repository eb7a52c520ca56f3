package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/notice"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/policy"
	"github.com/spec-kit/ticket-portal/internal/repository"
	"github.com/spec-kit/ticket-portal/internal/session"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// DashboardPageSize is the number of tickets per user dashboard page.
const DashboardPageSize = 4

// DashboardTab selects a user dashboard list.
type DashboardTab string

const (
	TabAssigned  DashboardTab = "assigned"
	TabRequested DashboardTab = "requested"
	TabTeam      DashboardTab = "team"
)

var tabScopes = map[DashboardTab]gateway.Scope{
	TabAssigned:  gateway.ScopeAssigned,
	TabRequested: gateway.ScopeRequested,
	TabTeam:      gateway.ScopeTeam,
}

// TicketService drives the user-facing ticket views.
type TicketService struct {
	*recorder
	gateway TicketGateway
	guard   session.InflightGuard
}

// TicketDependencies bundles collaborators for the ticket services.
type TicketDependencies struct {
	Gateway    TicketGateway
	Guard      session.InflightGuard
	AuditRepo  repository.SubmissionAuditRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		recorder: newRecorder(deps),
		gateway:  deps.Gateway,
		guard:    guardOrDefault(deps.Guard),
	}
}

// TicketSummary is a dashboard card.
type TicketSummary struct {
	ID       int64                 `json:"ticket_id"`
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Status   domain.TicketStatus   `json:"status"`
}

// Dashboard is one page of a dashboard tab.
type Dashboard struct {
	Tab     DashboardTab
	Tickets Page[TicketSummary]
}

// TicketDetail is the ticket detail view with everything the policy decided.
type TicketDetail struct {
	Ticket          domain.Ticket
	Relationship    policy.Relationship
	Standing        policy.Standing
	CanEdit         bool
	EditMode        bool
	AllowedStatuses []domain.TicketStatus
	CanEditDueDate  bool
}

// UpdateInput is a user's save from the detail view. A nil DueDate keeps the
// ticket's current due date unless ClearDueDate is set.
type UpdateInput struct {
	Status       domain.TicketStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// CreateTicketInput is the create-ticket form.
type CreateTicketInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	Team        domain.Team
	DueDate     *time.Time
	Assignee    domain.Assignee
}

// ParseDashboardTab validates a tab name.
func ParseDashboardTab(raw string) (DashboardTab, error) {
	tab := DashboardTab(strings.ToLower(strings.TrimSpace(raw)))
	if tab == "" {
		return TabAssigned, nil
	}
	if _, ok := tabScopes[tab]; !ok {
		return "", apperrors.NewValidationError("Unknown dashboard tab.", map[string]any{"tab": raw})
	}
	return tab, nil
}

// Dashboard lists a page of the viewer's tickets for the tab.
func (s *TicketService) Dashboard(ctx context.Context, sess domain.Session, tab DashboardTab, page int) (*Dashboard, error) {
	scope, ok := tabScopes[tab]
	if !ok {
		return nil, apperrors.NewValidationError("Unknown dashboard tab.", map[string]any{"tab": string(tab)})
	}
	tickets, err := s.gateway.ListTickets(ctx, sess.Token, scope)
	if err != nil {
		s.logger.Warn("dashboard fetch failed", zap.String("tab", string(tab)), zap.Error(err))
		return nil, upstreamFailure("Failed to load tickets.", err)
	}

	summaries := make([]TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		summaries = append(summaries, TicketSummary{ID: t.ID, Title: t.Title, Priority: t.Priority, Status: t.Status})
	}
	return &Dashboard{Tab: tab, Tickets: Paginate(summaries, page, DashboardPageSize)}, nil
}

// Detail loads a ticket and evaluates the policy for the viewer. Asking for
// edit mode without permission is refused.
func (s *TicketService) Detail(ctx context.Context, sess domain.Session, id int64, editMode bool) (*TicketDetail, error) {
	ticket, err := s.gateway.FetchTicket(ctx, sess.Token, id)
	if err != nil {
		return nil, upstreamFailure("Failed to load ticket details.", err)
	}
	rel := policy.ClassifyViewer(*ticket, sess.UserID)
	if editMode {
		if err := policy.EnterEditMode(rel); err != nil {
			return nil, err
		}
	}
	return buildDetail(*ticket, rel, editMode), nil
}

// SubmitUpdate validates and sends a status and due date change. Only one
// submission per session and ticket may be in flight.
func (s *TicketService) SubmitUpdate(ctx context.Context, sess domain.Session, id int64, input UpdateInput, notify notice.Sink) (*TicketDetail, error) {
	release, err := s.guard.Acquire(ctx, session.GuardKey(sess.ID, id))
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.gateway.FetchTicket(ctx, sess.Token, id)
	if err != nil {
		return nil, upstreamFailure("Failed to load ticket details.", err)
	}
	rel := policy.ClassifyViewer(*ticket, sess.UserID)

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
	if err := policy.ValidateSubmission(sub, rel); err != nil {
		s.recordRejection(ctx, sess, domain.ChannelUser, sub, id, err)
		return nil, err
	}

	// Only the requester's due date is sent; everyone else re-sends the
	// stored one.
	payloadDue := ticket.DueDate
	if rel.IsRequester {
		payloadDue = due
	}
	fields, err := s.gateway.UpdateTicketAsRequesterOrAssignee(ctx, sess.Token, gateway.UpdatePayload{
		TicketID: id,
		Status:   input.Status,
		DueDate:  payloadDue,
	})
	if err != nil {
		s.logger.Warn("ticket update failed", zap.Int64("ticket_id", id), zap.Int64("user_id", sess.UserID), zap.Error(err))
		s.recordAudit(ctx, sess, domain.ChannelUser, sub, id, domain.OutcomeFailed, err.Error())
		return nil, upstreamFailure("Failed to update ticket.", err)
	}

	prior := ticket.Status
	ticket.Apply(fields)
	s.recordAudit(ctx, sess, domain.ChannelUser, sub, id, domain.OutcomeAccepted, "")
	s.publish(ctx, events.New(events.EventTicketUpdated, id, events.ActorFromSession(sess), events.TicketUpdatedPayload{
		Channel:   domain.ChannelUser,
		OldStatus: prior,
		NewStatus: ticket.Status,
		DueDate:   domain.FormatDate(ticket.DueDate),
	}))

	emit(notify, policy.Advisories(prior, input.Status)...)
	emit(notify, notice.Success("Ticket updated successfully."))
	return buildDetail(*ticket, policy.ClassifyViewer(*ticket, sess.UserID), false), nil
}

// CreateTicket validates the create-ticket form and submits it.
func (s *TicketService) CreateTicket(ctx context.Context, sess domain.Session, input CreateTicketInput, notify notice.Sink) error {
	req, err := newTicketRequest(input)
	if err != nil {
		return err
	}
	if err := s.gateway.CreateTicket(ctx, sess.Token, req); err != nil {
		s.logger.Warn("ticket create failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		return upstreamFailure("Failed to create ticket. Please check the input.", err)
	}

	_, assigned := req.Assignee.ID()
	s.publish(ctx, events.New(events.EventTicketCreated, 0, events.ActorFromSession(sess), events.TicketCreatedPayload{
		Title:    req.Title,
		Priority: req.Priority,
		Team:     req.Team,
		Assigned: assigned,
	}))
	emit(notify, notice.Success("Ticket created successfully."))
	return nil
}

// TeamUsers lists the users a new ticket can be assigned to. Team None has no
// assignable users.
func (s *TicketService) TeamUsers(ctx context.Context, sess domain.Session, team domain.Team) ([]domain.TeamUser, error) {
	if !team.IsValid() {
		return nil, apperrors.NewValidationError("Team is not a known team.", map[string]any{"teams": domain.Teams})
	}
	if team == domain.TeamNone {
		return []domain.TeamUser{}, nil
	}
	users, err := s.gateway.TeamUsers(ctx, sess.Token, team)
	if err != nil {
		s.logger.Warn("team users fetch failed", zap.String("team", string(team)), zap.Error(err))
		return nil, upstreamFailure("Failed to load assignees.", err)
	}
	return users, nil
}

func buildDetail(ticket domain.Ticket, rel policy.Relationship, editMode bool) *TicketDetail {
	return &TicketDetail{
		Ticket:          ticket,
		Relationship:    rel,
		Standing:        rel.Standing(),
		CanEdit:         policy.CanEnterEditMode(rel),
		EditMode:        editMode,
		AllowedStatuses: policy.AllowedStatuses(ticket, rel, editMode),
		CanEditDueDate:  policy.CanEditDueDate(rel, editMode),
	}
}

func newTicketRequest(input CreateTicketInput) (gateway.NewTicket, error) {
	req := gateway.NewTicket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    input.Priority,
		Team:        input.Team,
		Assignee:    input.Assignee,
	}
	if req.Category == "" {
		req.Category = domain.TicketCategoryIncident
	}
	if req.Priority == "" {
		req.Priority = domain.TicketPriorityLow
	}
	if req.Team == "" {
		req.Team = domain.TeamNone
	}
	if req.Team == domain.TeamNone {
		req.Assignee = domain.Unassigned()
	}

	problems := map[string]any{}
	if req.Title == "" {
		problems["title"] = "required"
	}
	if req.Description == "" {
		problems["description"] = "required"
	}
	if !containsValue(domain.Categories, req.Category) {
		problems["category"] = "unknown"
	}
	if !containsValue(domain.Priorities, req.Priority) {
		problems["priority"] = "unknown"
	}
	if !req.Team.IsValid() {
		problems["team"] = "unknown"
	}
	if input.DueDate == nil || input.DueDate.IsZero() {
		problems["due_date"] = "required"
	} else {
		req.DueDate = *input.DueDate
	}
	if len(problems) > 0 {
		return req, apperrors.NewValidationError("Failed to create ticket. Please check the input.", problems)
	}
	return req, nil
}

func containsValue[T comparable](values []T, target T) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

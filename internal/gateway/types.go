package gateway

import (
	"fmt"
	"time"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// Scope selects which ticket list endpoint to read.
type Scope string

const (
	ScopeAssigned  Scope = "assigned"
	ScopeRequested Scope = "requested"
	ScopeTeam      Scope = "team"
	ScopeAll       Scope = "all"
)

var scopePaths = map[Scope]string{
	ScopeAssigned:  "/Tickets/user/assigned",
	ScopeRequested: "/Tickets/user/requested",
	ScopeTeam:      "/Tickets/team",
	ScopeAll:       "/Tickets/admin/all",
}

// LoginResult is what the API returns for a successful login.
type LoginResult struct {
	Token    string
	Role     domain.Role
	UserID   int64
	Username string
	Team     string
}

// RegisterRequest creates a user account.
type RegisterRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Team     domain.Team `json:"team"`
	Role     domain.Role `json:"role"`
}

// NewTicket is the create-ticket payload.
type NewTicket struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	Team        domain.Team
	DueDate     time.Time
	Assignee    domain.Assignee
}

// UpdatePayload is sent to both update endpoints.
type UpdatePayload struct {
	TicketID int64
	Status   domain.TicketStatus
	DueDate  *time.Time
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	UserName string `json:"userName"`
	Name     string `json:"name"`
	Team     string `json:"team"`
}

func (r loginResponse) toResult() LoginResult {
	username := r.Username
	if username == "" {
		username = r.UserName
	}
	if username == "" {
		username = r.Name
	}
	return LoginResult{
		Token:    r.Token,
		Role:     domain.Role(r.Role),
		UserID:   r.ID,
		Username: username,
		Team:     r.Team,
	}
}

type createTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Team        domain.Team           `json:"team"`
	DueDate     string                `json:"dueDate"`
	AssigneeID  int64                 `json:"assigneeId"`
}

type updateRequest struct {
	TicketID int64               `json:"ticketId"`
	Status   domain.TicketStatus `json:"status"`
	DueDate  *string             `json:"dueDate"`
}

type updateResponse struct {
	Status       domain.TicketStatus `json:"status"`
	DueDate      *string             `json:"dueDate"`
	ResolvedDate *string             `json:"resolvedDate"`
}

type teamUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type apiErrorBody struct {
	Message string `json:"message"`
	Title   string `json:"title"`
}

type ticketWire struct {
	TicketID      int64               `json:"ticketId"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Priority      string              `json:"priority"`
	Status        domain.TicketStatus `json:"status"`
	Team          string              `json:"team"`
	RequesterID   int64               `json:"requesterId"`
	RequesterName string              `json:"requesterName"`
	AssigneeID    *int64              `json:"assigneeId"`
	AssigneeName  string              `json:"assigneeName"`
	DueDate       *string             `json:"dueDate"`
	CreatedDate   *string             `json:"createdDate"`
	CreatedAt     *string             `json:"createdAt"`
	ResolvedDate  *string             `json:"resolvedDate"`
	TeamMembers   []int64             `json:"teamMembers"`
}

func (w ticketWire) toDomain() (domain.Ticket, error) {
	due, err := optionalDate(w.DueDate)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket %d dueDate: %w", w.TicketID, err)
	}
	resolved, err := optionalDate(w.ResolvedDate)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket %d resolvedDate: %w", w.TicketID, err)
	}
	createdRaw := w.CreatedDate
	if createdRaw == nil || *createdRaw == "" {
		createdRaw = w.CreatedAt
	}
	created, err := optionalDate(createdRaw)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket %d createdDate: %w", w.TicketID, err)
	}
	ticket := domain.Ticket{
		ID:            w.TicketID,
		Title:         w.Title,
		Description:   w.Description,
		Category:      domain.TicketCategory(w.Category),
		Priority:      domain.TicketPriority(w.Priority),
		Status:        w.Status,
		Team:          domain.Team(w.Team),
		RequesterID:   w.RequesterID,
		RequesterName: w.RequesterName,
		Assignee:      domain.AssigneeFromPtr(w.AssigneeID),
		AssigneeName:  w.AssigneeName,
		DueDate:       due,
		ResolvedDate:  resolved,
		TeamMembers:   w.TeamMembers,
	}
	if created != nil {
		ticket.CreatedDate = *created
	}
	return ticket, nil
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return domain.ParseOptionalDate(*raw)
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

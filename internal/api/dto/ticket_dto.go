package dto

import (
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
)

// CreateTicketRequest payload. DueDate is YYYY-MM-DD or an ISO timestamp.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Team        domain.Team           `json:"team"`
	DueDate     string                `json:"due_date"`
	AssigneeID  *int64                `json:"assignee_id"`
}

// UpdateTicketRequest is the detail view save. Status may be a name or a
// numeric code; an omitted due date keeps the current one.
type UpdateTicketRequest struct {
	Status  domain.TicketStatus `json:"status"`
	DueDate *string             `json:"due_date"`
}

// TicketResponse is the full ticket record.
type TicketResponse struct {
	ID            int64                 `json:"ticket_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      domain.TicketCategory `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	Team          domain.Team           `json:"team"`
	RequesterID   int64                 `json:"requester_id"`
	RequesterName string                `json:"requester_name,omitempty"`
	AssigneeID    *int64                `json:"assignee_id"`
	AssigneeName  string                `json:"assignee_name,omitempty"`
	DueDate       string                `json:"due_date,omitempty"`
	CreatedDate   string                `json:"created_date"`
	ResolvedDate  string                `json:"resolved_date,omitempty"`
}

// RelationshipResponse exposes how the viewer relates to the ticket.
type RelationshipResponse struct {
	IsRequester  bool   `json:"is_requester"`
	IsAssignee   bool   `json:"is_assignee"`
	IsUnassigned bool   `json:"is_unassigned"`
	IsTeamMember bool   `json:"is_team_member"`
	Standing     string `json:"standing"`
}

// TicketDetailResponse is the user detail view.
type TicketDetailResponse struct {
	Ticket          TicketResponse        `json:"ticket"`
	Relationship    RelationshipResponse  `json:"relationship"`
	CanEdit         bool                  `json:"can_edit"`
	EditMode        bool                  `json:"edit_mode"`
	AllowedStatuses []domain.TicketStatus `json:"allowed_statuses"`
	CanEditDueDate  bool                  `json:"can_edit_due_date"`
}

// DashboardResponse is one page of a dashboard tab.
type DashboardResponse struct {
	Tab     service.DashboardTab                `json:"tab"`
	Tickets service.Page[service.TicketSummary] `json:"tickets"`
}

// TeamUserResponse is a candidate assignee.
type TeamUserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// NewTicketResponse converts a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Category:      t.Category,
		Priority:      t.Priority,
		Status:        t.Status,
		Team:          t.Team,
		RequesterID:   t.RequesterID,
		RequesterName: t.RequesterName,
		AssigneeID:    t.Assignee.Ptr(),
		AssigneeName:  t.AssigneeName,
		DueDate:       domain.FormatDate(t.DueDate),
		ResolvedDate:  domain.FormatDate(t.ResolvedDate),
	}
	if !t.CreatedDate.IsZero() {
		resp.CreatedDate = domain.FormatDate(&t.CreatedDate)
	}
	return resp
}

// NewTicketDetailResponse converts the service detail view.
func NewTicketDetailResponse(d *service.TicketDetail) TicketDetailResponse {
	return TicketDetailResponse{
		Ticket: NewTicketResponse(d.Ticket),
		Relationship: RelationshipResponse{
			IsRequester:  d.Relationship.IsRequester,
			IsAssignee:   d.Relationship.IsAssignee,
			IsUnassigned: d.Relationship.IsUnassigned,
			IsTeamMember: d.Relationship.IsTeamMember,
			Standing:     string(d.Standing),
		},
		CanEdit:         d.CanEdit,
		EditMode:        d.EditMode,
		AllowedStatuses: d.AllowedStatuses,
		CanEditDueDate:  d.CanEditDueDate,
	}
}

// NewTeamUsersResponse converts team users.
func NewTeamUsersResponse(users []domain.TeamUser) []TeamUserResponse {
	out := make([]TeamUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, TeamUserResponse{UserID: u.UserID, Username: u.Username})
	}
	return out
}

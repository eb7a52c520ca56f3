package dto

import (
	"time"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
)

// AdminTicketPage is one page of the admin ticket table.
type AdminTicketPage struct {
	Items      []TicketResponse `json:"items"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
	TotalItems int              `json:"total_items"`
}

// AdminTicketDetailResponse is the admin editor view.
type AdminTicketDetailResponse struct {
	Ticket          TicketResponse        `json:"ticket"`
	AllowedStatuses []domain.TicketStatus `json:"allowed_statuses"`
	CanEditDueDate  bool                  `json:"can_edit_due_date"`
}

// AuditEntryResponse is one submission audit row.
type AuditEntryResponse struct {
	ID              string                   `json:"id"`
	TicketID        int64                    `json:"ticket_id"`
	ViewerID        int64                    `json:"viewer_id"`
	Channel         domain.SubmissionChannel `json:"channel"`
	PriorStatus     domain.TicketStatus      `json:"prior_status"`
	SubmittedStatus domain.TicketStatus      `json:"submitted_status"`
	DueDate         string                   `json:"due_date,omitempty"`
	Outcome         domain.SubmissionOutcome `json:"outcome"`
	Reason          string                   `json:"reason,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

// NewAdminTicketPage converts a service page.
func NewAdminTicketPage(page *service.Page[domain.Ticket]) AdminTicketPage {
	items := make([]TicketResponse, 0, len(page.Items))
	for _, t := range page.Items {
		items = append(items, NewTicketResponse(t))
	}
	return AdminTicketPage{
		Items:      items,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}
}

// NewAdminTicketDetailResponse converts the admin editor view.
func NewAdminTicketDetailResponse(d *service.AdminTicketDetail) AdminTicketDetailResponse {
	return AdminTicketDetailResponse{
		Ticket:          NewTicketResponse(d.Ticket),
		AllowedStatuses: d.AllowedStatuses,
		CanEditDueDate:  d.CanEditDueDate,
	}
}

// NewAuditResponse converts audit entries.
func NewAuditResponse(entries []domain.SubmissionAudit) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:              e.ID,
			TicketID:        e.TicketID,
			ViewerID:        e.ViewerID,
			Channel:         e.Channel,
			PriorStatus:     e.PriorStatus,
			SubmittedStatus: e.SubmittedStatus,
			DueDate:         domain.FormatDate(e.DueDate),
			Outcome:         e.Outcome,
			Reason:          e.Reason,
			CreatedAt:       e.CreatedAt,
		})
	}
	return out
}

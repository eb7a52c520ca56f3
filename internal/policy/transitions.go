package policy

import (
	"fmt"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/notice"
)

var (
	closedRequesterStatuses = []domain.TicketStatus{
		domain.TicketStatusClosed,
		domain.TicketStatusReopened,
	}
	assigneeStatuses = []domain.TicketStatus{
		domain.TicketStatusAssigned,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusOnHold,
		domain.TicketStatusResolved,
	}
	requesterStatuses = []domain.TicketStatus{
		domain.TicketStatusReopened,
		domain.TicketStatusAssigned,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusOnHold,
		domain.TicketStatusClosed,
	}
	fallbackStatuses = []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusAssigned,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
		domain.TicketStatusOnHold,
	}
)

// AllowedStatuses returns the ordered status options for the viewer. The
// result is empty when no transition is permitted. Team members share the
// fallback options with any other viewer.
func AllowedStatuses(ticket domain.Ticket, r Relationship, editMode bool) []domain.TicketStatus {
	return AllowedFrom(ticket.Status, r, editMode)
}

// AllowedFrom returns the status options when the ticket is in current.
func AllowedFrom(current domain.TicketStatus, r Relationship, editMode bool) []domain.TicketStatus {
	if current == domain.TicketStatusClosed {
		if r.IsRequester && editMode {
			return clone(closedRequesterStatuses)
		}
		return []domain.TicketStatus{}
	}
	switch r.Standing() {
	case StandingAssignee:
		return clone(assigneeStatuses)
	case StandingRequester:
		return clone(requesterStatuses)
	default:
		return clone(fallbackStatuses)
	}
}

// IsAllowed reports whether next is among the viewer's status options.
func IsAllowed(current domain.TicketStatus, r Relationship, editMode bool, next domain.TicketStatus) bool {
	return contains(AllowedFrom(current, r, editMode), next)
}

// Advisories returns informational notices for a submitted status change.
func Advisories(prior, submitted domain.TicketStatus) []notice.Notice {
	reopening := submitted == domain.TicketStatusReopened &&
		(prior == domain.TicketStatusClosed || prior == domain.TicketStatusResolved)
	if reopening {
		return []notice.Notice{notice.Info("You are reopening this ticket.")}
	}
	return nil
}

func transitionRejection(from, to domain.TicketStatus) *Rejection {
	return authorization(CodeTransitionNotAllowed,
		fmt.Sprintf("Status %s is not an allowed transition from %s.", to, from))
}

func clone(statuses []domain.TicketStatus) []domain.TicketStatus {
	out := make([]domain.TicketStatus, len(statuses))
	copy(out, statuses)
	return out
}

func contains(statuses []domain.TicketStatus, target domain.TicketStatus) bool {
	for _, status := range statuses {
		if status == target {
			return true
		}
	}
	return false
}

// Package policy decides what a viewer may do with a ticket: whether they may
// enter edit mode, which statuses they may move it to, whether the due date is
// editable, and whether a submitted change is acceptable. Every function is
// pure; callers perform the I/O.
package policy

import "github.com/spec-kit/ticket-portal/internal/domain"

// Relationship is the viewer's relationship to a ticket.
type Relationship struct {
	IsRequester  bool
	IsAssignee   bool
	IsUnassigned bool
	IsTeamMember bool
}

// Standing is the single relationship that drives status options when a
// viewer holds several at once.
type Standing string

const (
	StandingAssignee   Standing = "assignee"
	StandingRequester  Standing = "requester"
	StandingTeamMember Standing = "team_member"
	StandingOther      Standing = "other"
)

// Precedence lists standings from strongest to weakest. A viewer who is both
// assignee and requester is treated as the assignee.
var Precedence = []Standing{StandingAssignee, StandingRequester, StandingTeamMember, StandingOther}

// ClassifyViewer computes the viewer's relationship to the ticket.
func ClassifyViewer(ticket domain.Ticket, viewerID int64) Relationship {
	return Relationship{
		IsRequester:  ticket.RequesterID == viewerID,
		IsAssignee:   ticket.Assignee.Is(viewerID),
		IsUnassigned: ticket.Assignee.IsUnassigned(),
		IsTeamMember: ticket.HasMember(viewerID),
	}
}

// Standing resolves the relationship using Precedence.
func (r Relationship) Standing() Standing {
	for _, standing := range Precedence {
		if r.holds(standing) {
			return standing
		}
	}
	return StandingOther
}

func (r Relationship) holds(s Standing) bool {
	switch s {
	case StandingAssignee:
		return r.IsAssignee
	case StandingRequester:
		return r.IsRequester
	case StandingTeamMember:
		return r.IsTeamMember
	default:
		return true
	}
}

// CanAttemptEdit reports whether the viewer may toggle edit mode on. Team
// members only qualify while the ticket is unassigned.
func (r Relationship) CanAttemptEdit() bool {
	return r.IsRequester || r.IsAssignee || (r.IsUnassigned && r.IsTeamMember)
}

// CanEnterEditMode reports whether edit mode may be entered.
func CanEnterEditMode(r Relationship) bool {
	return r.CanAttemptEdit()
}

// EnterEditMode returns a rejection when edit mode is refused.
func EnterEditMode(r Relationship) error {
	if !CanEnterEditMode(r) {
		return authorization(CodeEditNotAllowed, "You are not authorised to edit this ticket.")
	}
	return nil
}

// CanEditDueDate reports whether the due date is editable. Only the requester
// may change it, and only while editing.
func CanEditDueDate(r Relationship, editMode bool) bool {
	return r.IsRequester && editMode
}

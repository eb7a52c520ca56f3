package policy

import (
	"time"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// Submission is a ticket edit as it stands when the viewer presses save.
type Submission struct {
	PriorStatus  domain.TicketStatus
	Status       domain.TicketStatus
	PriorDueDate *time.Time
	DueDate      *time.Time
	CreatedDate  time.Time
	EditMode     bool
}

// ValidateSubmission returns nil when the submission may be sent to the API,
// or a *Rejection naming the first rule it breaks.
//
// The save-time guards run before the allowed-set check so that each distinct
// rule keeps its own reason. Resubmitting the current status is not a
// transition and is never checked against the allowed set.
func ValidateSubmission(sub Submission, r Relationship) error {
	if err := EnterEditMode(r); err != nil {
		return err
	}
	if sub.Status == "" {
		return validation(CodeStatusEmpty, "Status cannot be empty.")
	}
	if !sub.Status.IsValid() {
		return validation(CodeStatusUnknown, "Status "+string(sub.Status)+" is not a known status.")
	}
	if r.IsAssignee && sub.Status == domain.TicketStatusClosed {
		return authorization(CodeAssigneeCannotClose, "Assignee cannot close the ticket.")
	}
	if r.IsRequester && sub.Status == domain.TicketStatusResolved {
		return authorization(CodeRequesterCannotResolve, "Requester cannot resolve the ticket.")
	}
	if sub.PriorStatus == domain.TicketStatusClosed && sub.Status == domain.TicketStatusReopened && !r.IsRequester {
		return authorization(CodeOnlyRequesterReopens, "Only the requester can reopen a closed ticket.")
	}
	if sub.Status != sub.PriorStatus && !IsAllowed(sub.PriorStatus, r, sub.EditMode, sub.Status) {
		return transitionRejection(sub.PriorStatus, sub.Status)
	}
	return ValidateDueDate(sub, r)
}

// ValidateDueDate checks only the due date part of a submission. A changed due
// date before the ticket's created date is refused for every viewer; the
// stored value is re-sent unchecked.
func ValidateDueDate(sub Submission, r Relationship) error {
	if domain.SameDay(sub.PriorDueDate, sub.DueDate) {
		return nil
	}
	if !CanEditDueDate(r, sub.EditMode) {
		return authorization(CodeDueDateLocked, "Due Date cannot be changed.")
	}
	if sub.DueDate != nil && domain.BeforeDay(*sub.DueDate, sub.CreatedDate) {
		return validation(CodeDueDateBeforeCreated, "Due Date cannot be before the Created Date.")
	}
	return nil
}

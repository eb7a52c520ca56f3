package policy

import "github.com/spec-kit/ticket-portal/internal/domain"

var adminStatuses = []domain.TicketStatus{
	domain.TicketStatusNew,
	domain.TicketStatusInProgress,
	domain.TicketStatusResolved,
	domain.TicketStatusClosed,
	domain.TicketStatusAssigned,
	domain.TicketStatusOnHold,
	domain.TicketStatusReopened,
}

// AdminTransitionPolicy is the permissive editor used by administrators. It
// performs no relationship classification.
type AdminTransitionPolicy struct{}

// AllowedStatuses returns the fixed admin status list regardless of state.
func (AdminTransitionPolicy) AllowedStatuses() []domain.TicketStatus {
	return clone(adminStatuses)
}

// CanEditDueDate is always true for administrators.
func (AdminTransitionPolicy) CanEditDueDate() bool {
	return true
}

// Validate checks that the status is present and listed, and that a changed
// due date is a real date not before the ticket was created.
func (AdminTransitionPolicy) Validate(sub Submission) error {
	if sub.Status == "" {
		return validation(CodeStatusEmpty, "Status cannot be empty.")
	}
	if !contains(adminStatuses, sub.Status) {
		return validation(CodeStatusUnknown, "Status "+string(sub.Status)+" is not a known status.")
	}
	if sub.DueDate == nil || domain.SameDay(sub.PriorDueDate, sub.DueDate) {
		return nil
	}
	if sub.DueDate.IsZero() {
		return validation(CodeDueDateInvalid, "Due Date is not a valid date.")
	}
	if domain.BeforeDay(*sub.DueDate, sub.CreatedDate) {
		return validation(CodeDueDateBeforeCreated, "Due Date cannot be before the Created Date.")
	}
	return nil
}

package domain

import "time"

// SubmissionOutcome records what happened to a ticket update submission.
type SubmissionOutcome string

const (
	OutcomeAccepted SubmissionOutcome = "ACCEPTED"
	OutcomeRejected SubmissionOutcome = "REJECTED"
	OutcomeFailed   SubmissionOutcome = "FAILED"
)

// SubmissionChannel identifies which editor produced the submission.
type SubmissionChannel string

const (
	ChannelUser  SubmissionChannel = "USER"
	ChannelAdmin SubmissionChannel = "ADMIN"
)

// SubmissionAudit is an immutable trail entry for an update attempt.
type SubmissionAudit struct {
	ID              string
	TicketID        int64
	ViewerID        int64
	Channel         SubmissionChannel
	PriorStatus     TicketStatus
	SubmittedStatus TicketStatus
	DueDate         *time.Time
	Outcome         SubmissionOutcome
	Reason          string
	CreatedAt       time.Time
}

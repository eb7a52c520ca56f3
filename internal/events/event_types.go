package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventSessionEnded   EventType = "session_ended"
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventUpdateRejected EventType = "ticket_update_rejected"
	EventUserCreated    EventType = "user_created"
)

// Actor is the session that caused an event.
type Actor struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// ActorFromSession derives the actor of a session.
func ActorFromSession(sess domain.Session) Actor {
	return Actor{UserID: sess.UserID, Username: sess.Username, Role: sess.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, ticketID int64, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Team     domain.Team           `json:"team"`
	Assigned bool                  `json:"assigned"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Channel   domain.SubmissionChannel `json:"channel"`
	OldStatus domain.TicketStatus      `json:"old_status"`
	NewStatus domain.TicketStatus      `json:"new_status"`
	DueDate   string                   `json:"due_date,omitempty"`
}

// UpdateRejectedPayload payload.
type UpdateRejectedPayload struct {
	Channel   domain.SubmissionChannel `json:"channel"`
	Submitted domain.TicketStatus      `json:"submitted_status"`
	Code      string                   `json:"code"`
	Reason    string                   `json:"reason"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Username string      `json:"username"`
	Team     domain.Team `json:"team"`
	Role     domain.Role `json:"role"`
}

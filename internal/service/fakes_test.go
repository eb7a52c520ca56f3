package service

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/session"
)

// fakeGateway serves tickets from memory and records what was sent.
type fakeGateway struct {
	mu sync.Mutex

	tickets   map[int64]domain.Ticket
	lists     map[gateway.Scope][]domain.Ticket
	teamUsers map[domain.Team][]domain.TeamUser
	login     *gateway.LoginResult

	loginErr    error
	registerErr error
	updateErr   error
	createErr   error

	registered []gateway.RegisterRequest
	created    []gateway.NewTicket
	updates    []gateway.UpdatePayload
	adminCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tickets:   map[int64]domain.Ticket{},
		lists:     map[gateway.Scope][]domain.Ticket{},
		teamUsers: map[domain.Team][]domain.TeamUser{},
	}
}

func (f *fakeGateway) put(t domain.Ticket) {
	f.tickets[t.ID] = t
}

func (f *fakeGateway) Login(_ context.Context, _, _ string) (*gateway.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.login, nil
}

func (f *fakeGateway) Register(_ context.Context, _ string, req gateway.RegisterRequest) error {
	f.registered = append(f.registered, req)
	return f.registerErr
}

func (f *fakeGateway) ListTickets(_ context.Context, _ string, scope gateway.Scope) ([]domain.Ticket, error) {
	return append([]domain.Ticket(nil), f.lists[scope]...), nil
}

func (f *fakeGateway) FetchTicket(_ context.Context, _ string, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, &gateway.APIError{StatusCode: 404}
	}
	return &t, nil
}

func (f *fakeGateway) CreateTicket(_ context.Context, _ string, ticket gateway.NewTicket) error {
	f.created = append(f.created, ticket)
	return f.createErr
}

func (f *fakeGateway) TeamUsers(_ context.Context, _ string, team domain.Team) ([]domain.TeamUser, error) {
	return f.teamUsers[team], nil
}

func (f *fakeGateway) UpdateTicketAsRequesterOrAssignee(_ context.Context, _ string, payload gateway.UpdatePayload) (domain.CanonicalFields, error) {
	return f.update(payload)
}

func (f *fakeGateway) UpdateTicketAsAdmin(_ context.Context, _ string, payload gateway.UpdatePayload) (domain.CanonicalFields, error) {
	f.adminCalls++
	return f.update(payload)
}

func (f *fakeGateway) update(payload gateway.UpdatePayload) (domain.CanonicalFields, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, payload)
	if f.updateErr != nil {
		return domain.CanonicalFields{}, f.updateErr
	}
	fields := domain.CanonicalFields{Status: payload.Status, DueDate: payload.DueDate}
	if payload.Status == domain.TicketStatusResolved {
		resolved := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		fields.ResolvedDate = &resolved
	}
	return fields, nil
}

// fakeAudit keeps audit entries in memory.
type fakeAudit struct {
	entries []domain.SubmissionAudit
}

func (a *fakeAudit) Create(_ context.Context, entry *domain.SubmissionAudit) error {
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *fakeAudit) ListByTicket(_ context.Context, ticketID int64) ([]domain.SubmissionAudit, error) {
	out := []domain.SubmissionAudit{}
	for _, e := range a.entries {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

// recordingDispatcher remembers published events.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

// memoryStore is a session.Store backed by a map.
type memoryStore struct {
	sessions map[string]domain.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string]domain.Session{}}
}

func (m *memoryStore) Save(_ context.Context, sess domain.Session, _ time.Duration) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memoryStore) Load(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &sess, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

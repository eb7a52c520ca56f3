package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithHTTP(srv.URL+"/api/", srv.Client())
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/Auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann@example.com", body["email"])

		_, _ = io.WriteString(w, `{"token":"tok-1","role":"Admin","id":12,"userName":"ann","team":"QA"}`)
	})

	result, err := client.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, LoginResult{Token: "tok-1", Role: domain.RoleAdmin, UserID: 12, Username: "ann", Team: "QA"}, *result)
}

func TestLoginFailureCarriesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
	})

	_, err := client.Login(context.Background(), "ann@example.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestListTicketsDecodesWireShapes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Tickets/user/assigned", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[
			{"ticketId":1,"title":"VPN down","priority":"High","status":3,"requesterId":4,"assigneeId":null,
			 "createdDate":"2024-01-10T09:30:00","dueDate":"2024-01-20","teamMembers":[4,5]},
			{"ticketId":2,"title":"Laptop","priority":"Low","status":"Closed","requesterId":4,"assigneeId":0,
			 "createdAt":"2024-02-01T00:00:00Z","resolvedDate":"2024-02-03T10:00:00Z"},
			{"ticketId":3,"title":"Access","priority":"Medium","status":"Open","requesterId":4,"assigneeId":9,
			 "createdDate":"2024-03-01"}
		]`)
	})

	tickets, err := client.ListTickets(context.Background(), "tok", ScopeAssigned)
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	first := tickets[0]
	assert.Equal(t, domain.TicketStatusInProgress, first.Status)
	assert.True(t, first.Assignee.IsUnassigned())
	assert.Equal(t, []int64{4, 5}, first.TeamMembers)
	assert.Equal(t, "2024-01-20", domain.FormatDate(first.DueDate))
	assert.Equal(t, time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC), first.CreatedDate)

	second := tickets[1]
	assert.True(t, second.Assignee.IsUnassigned())
	assert.Nil(t, second.TeamMembers)
	assert.Equal(t, "2024-02-01", domain.FormatDate(&second.CreatedDate))
	assert.Equal(t, "2024-02-03", domain.FormatDate(second.ResolvedDate))

	assert.True(t, tickets[2].Assignee.Is(9))
}

func TestListTicketsUnknownScope(t *testing.T) {
	client := NewClientWithHTTP("http://unused", http.DefaultClient)
	_, err := client.ListTickets(context.Background(), "tok", Scope("archived"))
	assert.Error(t, err)
}

func TestFetchTicketNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Tickets/77", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchTicket(context.Background(), "tok", 77)
	assert.True(t, IsNotFound(err))
}

func TestUpdateAsRequesterReturnsCanonicalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/Tickets/self/update", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["ticketId"])
		assert.Equal(t, "Resolved", body["status"])
		assert.Equal(t, "2024-04-01T00:00:00Z", body["dueDate"])

		_, _ = io.WriteString(w, `{"status":"Resolved","dueDate":"2024-04-01T00:00:00Z","resolvedDate":"2024-03-15T12:00:00Z"}`)
	})

	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	fields, err := client.UpdateTicketAsRequesterOrAssignee(context.Background(), "tok", UpdatePayload{
		TicketID: 5,
		Status:   domain.TicketStatusResolved,
		DueDate:  &due,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, fields.Status)
	assert.Equal(t, "2024-04-01", domain.FormatDate(fields.DueDate))
	assert.Equal(t, "2024-03-15", domain.FormatDate(fields.ResolvedDate))
}

func TestUpdateAsAdminEmptyBodyEchoesPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Tickets/admin/update", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Nil(t, body["dueDate"])
		w.WriteHeader(http.StatusOK)
	})

	fields, err := client.UpdateTicketAsAdmin(context.Background(), "tok", UpdatePayload{TicketID: 5, Status: domain.TicketStatusOnHold})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOnHold, fields.Status)
	assert.Nil(t, fields.DueDate)
}

func TestCreateTicketAndTeamUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/Tickets":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2024-05-01", body["dueDate"])
			assert.Equal(t, float64(0), body["assigneeId"])
			assert.Equal(t, "None", body["team"])
			w.WriteHeader(http.StatusCreated)
		case "/api/Tickets/team/QA/users":
			_, _ = io.WriteString(w, `[{"userId":3,"username":"qa-1"}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	err := client.CreateTicket(context.Background(), "tok", NewTicket{
		Title:       "Printer",
		Description: "Jammed",
		Category:    domain.TicketCategoryIncident,
		Priority:    domain.TicketPriorityLow,
		Team:        domain.TeamNone,
		DueDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	users, err := client.TeamUsers(context.Background(), "tok", domain.TeamQA)
	require.NoError(t, err)
	assert.Equal(t, []domain.TeamUser{{UserID: 3, Username: "qa-1"}}, users)
}

func TestOversizedResponseRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `["`+strings.Repeat("x", maxResponseBytes)+`"]`)
	})

	_, err := client.TeamUsers(context.Background(), "tok", domain.TeamQA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

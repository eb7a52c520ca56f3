// Package gateway issues authenticated requests to the remote ticketing API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/domain"
)

// maxResponseBytes caps how much of an API response is read.
const maxResponseBytes = 4 << 20

// APIError is a non-2xx answer from the ticketing API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tickets api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("tickets api: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the ticketing API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.UpstreamConfig) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()})
}

// NewClientWithHTTP builds a client around an existing http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/Auth/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("login: response carried no token")
	}
	result := resp.toResult()
	return &result, nil
}

// Register creates an account. token may be empty for self registration.
func (c *Client) Register(ctx context.Context, token string, req RegisterRequest) error {
	if err := c.do(ctx, http.MethodPost, "/Auth/register", token, req, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// ListTickets reads one of the ticket list endpoints.
func (c *Client) ListTickets(ctx context.Context, token string, scope Scope) ([]domain.Ticket, error) {
	path, ok := scopePaths[scope]
	if !ok {
		return nil, fmt.Errorf("list tickets: unknown scope %q", scope)
	}
	var wire []ticketWire
	if err := c.do(ctx, http.MethodGet, path, token, nil, &wire); err != nil {
		return nil, fmt.Errorf("list %s tickets: %w", scope, err)
	}
	tickets := make([]domain.Ticket, 0, len(wire))
	for _, w := range wire {
		ticket, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list %s tickets: %w", scope, err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// FetchTicket reads a single ticket.
func (c *Client) FetchTicket(ctx context.Context, token string, id int64) (*domain.Ticket, error) {
	var wire ticketWire
	if err := c.do(ctx, http.MethodGet, "/Tickets/"+strconv.FormatInt(id, 10), token, nil, &wire); err != nil {
		return nil, fmt.Errorf("fetch ticket %d: %w", id, err)
	}
	ticket, err := wire.toDomain()
	if err != nil {
		return nil, fmt.Errorf("fetch ticket %d: %w", id, err)
	}
	return &ticket, nil
}

// CreateTicket submits a new ticket.
func (c *Client) CreateTicket(ctx context.Context, token string, ticket NewTicket) error {
	assigneeID, _ := ticket.Assignee.ID()
	req := createTicketRequest{
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Team:        ticket.Team,
		DueDate:     ticket.DueDate.UTC().Format(domain.DateLayout),
		AssigneeID:  assigneeID,
	}
	if err := c.do(ctx, http.MethodPost, "/Tickets", token, req, nil); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// TeamUsers lists the users of a team, used to pick an assignee.
func (c *Client) TeamUsers(ctx context.Context, token string, team domain.Team) ([]domain.TeamUser, error) {
	var wire []teamUser
	path := "/Tickets/team/" + url.PathEscape(string(team)) + "/users"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &wire); err != nil {
		return nil, fmt.Errorf("team %s users: %w", team, err)
	}
	users := make([]domain.TeamUser, 0, len(wire))
	for _, u := range wire {
		users = append(users, domain.TeamUser{UserID: u.UserID, Username: u.Username})
	}
	return users, nil
}

// UpdateTicketAsRequesterOrAssignee sends a non-admin status/due-date update.
func (c *Client) UpdateTicketAsRequesterOrAssignee(ctx context.Context, token string, payload UpdatePayload) (domain.CanonicalFields, error) {
	return c.update(ctx, "/Tickets/self/update", token, payload)
}

// UpdateTicketAsAdmin sends an admin status/due-date update.
func (c *Client) UpdateTicketAsAdmin(ctx context.Context, token string, payload UpdatePayload) (domain.CanonicalFields, error) {
	return c.update(ctx, "/Tickets/admin/update", token, payload)
}

func (c *Client) update(ctx context.Context, path, token string, payload UpdatePayload) (domain.CanonicalFields, error) {
	req := updateRequest{
		TicketID: payload.TicketID,
		Status:   payload.Status,
		DueDate:  isoDate(payload.DueDate),
	}
	var resp *updateResponse
	if err := c.do(ctx, http.MethodPut, path, token, req, &resp); err != nil {
		return domain.CanonicalFields{}, fmt.Errorf("update ticket %d: %w", payload.TicketID, err)
	}
	// The admin endpoint answers with an empty body; the submitted values
	// are then the canonical ones.
	if resp == nil || (resp.Status == "" && resp.DueDate == nil && resp.ResolvedDate == nil) {
		return domain.CanonicalFields{Status: payload.Status, DueDate: payload.DueDate}, nil
	}
	due, err := optionalDate(resp.DueDate)
	if err != nil {
		return domain.CanonicalFields{}, fmt.Errorf("update ticket %d dueDate: %w", payload.TicketID, err)
	}
	resolved, err := optionalDate(resp.ResolvedDate)
	if err != nil {
		return domain.CanonicalFields{}, fmt.Errorf("update ticket %d resolvedDate: %w", payload.TicketID, err)
	}
	status := resp.Status
	if status == "" {
		status = payload.Status
	}
	return domain.CanonicalFields{Status: status, DueDate: due, ResolvedDate: resolved}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(raw) > maxResponseBytes {
		return fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody apiErrorBody
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = errBody.Message
			if apiErr.Message == "" {
				apiErr.Message = errBody.Title
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

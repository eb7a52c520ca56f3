package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/api/dto"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// TicketsHandler manages the user dashboard and ticket detail endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Dashboard GET /user/dashboard.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	tab, err := service.ParseDashboardTab(c.Query("tab"))
	if err != nil {
		return err
	}
	dashboard, err := h.service.Dashboard(c.UserContext(), sess, tab, parsePage(c.Query("page")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DashboardResponse{Tab: dashboard.Tab, Tickets: dashboard.Tickets})
}

// GetTicket GET /user/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Detail(c.UserContext(), sess, id, c.QueryBool("edit", false))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketDetailResponse(detail))
}

// UpdateTicket PUT /user/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload: " + err.Error())
	}
	due, clearDue, err := parseDueDateChange(req.DueDate)
	if err != nil {
		return err
	}
	input := service.UpdateInput{Status: req.Status, DueDate: due, ClearDueDate: clearDue}
	detail, err := h.service.SubmitUpdate(c.UserContext(), sess, id, input, Notices(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketDetailResponse(detail))
}

// CreateTicket POST /user/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	due, err := parseDueDate(&req.DueDate)
	if err != nil {
		return err
	}
	input := service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Team:        req.Team,
		DueDate:     due,
		Assignee:    domain.AssigneeFromPtr(req.AssigneeID),
	}
	if err := h.service.CreateTicket(c.UserContext(), sess, input, Notices(c)); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, fiber.Map{"title": input.Title})
}

// TeamUsers GET /user/teams/:team/users.
func (h *TicketsHandler) TeamUsers(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	users, err := h.service.TeamUsers(c.UserContext(), sess, domain.Team(c.Params("team")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTeamUsersResponse(users))
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	due, err := domain.ParseOptionalDate(*raw)
	if err != nil {
		return nil, apperrors.NewValidationError("Due Date is not a valid date.", map[string]any{"due_date": *raw})
	}
	return due, nil
}

// parseDueDateChange reads an update's due_date. An absent field keeps the
// stored date and an empty string clears it.
func parseDueDateChange(raw *string) (*time.Time, bool, error) {
	if raw != nil && strings.TrimSpace(*raw) == "" {
		return nil, true, nil
	}
	due, err := parseDueDate(raw)
	return due, false, err
}

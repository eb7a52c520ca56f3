package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/api/dto"
	"github.com/spec-kit/ticket-portal/internal/service"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// AdminTicketsHandler serves the administrator ticket table and editor.
type AdminTicketsHandler struct {
	tickets *service.AdminService
	auth    *service.AuthService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(adminService *service.AdminService, authService *service.AuthService) *AdminTicketsHandler {
	return &AdminTicketsHandler{tickets: adminService, auth: authService}
}

// ListTickets GET /admin/tickets. A purely numeric search looks the ticket
// up by id.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	search := strings.TrimSpace(c.Query("search"))
	if id, convErr := strconv.ParseInt(search, 10, 64); convErr == nil && id > 0 {
		page, err := h.tickets.FindTicket(c.UserContext(), sess, id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, dto.NewAdminTicketPage(page))
	}
	page, err := h.tickets.ListTickets(c.UserContext(), sess, service.AdminQuery{
		Search: search,
		Page:   parsePage(c.Query("page")),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAdminTicketPage(page))
}

// GetTicket GET /admin/tickets/:id.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	detail, err := h.tickets.Detail(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAdminTicketDetailResponse(detail))
}

// UpdateTicket PUT /admin/tickets/:id.
func (h *AdminTicketsHandler) UpdateTicket(c *fiber.Ctx) error {
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
	input := service.AdminUpdateInput{Status: req.Status, DueDate: due, ClearDueDate: clearDue}
	detail, err := h.tickets.SubmitUpdate(c.UserContext(), sess, id, input, Notices(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAdminTicketDetailResponse(detail))
}

// AuditTrail GET /admin/tickets/:id/audit.
func (h *AdminTicketsHandler) AuditTrail(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.AuditTrail(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAuditResponse(entries))
}

// CreateUser POST /admin/users.
func (h *AdminTicketsHandler) CreateUser(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	input := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Team:     req.Team,
	}
	if err := h.auth.CreateUser(c.UserContext(), sess, input, Notices(c)); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, fiber.Map{"username": req.Username})
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/notice"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

const noticesKey = "notices"

// Notices returns the request's notice collector, creating it on first use.
func Notices(c *fiber.Ctx) *notice.Collector {
	if collector, ok := c.Locals(noticesKey).(*notice.Collector); ok {
		return collector
	}
	collector := notice.NewCollector()
	c.Locals(noticesKey, collector)
	return collector
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"data":    data,
		"notices": Notices(c).Notices(),
	})
}

func currentSession(c *fiber.Ctx) (domain.Session, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return domain.Session{}, apperrors.NewUnauthorized("session required")
	}
	return *sess, nil
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequest("ticket id must be a positive integer")
	}
	return id, nil
}

func parsePage(val string) int {
	if val == "" {
		return 1
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 1
	}
	return parsed
}

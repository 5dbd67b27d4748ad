package server

import (
	"log/slog"

	"fashionai/internal/middleware"
	"fashionai/internal/models"
	"fashionai/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parsePage reads the skip and limit query parameters. Clamping happens in
// service.Page.Normalize.
func parsePage(c *fiber.Ctx) service.Page {
	return service.Page{
		Skip:  c.QueryInt("skip", 0),
		Limit: c.QueryInt("limit", service.DefaultPageLimit),
	}
}

// mapServiceError maps a service error to its HTTP status.
func mapServiceError(err error) int {
	return models.StatusFor(err)
}

// respondError writes err with its mapped status. Server-side failures are
// logged with their cause; the client only sees the generic message.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// bind parses the request body into dst and validates it.
func (s *Server) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return s.validator.Struct(dst)
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

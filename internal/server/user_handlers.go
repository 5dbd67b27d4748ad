package server

import (
	"fashionai/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /api/users
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UserCreate true "New user"
// @Success 201 {object} models.User
// @Failure 409 {object} models.ErrorResponse
// @Router /users/ [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req models.UserCreate
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	user, err := s.authService.CreateUser(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMe handles PUT /api/users/me
// @Summary Update current user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserUpdate true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req models.UserUpdate
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	user, err := s.userService.UpdateMe(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// Logout handles POST /api/users/logout. Tokens are stateless; the client discards its copy.
// @Summary Logout
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Msg
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	return c.JSON(models.Msg{Msg: "Logged out successfully"})
}

package server

import (
	"fashionai/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/register
// @Summary Register
// @Description Create an account and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.UserCreate true "New user"
// @Success 201 {object} models.Token
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req models.UserCreate
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	token, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

// Login handles POST /api/login
// @Summary Login
// @Description OAuth2 password form; the username field carries the email
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} models.Token
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	token, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(token)
}

// SendVerificationCode handles POST /api/send-verification-code
// @Summary Send verification code
// @Description Email a 6-digit code to an unregistered address
// @Tags auth
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} models.Msg
// @Failure 409 {object} models.ErrorResponse
// @Router /send-verification-code [post]
func (s *Server) SendVerificationCode(c *fiber.Ctx) error {
	var req models.VerificationCodeRequest
	if err := c.QueryParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid query parameters"))
	}
	if req.Email == "" && len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return s.respondError(c, models.NewValidationError("Invalid request body"))
		}
	}
	if err := s.validator.Struct(&req); err != nil {
		return s.respondError(c, err)
	}

	if err := s.authService.SendVerificationCode(c.UserContext(), req.Email); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(models.Msg{Msg: "Verification code sent successfully"})
}

// VerifyAndRegister handles POST /api/verify-and-register
// @Summary Verify and register
// @Description Register with a previously emailed verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.VerifyAndRegisterRequest true "New user with code"
// @Success 201 {object} models.Token
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /verify-and-register [post]
func (s *Server) VerifyAndRegister(c *fiber.Ctx) error {
	var req models.VerifyAndRegisterRequest
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	token, err := s.authService.VerifyAndRegister(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

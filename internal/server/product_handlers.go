package server

import (
	"encoding/json"

	"fashionai/internal/models"
	"fashionai/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProduct handles POST /api/products
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProductCreate true "Product"
// @Success 201 {object} models.Product
// @Failure 400 {object} models.ErrorResponse
// @Router /products/ [post]
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	var req models.ProductCreate
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	product, err := s.productService.CreateProduct(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// ListProducts handles GET /api/products
// @Summary List products
// @Description Newest first, filtered by product_type and a case-insensitive search over prompt and creator username
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Param product_type query string false "Exact product type"
// @Param search query string false "Search text"
// @Success 200 {array} models.ProductOut
// @Router /products/ [get]
func (s *Server) ListProducts(c *fiber.Ctx) error {
	products, err := s.productService.ListProducts(c.UserContext(), service.ListProductsInput{
		UserID:      currentUserID(c),
		ProductType: c.Query("product_type"),
		Search:      c.Query("search"),
		Page:        parsePage(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(products)
}

// ListMyProducts handles GET /api/products/user
// @Summary Current user's products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} models.Product
// @Router /products/user/ [get]
func (s *Server) ListMyProducts(c *fiber.Ctx) error {
	products, err := s.productService.ListUserProducts(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(products)
}

// ListCreatedProducts handles GET /api/products/user/created
// @Summary Current user's products with creator and like state
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} models.ProductOut
// @Router /products/user/created [get]
func (s *Server) ListCreatedProducts(c *fiber.Ctx) error {
	products, err := s.productService.ListCreatedProducts(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(products)
}

// ListFavoriteProducts handles GET /api/products/user/favorites
// @Summary Products the current user liked
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} models.ProductOut
// @Router /products/user/favorites [get]
func (s *Server) ListFavoriteProducts(c *fiber.Ctx) error {
	products, err := s.productService.ListFavorites(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(products)
}

// LikeProduct handles POST /api/products/like
// @Summary Like a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LikeRequest true "Product"
// @Success 200 {object} models.Msg
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /products/like [post]
func (s *Server) LikeProduct(c *fiber.Ctx) error {
	var req models.LikeRequest
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	if err := s.productService.LikeProduct(c.UserContext(), currentUserID(c), req.ProductID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(models.Msg{Msg: "Product liked successfully"})
}

// UnlikeProduct handles POST /api/products/unlike
// @Summary Remove a like
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LikeRequest true "Product"
// @Success 200 {object} models.Msg
// @Failure 404 {object} models.ErrorResponse
// @Router /products/unlike [post]
func (s *Server) UnlikeProduct(c *fiber.Ctx) error {
	var req models.LikeRequest
	if err := s.bind(c, &req); err != nil {
		return s.respondError(c, err)
	}

	if err := s.productService.UnlikeProduct(c.UserContext(), currentUserID(c), req.ProductID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(models.Msg{Msg: "Product unliked successfully"})
}

// GenerateProductImage handles POST /api/products/generate-product-image
// @Summary Render a mockup
// @Description Forwards the JSON body to the mockup renderer and returns its response
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "Renderer request"
// @Success 200 {object} object
// @Failure 504 {object} models.ErrorResponse
// @Router /products/generate-product-image [post]
func (s *Server) GenerateProductImage(c *fiber.Ctx) error {
	// fasthttp reuses the body buffer after the handler returns.
	body := json.RawMessage(append([]byte(nil), c.Body()...))

	out, err := s.clients.Mockups.Render(c.UserContext(), body)
	if err != nil {
		return s.respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(out)
}

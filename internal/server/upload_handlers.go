package server

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"

	"fashionai/internal/models"

	"github.com/gofiber/fiber/v2"
	_ "golang.org/x/image/webp" // register decoder
)

var allowedImageFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// sniffImage returns the MIME type of data when it decodes as a supported image format.
func sniffImage(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", models.NewValidationError("File is not a supported image")
	}
	contentType, ok := allowedImageFormats[format]
	if !ok {
		return "", models.NewValidationError(fmt.Sprintf("Unsupported image format %q", format))
	}
	return contentType, nil
}

// UploadImage handles POST /api/upload-to-cloudflare
// @Summary Upload an image
// @Description Stores a JPEG, PNG, GIF or WebP image and returns its public URL
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} models.ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /upload-to-cloudflare [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return s.respondError(c, models.NewValidationError("Missing file"))
	}

	maxBytes := int64(s.config.UploadMaxSizeMB) * 1024 * 1024
	if fileHeader.Size > maxBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("File exceeds %d MB", s.config.UploadMaxSizeMB),
			Code:  models.CodeValidation,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	contentType, err := sniffImage(data)
	if err != nil {
		return s.respondError(c, err)
	}

	url, err := s.clients.Images.Upload(c.UserContext(), fileHeader.Filename, contentType, data)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(models.ImageUploadResponse{ImageURL: url})
}

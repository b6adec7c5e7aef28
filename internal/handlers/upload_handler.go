package handlers

import (
	"errors"
	"io"
	"log"

	"maison/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles admin image uploads.
type UploadHandler struct {
	service *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{
		service: service,
	}
}

// RegisterRoutes registers the upload route, admin-only.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	router.Post("/upload", auth, admin, h.HandleUpload)
}

// HandleUpload accepts one multipart image under the "image" field and
// returns the URL the stored asset is served from.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}
	if fileHeader.Size > services.MaxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   services.ErrImageTooLarge.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read upload",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadBytes+1))
	if err != nil {
		log.Printf("Error reading upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read upload",
		})
	}

	url, err := h.service.Store(data)
	if err != nil {
		if errors.Is(err, services.ErrImageTooLarge) || errors.Is(err, services.ErrUnsupportedImage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error storing upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to store image",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}

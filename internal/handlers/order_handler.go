package handlers

import (
	"errors"
	"log"

	"maison/internal/models"
	"maison/internal/repositories"
	"maison/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for the order ledger.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. Listing and placement
// require a session; the status transition is admin-only.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	router.Get("/orders", auth, h.HandleListOrders)
	router.Post("/orders", auth, h.HandlePlaceOrder)
	router.Patch("/orders/:id/status", auth, admin, h.HandleUpdateStatus)
}

// HandleListOrders returns orders filtered by the email query parameter.
// Without a filter the whole ledger is returned, which only an admin may
// do; a customer can only list their own orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	email := c.Query("email")
	role, _ := c.Locals("role").(string)
	sessionEmail, _ := c.Locals("email").(string)

	if role != models.RoleAdmin {
		if email == "" || email != sessionEmail {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You may only list your own orders",
			})
		}
	}

	orders, err := h.service.ListOrders(email)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch orders",
		})
	}
	return c.JSON(orders)
}

// HandlePlaceOrder records a checkout submission.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	order, err := h.service.PlaceOrder(req)
	if err != nil {
		log.Printf("Error placing order for %s: %v", req.Email, err)
		switch {
		case errors.Is(err, repositories.ErrProductNotFound),
			errors.Is(err, repositories.ErrUnknownVariant):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order references an unknown product",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrTotalMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order total does not match current prices",
				"error":   err.Error(),
			})
		case errors.Is(err, repositories.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Not enough stock to fulfil the order",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrEmptyOrder):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order must contain at least one item",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save order",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

// HandleUpdateStatus overwrites an order's status. An unknown order id
// is not an HTTP error: the ledger reports it as success=false.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if body.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required",
		})
	}

	ok, err := h.service.UpdateOrderStatus(orderID, body.Status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown order status",
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating status for order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update status",
		})
	}

	return c.JSON(fiber.Map{"success": ok})
}

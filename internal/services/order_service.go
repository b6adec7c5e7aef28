package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"maison/internal/models"
	"maison/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrder    = errors.New("order has no items")
	ErrTotalMismatch = errors.New("submitted total does not match catalog prices")
	ErrInvalidStatus = errors.New("invalid order status")
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// PlaceOrderRequest is the checkout payload: contact fields, the cart
// line items, the chosen payment method and the client-computed total.
type PlaceOrderRequest struct {
	Email           string             `json:"email" validate:"required,email"`
	CustomerName    string             `json:"customer_name" validate:"required"`
	Phone           string             `json:"phone"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	Items           []models.OrderItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string             `json:"payment_method" validate:"omitempty,oneof=cod prepaid COD PREPAID"`
	Total           int                `json:"total"`
}

// OrderService handles order placement and the admin status flow.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
	shippingFee int

	now func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil, in
// which case event publication is skipped.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher, shippingFee int) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		shippingFee: shippingFee,
		now:         time.Now,
	}
}

// PlaceOrder validates the checkout payload against the current catalog,
// decrements variant stock, and appends the order to the ledger.
//
// The submitted total is never trusted as-is: the subtotal is recomputed
// from current catalog prices and the request is rejected outright when
// the two disagree. Line items are stored with the recomputed prices so
// the ledger reflects what was actually charged.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var subtotal int
	processed := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item %d has quantity %d: %w", item.ProductID, item.Quantity, ErrEmptyOrder)
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.VariantByColor(item.Variant) == nil {
			return nil, fmt.Errorf("product %d variant %q: %w", item.ProductID, item.Variant, repositories.ErrUnknownVariant)
		}
		processed = append(processed, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		subtotal += product.Price * item.Quantity
	}

	method := models.PaymentPrepaid
	if strings.EqualFold(req.PaymentMethod, "cod") {
		method = models.PaymentCOD
	}

	// Cash-on-delivery orders pay the shipping fee up front and the
	// product amount at the door; prepaid orders pay everything now.
	expectedTotal := subtotal
	amountDue := 0
	if method == models.PaymentCOD {
		expectedTotal = subtotal + s.shippingFee
		amountDue = subtotal
	}
	if req.Total != expectedTotal {
		return nil, fmt.Errorf("submitted %d, catalog says %d: %w", req.Total, expectedTotal, ErrTotalMismatch)
	}

	// Decrement line by line; if any line fails, return the units the
	// earlier lines already consumed so a rejected order never moves
	// inventory.
	applied := make([]models.OrderItem, 0, len(processed))
	for _, item := range processed {
		if err := s.productRepo.DecrementVariantStock(item.ProductID, item.Variant, item.Quantity); err != nil {
			s.restoreStock(applied)
			return nil, err
		}
		applied = append(applied, item)
	}

	placedAt := s.now()
	order := &models.Order{
		ID:              newOrderID(placedAt),
		UserEmail:       req.Email,
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		Items:           processed,
		PaymentMethod:   method,
		Total:           expectedTotal,
		AmountDue:       amountDue,
		Status:          models.StatusProcessing,
		Date:            placedAt,
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.restoreStock(applied)
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id": order.ID,
		"email":    order.UserEmail,
		"total":    order.Total,
		"status":   order.Status,
	})

	return order, nil
}

// newOrderID builds a ledger ID from the placement timestamp plus a
// random suffix, so two orders landing in the same millisecond still
// get distinct primary keys.
func newOrderID(placedAt time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", placedAt.UnixMilli(), uuid.NewString()[:8])
}

// restoreStock undoes stock decrements applied before a placement
// failed. A failed restore is logged but not surfaced: the placement
// error is what the caller needs to see.
func (s *OrderService) restoreStock(items []models.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.RestoreVariantStock(item.ProductID, item.Variant, item.Quantity); err != nil {
			log.Printf("Failed to restore %d units of product %d variant %q: %v", item.Quantity, item.ProductID, item.Variant, err)
		}
	}
}

// ListOrders returns all orders, or only those placed under email when
// it is non-empty. No pagination.
func (s *OrderService) ListOrders(email string) ([]models.Order, error) {
	if email == "" {
		return s.orderRepo.GetAll()
	}
	return s.orderRepo.GetByEmail(email)
}

// GetOrderByID retrieves one order from the ledger.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus overwrites an order's status. It returns false
// without an error when the order does not exist, matching the ledger's
// soft-failure contract; an unrecognised status is a hard error.
func (s *OrderService) UpdateOrderStatus(id string, status string) (bool, error) {
	if !models.ValidStatus(status) {
		return false, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return false, nil
		}
		return false, err
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	return true, nil
}

func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish("orders", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

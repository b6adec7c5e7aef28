package models

import (
	"encoding/json"
	"time"
)

// Order statuses. The stored status is always one of these; arbitrary
// strings are rejected before they reach the repository.
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// ValidStatus reports whether s is a recognised order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Payment method tags as written to the ledger.
const (
	PaymentCOD     = "COD"
	PaymentPrepaid = "PREPAID"
)

// OrderItem is one line of an order: the product snapshot captured at
// the moment the order was placed.
type OrderItem struct {
	ProductID int    `json:"id"`
	Name      string `json:"name"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Price     int    `json:"price"`
}

// Order is an append-once ledger entry. Only the status field mutates
// after creation; orders are never deleted.
type Order struct {
	ID              string      `json:"order_id" gorm:"primaryKey;column:order_id;type:varchar(32)"`
	UserEmail       string      `json:"user_email" gorm:"column:user_email;index"`
	CustomerName    string      `json:"customer_name" gorm:"column:customer_name"`
	Phone           string      `json:"phone"`
	ShippingAddress string      `json:"shipping_address" gorm:"column:shipping_address;type:text"`
	ItemsJSON       string      `json:"-" gorm:"column:items;type:text"`
	Items           []OrderItem `json:"items" gorm:"-"`
	PaymentMethod   string      `json:"payment_method" gorm:"column:payment_method;type:varchar(16)"`
	Total           int         `json:"total"`
	AmountDue       int         `json:"product_amount_due" gorm:"column:product_amount_due"`
	Status          string      `json:"status" gorm:"type:varchar(20)"`
	Date            time.Time   `json:"date"`
}

func (Order) TableName() string { return "orders" }

// EncodeItems serializes the line items into the persisted items column.
func (o *Order) EncodeItems() error {
	raw, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	o.ItemsJSON = string(raw)
	return nil
}

// DecodeItems restores the line items from the persisted items column.
// Malformed item data leaves an empty list rather than failing the read.
func (o *Order) DecodeItems() {
	o.Items = nil
	if o.ItemsJSON != "" {
		var items []OrderItem
		if err := json.Unmarshal([]byte(o.ItemsJSON), &items); err == nil {
			o.Items = items
		}
	}
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Product categories mirror the storefront collections.
const (
	CategoryHomme   = "homme"
	CategoryFemme   = "femme"
	CategoryUnisexe = "unisexe"
	CategoryFianka  = "fianka"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryHomme, CategoryFemme, CategoryUnisexe, CategoryFianka:
		return true
	}
	return false
}

type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image,omitempty"`
	Category       string          `json:"category"`
	Size           string          `json:"size,omitempty"`
	Color          string          `json:"color,omitempty"`
	Stock          int             `json:"stock"`
	AvailableSizes []string        `json:"available_sizes,omitempty"`
	// SizeChart maps a size label to its body measurements in centimeters.
	SizeChart map[string]map[string]float64 `json:"size_chart,omitempty"`
	CreatedAt time.Time                     `json:"created_at"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"user_id,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	PromoCode       string          `json:"promo_code,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is an immutable snapshot of one cart line at checkout time.
// UnitPrice is the catalog price captured when the order was created, not
// the current catalog price.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	LineID    string          `json:"line_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidStatusTransition reports whether an order may move from one status
// to another: pending -> confirmed -> shipped -> delivered, with
// cancellation allowed from pending or confirmed only.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	}
	return false
}

type NewsletterSubscriber struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PromoCode    string    `json:"promo_code"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/models"
	"github.com/fianka/shop-api/internal/shipping"
	"github.com/fianka/shop-api/internal/store"
)

// OrderStore is the slice of the persistence layer the order endpoints
// need; *store.OrderStore satisfies it.
type OrderStore interface {
	Create(ctx context.Context, req store.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
}

type OrderHandler struct {
	orders OrderStore
}

func NewOrderHandler(orders OrderStore) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderItemRequest struct {
	Product struct {
		ID int64 `json:"id"`
	} `json:"product"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PromoCode       string                 `json:"promo_code,omitempty"`
	UserID          *int64                 `json:"user_id,omitempty"`
}

// Create handles POST /orders. The shipping address is re-validated here
// regardless of any client-side validation, and all totals are computed
// server-side.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "Order items are required")
		return
	}

	if err := shipping.Validate(req.ShippingAddress); err != nil {
		var validationErr *shipping.ValidationError
		if errors.As(err, &validationErr) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  validationErr.Error(),
				"fields": validationErr.Fields,
			})
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid shipping address")
		return
	}

	items := make([]store.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Product.ID == 0 {
			respondError(w, http.StatusBadRequest, "Invalid item - missing product information")
			return
		}
		items = append(items, store.OrderItemRequest{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	order, err := h.orders.Create(r.Context(), store.CreateOrderRequest{
		UserID:          req.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PromoCode:       req.PromoCode,
	})
	if err != nil {
		var validationErr *shipping.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  validationErr.Error(),
				"fields": validationErr.Fields,
			})
		case errors.Is(err, database.ErrEmptyOrder):
			respondError(w, http.StatusBadRequest, "Order items are required")
		case errors.Is(err, database.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, "Item quantity must be positive")
		case errors.Is(err, database.ErrProductNotFound):
			respondError(w, http.StatusBadRequest, "Invalid item - unknown product")
		default:
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Internal server error",
				"details": err.Error(),
			})
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"order":   order,
		"message": "Order created successfully",
	})
}

// ListByUser handles GET /orders?userId=N, newest first.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("userId")
	if userIDStr == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/models"
	"github.com/fianka/shop-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type AdminOrderStore interface {
	ListAll(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Stats(ctx context.Context) (*store.OrderStats, error)
}

type AdminNewsletterStore interface {
	List(ctx context.Context) ([]models.NewsletterSubscriber, error)
	Stats(ctx context.Context) (*store.NewsletterStats, error)
}

type AdminHandler struct {
	orders      AdminOrderStore
	subscribers AdminNewsletterStore
}

func NewAdminHandler(orders AdminOrderStore, subscribers AdminNewsletterStore) *AdminHandler {
	return &AdminHandler{orders: orders, subscribers: subscribers}
}

// adminOrder is the back-office view of an order: customer fields pulled
// up from the shipping address for the dashboard table.
type adminOrder struct {
	ID            string           `json:"id"`
	CustomerName  string           `json:"customerName"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerPhone string           `json:"customerPhone"`
	City          string           `json:"city"`
	PostalCode    string           `json:"postalCode"`
	Items         []adminOrderItem `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	Discount      decimal.Decimal  `json:"discount"`
	PromoCode     string           `json:"promoCode,omitempty"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"createdAt"`
}

type adminOrderItem struct {
	ID          string          `json:"id"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
}

func toAdminOrder(order models.Order) adminOrder {
	items := make([]adminOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		size, color := item.Size, item.Color
		if size == "" {
			size = "N/A"
		}
		if color == "" {
			color = "N/A"
		}
		items = append(items, adminOrderItem{
			ID:          item.LineID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
			Size:        size,
			Color:       color,
		})
	}

	return adminOrder{
		ID:            strconv.FormatInt(order.ID, 10),
		CustomerName:  fmt.Sprintf("%s %s", order.ShippingAddress.FirstName, order.ShippingAddress.LastName),
		CustomerEmail: order.ShippingAddress.Email,
		CustomerPhone: order.ShippingAddress.Phone,
		City:          order.ShippingAddress.City,
		PostalCode:    order.ShippingAddress.PostalCode,
		Items:         items,
		Total:         order.Total,
		Discount:      order.Discount,
		PromoCode:     order.PromoCode,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListOrders handles GET /admin/orders with offset pagination.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := h.orders.ListAll(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	orders, _ := result.Items.([]models.Order)
	transformed := make([]adminOrder, 0, len(orders))
	for _, order := range orders {
		transformed = append(transformed, toAdminOrder(order))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"orders":      transformed,
		"total":       result.Total,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_pages": result.TotalPages,
	})
}

// UpdateOrderStatus handles PATCH /admin/orders/{id}/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, database.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, database.ErrInvalidStatusTransition):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order status updated",
	})
}

// OrderStats handles GET /admin/orders/stats.
func (h *AdminHandler) OrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch order stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"total":     stats.Total,
		"recent":    stats.Recent,
		"by_status": stats.ByStatus,
	})
}

// ListSubscribers handles GET /admin/newsletter.
func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.subscribers.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch subscribers")
		return
	}
	if subscribers == nil {
		subscribers = []models.NewsletterSubscriber{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"subscribers": subscribers,
	})
}

// SubscriberStats handles GET /admin/newsletter/stats.
func (h *AdminHandler) SubscriberStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subscribers.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch newsletter stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"total":   stats.Total,
		"recent":  stats.Recent,
	})
}

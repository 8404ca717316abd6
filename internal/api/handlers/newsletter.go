package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/mailer"
	"github.com/fianka/shop-api/internal/models"
	"github.com/fianka/shop-api/internal/promo"
)

type NewsletterStore interface {
	Subscribe(ctx context.Context, email, promoCode string) (*models.NewsletterSubscriber, error)
}

type NewsletterHandler struct {
	subscribers NewsletterStore
	mail        mailer.Sender
	logger      *slog.Logger
}

func NewNewsletterHandler(subscribers NewsletterStore, mail mailer.Sender, logger *slog.Logger) *NewsletterHandler {
	return &NewsletterHandler{subscribers: subscribers, mail: mail, logger: logger}
}

// Subscribe handles POST /newsletter: stores the subscriber and emails
// the welcome promo code.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	subscriber, err := h.subscribers.Subscribe(r.Context(), req.Email, promo.WelcomeCode)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	msg, err := mailer.WelcomeEmail(subscriber.Email, subscriber.PromoCode)
	if err == nil {
		err = h.mail.Send(r.Context(), msg)
	}
	if err != nil {
		h.logger.Error("send welcome email", "email", subscriber.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to send welcome email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Inscription réussie ! Vérifiez votre email pour votre code promo.",
		"subscriber": subscriber,
	})
}

// SendInvoice handles POST /invoice-email: re-reads the persisted order
// and mails its invoice to the shipping address email.
type InvoiceHandler struct {
	orders OrderStore
	mail   mailer.Sender
	logger *slog.Logger
}

func NewInvoiceHandler(orders OrderStore, mail mailer.Sender, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{orders: orders, mail: mail, logger: logger}
}

func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID int64 `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orders.Get(r.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	msg, err := mailer.InvoiceEmail(order)
	if err == nil {
		err = h.mail.Send(r.Context(), msg)
	}
	if err != nil {
		h.logger.Error("send invoice email", "order_id", order.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to send invoice email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Invoice email sent",
	})
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fianka/shop-api/internal/models"
)

type NewsletterStore struct {
	db *sql.DB
}

func NewNewsletterStore(db *sql.DB) *NewsletterStore {
	return &NewsletterStore{db: db}
}

// Subscribe records an email with its welcome promo code. Subscribing an
// already-registered email is idempotent and returns the existing row.
func (s *NewsletterStore) Subscribe(ctx context.Context, email, promoCode string) (*models.NewsletterSubscriber, error) {
	sub := &models.NewsletterSubscriber{}

	query := `
		INSERT INTO newsletter_subscribers (email, promo_code, subscribed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, promo_code, subscribed_at`

	err := s.db.QueryRowContext(ctx, query, strings.ToLower(email), promoCode).Scan(
		&sub.ID,
		&sub.Email,
		&sub.PromoCode,
		&sub.SubscribedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	return sub, nil
}

func (s *NewsletterStore) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, promo_code, subscribed_at
		 FROM newsletter_subscribers
		 ORDER BY subscribed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.NewsletterSubscriber
	for rows.Next() {
		var sub models.NewsletterSubscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.PromoCode, &sub.SubscribedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return subs, nil
}

type NewsletterStats struct {
	Total  int64 `json:"total"`
	Recent int64 `json:"recent"`
}

func (s *NewsletterStore) Stats(ctx context.Context) (*NewsletterStats, error) {
	stats := &NewsletterStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE subscribed_at > NOW() - INTERVAL '7 days')
		 FROM newsletter_subscribers`).Scan(&stats.Total, &stats.Recent)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	return stats, nil
}

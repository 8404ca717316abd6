package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/models"
	"github.com/fianka/shop-api/internal/promo"
	"github.com/fianka/shop-api/internal/shipping"
	"github.com/shopspring/decimal"
)

type OrderStore struct {
	db       *sql.DB
	registry *promo.Registry
}

func NewOrderStore(db *sql.DB, registry *promo.Registry) *OrderStore {
	return &OrderStore{db: db, registry: registry}
}

type OrderItemRequest struct {
	ProductID int64
	Quantity  int
	Size      string
	Color     string
}

type CreateOrderRequest struct {
	UserID          *int64
	Items           []OrderItemRequest
	ShippingAddress models.ShippingAddress
	PromoCode       string
}

// Create materializes a cart snapshot into a durable order. Monetary
// totals are computed here from the catalog price at order time and the
// promo registry; client-supplied prices and totals are never trusted.
// The order header and all line items are written in one transaction, so
// a failure leaves nothing behind.
func (s *OrderStore) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, database.ErrInvalidQuantity)
		}
	}
	if err := shipping.Validate(req.ShippingAddress); err != nil {
		return nil, err
	}

	addressBlob, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping address: %w", err)
	}

	var orderID int64
	err = database.WithRetry(ctx, s.db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		subtotal := decimal.Zero
		prices := make(map[int64]decimal.Decimal, len(req.Items))

		for _, item := range req.Items {
			price, ok := prices[item.ProductID]
			if !ok {
				err := tx.QueryRowContext(ctx,
					`SELECT price FROM products WHERE id = $1`,
					item.ProductID).Scan(&price)
				if err != nil {
					if err == sql.ErrNoRows {
						return fmt.Errorf("product %d: %w", item.ProductID, database.ErrProductNotFound)
					}
					return fmt.Errorf("fetch product %d: %w", item.ProductID, err)
				}
				prices[item.ProductID] = price
			}
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		// The registry, not the caller, decides the discount. An invalid
		// or revoked code simply contributes zero and is not recorded.
		discount := s.registry.DiscountAmount(subtotal, req.PromoCode)
		var appliedCode sql.NullString
		if s.registry.Validate(req.PromoCode).Valid {
			appliedCode = sql.NullString{String: promo.Normalize(req.PromoCode), Valid: true}
		}
		total := subtotal.Sub(discount)

		var userID sql.NullInt64
		if req.UserID != nil {
			userID = sql.NullInt64{Int64: *req.UserID, Valid: true}
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, shipping_address, subtotal, discount, total, promo_code, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			 RETURNING id`,
			userID, addressBlob, subtotal, discount, total, appliedCode, models.OrderStatusPending).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, size, color, unit_price, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
				orderID, item.ProductID, item.Quantity,
				nullString(item.Size), nullString(item.Color), prices[item.ProductID])
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, orderID)
}

// Get returns the order header joined with its line items; display fields
// (name, image, category) are resolved against the current catalog while
// unit prices stay as captured at order time.
func (s *OrderStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.scanOrderHeader(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, shipping_address, subtotal, discount, total, promo_code, status, created_at, updated_at
		 FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, p.name, p.image, p.category,
		        oi.quantity, oi.size, oi.color, oi.unit_price
		 FROM order_items oi
		 JOIN products p ON oi.product_id = p.id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var image sql.NullString
		var size, color sql.NullString
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&image,
			&item.Category,
			&item.Quantity,
			&size,
			&color,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Image = image.String
		item.Size = size.String
		item.Color = color.String
		item.LineID = lineID(item.ProductID, item.Size, item.Color)
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return order, nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// ListAll returns every order page by page, newest first, for the admin
// back-office.
func (s *OrderStore) ListAll(ctx context.Context, page, pageSize int) (*OffsetPage, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	return NewOffsetPage(orders, total, page, pageSize), nil
}

// UpdateStatus moves an order along the pending -> confirmed -> shipped ->
// delivered chain; cancellation is only allowed from pending or confirmed.
// Any other transition is rejected.
func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return fmt.Errorf("unknown status %q: %w", status, database.ErrInvalidStatusTransition)
	}

	return database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if !models.ValidStatusTransition(current, status) {
			return fmt.Errorf("%s -> %s: %w", current, status, database.ErrInvalidStatusTransition)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
}

type OrderStats struct {
	Total    int64            `json:"total"`
	Recent   int64            `json:"recent"`
	ByStatus map[string]int64 `json:"by_status"`
}

// Stats summarizes order volume for the admin dashboard. Recent counts
// orders from the last seven days.
func (s *OrderStore) Stats(ctx context.Context) (*OrderStats, error) {
	stats := &OrderStats{ByStatus: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '7 days')
		 FROM orders`).Scan(&stats.Total, &stats.Recent)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stats, nil
}

func (s *OrderStore) scanOrderHeader(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	var userID sql.NullInt64
	var addressBlob []byte
	var promoCode sql.NullString

	err := row.Scan(
		&order.ID,
		&userID,
		&addressBlob,
		&order.Subtotal,
		&order.Discount,
		&order.Total,
		&promoCode,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		order.UserID = &userID.Int64
	}
	order.PromoCode = promoCode.String
	if err := json.Unmarshal(addressBlob, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	return order, nil
}

// lineID reproduces the cart line identity format used for display:
// "{productId}-{size|default}-{color|default}".
func lineID(productID int64, size, color string) string {
	if size == "" {
		size = "default"
	}
	if color == "" {
		color = "default"
	}
	return fmt.Sprintf("%d-%s-%s", productID, size, color)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/models"
	"github.com/fianka/shop-api/internal/promo"
	"github.com/fianka/shop-api/internal/store"
)

func createTestProduct(t *testing.T, db *sql.DB, name, category, price string) *models.Product {
	t.Helper()
	products := store.NewProductStore(db)
	product, err := products.Create(context.Background(), models.Product{
		Name:           name,
		Description:    "Article de test",
		Price:          decimal.RequireFromString(price),
		Category:       category,
		Stock:          50,
		AvailableSizes: []string{"S", "M", "L"},
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return product
}

func TestCreateOrderComputesTotals(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Totaux", models.CategoryHomme, "92.00")

	order, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 2, Size: "M"},
		},
		ShippingAddress: testShippingAddress(),
		PromoCode:       "fiankewi-overt31",
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if order.ID == 0 {
		t.Error("Order ID should not be 0")
	}
	if !order.Subtotal.Equal(decimal.RequireFromString("184.00")) {
		t.Errorf("Expected subtotal 184.00, got %s", order.Subtotal)
	}
	if !order.Discount.Equal(decimal.RequireFromString("18.40")) {
		t.Errorf("Expected discount 18.40, got %s", order.Discount)
	}
	if !order.Total.Equal(decimal.RequireFromString("165.60")) {
		t.Errorf("Expected total 165.60, got %s", order.Total)
	}
	if order.PromoCode != "FIANKEWI-OVERT31" {
		t.Errorf("Expected normalized promo code, got %q", order.PromoCode)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected status pending, got %q", order.Status)
	}

	if len(order.Items) != 1 {
		t.Fatalf("Expected 1 order item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if !item.UnitPrice.Equal(decimal.RequireFromString("92.00")) {
		t.Errorf("Expected unit price 92.00, got %s", item.UnitPrice)
	}
	if item.Size != "M" {
		t.Errorf("Expected size M, got %q", item.Size)
	}
	wantLineID := fmt.Sprintf("%d-M-default", product.ID)
	if item.LineID != wantLineID {
		t.Errorf("Expected line id %s, got %s", wantLineID, item.LineID)
	}

	if order.ShippingAddress.Phone != "21234567" {
		t.Errorf("Expected persisted phone, got %q", order.ShippingAddress.Phone)
	}
}

func TestCreateOrderInvalidPromoIgnored(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Promo", models.CategoryFemme, "88.00")

	order, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: testShippingAddress(),
		PromoCode:       "WELCOME10",
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if !order.Discount.IsZero() {
		t.Errorf("Expected zero discount, got %s", order.Discount)
	}
	if order.PromoCode != "" {
		t.Errorf("Expected no stored promo code, got %q", order.PromoCode)
	}
	if !order.Total.Equal(order.Subtotal) {
		t.Errorf("Expected total %s to equal subtotal %s", order.Total, order.Subtotal)
	}
}

func TestCreateOrderUnknownProductRollsBack(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Rollback", models.CategoryHomme, "92.00")

	var before int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&before); err != nil {
		t.Fatalf("Count orders: %v", err)
	}

	_, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: 999999, Quantity: 1},
		},
		ShippingAddress: testShippingAddress(),
	})
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found error, got: %v", err)
	}

	var after int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&after); err != nil {
		t.Fatalf("Count orders: %v", err)
	}
	if after != before {
		t.Errorf("Expected no new orders after rollback, had %d now %d", before, after)
	}
}

func TestCreateOrderRejectsBadAddress(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Adresse", models.CategoryHomme, "92.00")

	addr := testShippingAddress()
	addr.Phone = "61234567"

	_, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: addr,
	})
	if err == nil {
		t.Fatal("Expected validation error for bad phone prefix")
	}
}

func TestOrderCapturesPriceAtCheckout(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Prix", models.CategoryHomme, "92.00")

	order, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if _, err := db.Exec(`UPDATE products SET price = 120.00 WHERE id = $1`, product.ID); err != nil {
		t.Fatalf("Update price: %v", err)
	}

	reloaded, err := orders.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if !reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("92.00")) {
		t.Errorf("Expected captured price 92.00, got %s", reloaded.Items[0].UnitPrice)
	}
	if !reloaded.Subtotal.Equal(decimal.RequireFromString("92.00")) {
		t.Errorf("Expected subtotal unchanged at 92.00, got %s", reloaded.Subtotal)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Statut", models.CategoryHomme, "92.00")

	order, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		if err := orders.UpdateStatus(ctx, order.ID, status); err != nil {
			t.Fatalf("Update status to %s: %v", status, err)
		}
	}

	err = orders.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
	if !errors.Is(err, database.ErrInvalidStatusTransition) {
		t.Errorf("Expected invalid transition error, got: %v", err)
	}

	reloaded, err := orders.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if reloaded.Status != models.OrderStatusDelivered {
		t.Errorf("Expected status delivered, got %q", reloaded.Status)
	}

	err = orders.UpdateStatus(ctx, 999999, models.OrderStatusConfirmed)
	if !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected order not found error, got: %v", err)
	}
}

func TestCancelPendingOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Annulation", models.CategoryHomme, "92.00")

	order, err := orders.Create(ctx, store.CreateOrderRequest{
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if err := orders.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled); err != nil {
		t.Fatalf("Cancel pending order: %v", err)
	}

	err = orders.UpdateStatus(ctx, order.ID, models.OrderStatusConfirmed)
	if !errors.Is(err, database.ErrInvalidStatusTransition) {
		t.Errorf("Expected invalid transition out of cancelled, got: %v", err)
	}
}

func TestListOrdersByUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	users := store.NewUserStore(db)
	product := createTestProduct(t, db, "Pull Test Historique", models.CategoryHomme, "92.00")

	user, err := users.Create(ctx, "Amira Ben Salah", "amira@example.com", "secret123")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	var created []int64
	for i := 0; i < 3; i++ {
		order, err := orders.Create(ctx, store.CreateOrderRequest{
			UserID: &user.ID,
			Items: []store.OrderItemRequest{
				{ProductID: product.ID, Quantity: 1},
			},
			ShippingAddress: testShippingAddress(),
		})
		if err != nil {
			t.Fatalf("Create order %d: %v", i, err)
		}
		created = append(created, order.ID)
	}

	listed, err := orders.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("List orders: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 orders, got %d", len(listed))
	}

	// Newest first.
	for i := range listed {
		want := created[len(created)-1-i]
		if listed[i].ID != want {
			t.Errorf("Position %d: expected order %d, got %d", i, want, listed[i].ID)
		}
	}
}

func TestOrderStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := store.NewOrderStore(db, promo.NewRegistry())
	product := createTestProduct(t, db, "Pull Test Stats", models.CategoryHomme, "92.00")

	for i := 0; i < 2; i++ {
		if _, err := orders.Create(ctx, store.CreateOrderRequest{
			Items: []store.OrderItemRequest{
				{ProductID: product.ID, Quantity: 1},
			},
			ShippingAddress: testShippingAddress(),
		}); err != nil {
			t.Fatalf("Create order %d: %v", i, err)
		}
	}

	stats, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("Order stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Expected 2 total orders, got %d", stats.Total)
	}
	if stats.Recent != 2 {
		t.Errorf("Expected 2 recent orders, got %d", stats.Recent)
	}
	if stats.ByStatus[models.OrderStatusPending] != 2 {
		t.Errorf("Expected 2 pending orders, got %d", stats.ByStatus[models.OrderStatusPending])
	}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/models"
)

const searchResultLimit = 20

const productColumns = `id, name, description, price, image, category, size, color, stock, available_sizes, size_chart, created_at, updated_at`

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	sizes, err := json.Marshal(p.AvailableSizes)
	if err != nil {
		return nil, fmt.Errorf("marshal available sizes: %w", err)
	}
	chart, err := json.Marshal(p.SizeChart)
	if err != nil {
		return nil, fmt.Errorf("marshal size chart: %w", err)
	}

	query := `
		INSERT INTO products (name, description, price, image, category, size, color, stock, available_sizes, size_chart, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + productColumns

	row := s.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.Image, p.Category,
		p.Size, p.Color, p.Stock, sizes, chart)

	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *ProductStore) Get(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListByCategory returns the catalog filtered by collection, or the whole
// catalog when category is empty. Newest products come first.
func (s *ProductStore) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	args := []interface{}{}
	if category != "" {
		query = `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC`
		args = append(args, category)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Search does a case-insensitive substring match over name, description
// and category. Name matches rank ahead of the rest and results are
// capped at 20. An empty query yields an empty result set, not an error.
func (s *ProductStore) Search(ctx context.Context, query string) ([]models.Product, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []models.Product{}, nil
	}

	pattern := "%" + trimmed + "%"
	q := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
		ORDER BY (name ILIKE $1) DESC, created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, q, pattern, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	var description, image, size, color sql.NullString
	var sizes, chart []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&image,
		&product.Category,
		&size,
		&color,
		&product.Stock,
		&sizes,
		&chart,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Description = description.String
	product.Image = image.String
	product.Size = size.String
	product.Color = color.String

	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &product.AvailableSizes); err != nil {
			return nil, fmt.Errorf("unmarshal available sizes: %w", err)
		}
	}
	if len(chart) > 0 {
		if err := json.Unmarshal(chart, &product.SizeChart); err != nil {
			return nil, fmt.Errorf("unmarshal size chart: %w", err)
		}
	}

	return product, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return products, nil
}

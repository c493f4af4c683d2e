package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"catalog-api/internal/domain"
)

// ProductReadRepository assembles the denormalized product views and the
// aggregate statistics. SKUs come back encrypted; decryption happens in the
// service layer.
type ProductReadRepository interface {
	List(ctx context.Context) ([]*domain.ProductView, error)
	FindByID(ctx context.Context, id int64) (*domain.ProductDetail, error)
	HighestPricePerCategory(ctx context.Context) ([]*domain.CategoryMaxPrice, error)
	CountByPriceRange(ctx context.Context) ([]*domain.PriceRangeCount, error)
	ListWithoutMedia(ctx context.Context) ([]*domain.ProductIDName, error)
}

type productReadRepository struct {
	db *sql.DB
}

// NewProductReadRepository creates a new instance of ProductReadRepository
func NewProductReadRepository(db *sql.DB) ProductReadRepository {
	return &productReadRepository{db: db}
}

// List retrieves all products with their category name, material names and
// media URLs aggregated per product.
func (r *productReadRepository) List(ctx context.Context) ([]*domain.ProductView, error) {
	query := `
		SELECT
			p.product_id,
			p.sku,
			p.product_name,
			c.category_name,
			p.price,
			string_agg(DISTINCT m.material_name, ',') AS materials,
			string_agg(DISTINCT pm.url, ',') AS image_urls
		FROM product p
		JOIN category c ON p.category_id = c.category_id
		LEFT JOIN product_material pmat ON p.product_id = pmat.product_id
		LEFT JOIN material m ON pmat.material_id = m.material_id
		LEFT JOIN product_media pm ON p.product_id = pm.product_id
		GROUP BY p.product_id, c.category_name
		ORDER BY p.product_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductView{}
	for rows.Next() {
		view := &domain.ProductView{}
		var materials, imageURLs sql.NullString

		err := rows.Scan(
			&view.ProductID,
			&view.SKU,
			&view.ProductName,
			&view.CategoryName,
			&view.Price,
			&materials,
			&imageURLs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		view.Materials = splitAgg(materials)
		view.ImageURLs = splitAgg(imageURLs)
		products = append(products, view)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves one product with material ids (rather than names) so
// the result can be round-tripped into a replace request.
func (r *productReadRepository) FindByID(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	query := `
		SELECT
			p.product_id,
			p.sku,
			p.product_name,
			p.category_id,
			c.category_name,
			p.price,
			string_agg(DISTINCT pmat.material_id::text, ',') AS materials,
			string_agg(DISTINCT pm.url, ',') AS image_urls
		FROM product p
		JOIN category c ON p.category_id = c.category_id
		LEFT JOIN product_material pmat ON p.product_id = pmat.product_id
		LEFT JOIN product_media pm ON p.product_id = pm.product_id
		WHERE p.product_id = $1
		GROUP BY p.product_id, c.category_name
	`

	detail := &domain.ProductDetail{}
	var materials, imageURLs sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ProductID,
		&detail.SKU,
		&detail.ProductName,
		&detail.CategoryID,
		&detail.CategoryName,
		&detail.Price,
		&materials,
		&imageURLs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	detail.MaterialIDs, err = splitAggIDs(materials)
	if err != nil {
		return nil, fmt.Errorf("failed to parse material ids: %w", err)
	}
	detail.ImageURLs = splitAgg(imageURLs)

	return detail, nil
}

// HighestPricePerCategory returns the most expensive product price in each
// category.
func (r *productReadRepository) HighestPricePerCategory(ctx context.Context) ([]*domain.CategoryMaxPrice, error) {
	query := `
		SELECT c.category_name, MAX(p.price) AS highest_price
		FROM product p
		JOIN category c ON p.category_id = c.category_id
		GROUP BY c.category_name
		ORDER BY c.category_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get highest price per category: %w", err)
	}
	defer rows.Close()

	result := []*domain.CategoryMaxPrice{}
	for rows.Next() {
		row := &domain.CategoryMaxPrice{}
		if err := rows.Scan(&row.CategoryName, &row.HighestPrice); err != nil {
			return nil, fmt.Errorf("failed to scan category price: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category prices: %w", err)
	}

	return result, nil
}

// CountByPriceRange buckets products into the three fixed price ranges.
func (r *productReadRepository) CountByPriceRange(ctx context.Context) ([]*domain.PriceRangeCount, error) {
	query := `
		SELECT
			CASE
				WHEN p.price <= 500 THEN '0-500'
				WHEN p.price <= 1000 THEN '501-1000'
				ELSE '1000+'
			END AS price_range,
			COUNT(*) AS product_count
		FROM product p
		GROUP BY price_range
		ORDER BY price_range
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by price range: %w", err)
	}
	defer rows.Close()

	result := []*domain.PriceRangeCount{}
	for rows.Next() {
		row := &domain.PriceRangeCount{}
		if err := rows.Scan(&row.PriceRange, &row.ProductCount); err != nil {
			return nil, fmt.Errorf("failed to scan price range count: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price range counts: %w", err)
	}

	return result, nil
}

// ListWithoutMedia returns products that have no media rows at all.
func (r *productReadRepository) ListWithoutMedia(ctx context.Context) ([]*domain.ProductIDName, error) {
	query := `
		SELECT p.product_id, p.product_name
		FROM product p
		LEFT JOIN product_media pm ON p.product_id = pm.product_id
		WHERE pm.product_id IS NULL
		ORDER BY p.product_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products without media: %w", err)
	}
	defer rows.Close()

	result := []*domain.ProductIDName{}
	for rows.Next() {
		row := &domain.ProductIDName{}
		if err := rows.Scan(&row.ProductID, &row.ProductName); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return result, nil
}

// splitAgg unpacks a string_agg value. A NULL aggregate (no joined rows)
// becomes an empty slice, not nil, so JSON renders [] rather than null.
func splitAgg(agg sql.NullString) []string {
	if !agg.Valid || agg.String == "" {
		return []string{}
	}
	return strings.Split(agg.String, ",")
}

func splitAggIDs(agg sql.NullString) ([]int64, error) {
	parts := splitAgg(agg)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

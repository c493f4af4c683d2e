package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"catalog-api/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateSKU     = errors.New("duplicate SKU is not allowed")
	ErrCategoryNotFound = errors.New("category not found")
	ErrMaterialNotFound = errors.New("material not found")
)

// ProductRepository defines the write path for products. Each operation is a
// single transaction; the product row and its material/media rows change
// together or not at all. The SKU on the product passed in must already be
// encrypted — this layer never sees plaintext SKUs.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product, materialIDs []int64, mediaURLs []string) (int64, error)
	Replace(ctx context.Context, product *domain.Product, materialIDs []int64, mediaURLs []string) error
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a product together with its material associations and media
// rows. Fails with ErrDuplicateSKU when another product already stores the
// same encrypted SKU.
func (r *productRepository) Create(ctx context.Context, product *domain.Product, materialIDs []int64, mediaURLs []string) (int64, error) {
	var productID int64

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkDuplicateSKU(ctx, tx, product.SKU, 0); err != nil {
			return err
		}

		query := `
			INSERT INTO product (sku, product_name, category_id, price)
			VALUES ($1, $2, $3, $4)
			RETURNING product_id
		`
		err := tx.QueryRowContext(ctx, query, product.SKU, product.ProductName, product.CategoryID, product.Price).Scan(&productID)
		if err != nil {
			return classifyError(err, "failed to create product")
		}

		if err := insertMaterials(ctx, tx, productID, materialIDs); err != nil {
			return err
		}

		return insertMedia(ctx, tx, productID, mediaURLs)
	})
	if err != nil {
		return 0, err
	}

	return productID, nil
}

// Replace updates the product row in place and fully replaces its material
// set and media list. Fails with ErrProductNotFound if the id does not
// exist, and with ErrDuplicateSKU if a different product stores the same
// encrypted SKU.
func (r *productRepository) Replace(ctx context.Context, product *domain.Product, materialIDs []int64, mediaURLs []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkDuplicateSKU(ctx, tx, product.SKU, product.ProductID); err != nil {
			return err
		}

		query := `
			UPDATE product
			SET sku = $2, product_name = $3, category_id = $4, price = $5
			WHERE product_id = $1
		`
		result, err := tx.ExecContext(ctx, query, product.ProductID, product.SKU, product.ProductName, product.CategoryID, product.Price)
		if err != nil {
			return classifyError(err, "failed to update product")
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrProductNotFound
		}

		// Full replacement, not a diff: drop all associations and rebuild
		// from the request.
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_material WHERE product_id = $1`, product.ProductID); err != nil {
			return fmt.Errorf("failed to clear product materials: %w", err)
		}
		if err := insertMaterials(ctx, tx, product.ProductID, materialIDs); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_media WHERE product_id = $1`, product.ProductID); err != nil {
			return fmt.Errorf("failed to clear product media: %w", err)
		}
		return insertMedia(ctx, tx, product.ProductID, mediaURLs)
	})
}

// Delete removes a product and its dependent rows, children first. Deleting
// an id with no rows succeeds: the postcondition (no rows for this id)
// already holds, and treating it as an error would make retries fail.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_media WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete product media: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_material WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete product materials: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return nil
	})
}

// checkDuplicateSKU fails with ErrDuplicateSKU when a product other than
// excludeID stores the given encrypted SKU. The unique index on product.sku
// backs this check up for writes racing past it concurrently.
func checkDuplicateSKU(ctx context.Context, tx *sql.Tx, encryptedSKU string, excludeID int64) error {
	var existingID int64
	err := tx.QueryRowContext(ctx,
		`SELECT product_id FROM product WHERE sku = $1 AND product_id != $2`,
		encryptedSKU, excludeID,
	).Scan(&existingID)

	if err == nil {
		return ErrDuplicateSKU
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate SKU: %w", err)
	}
	return nil
}

// insertMaterials attaches each material id to the product. Duplicate ids in
// the input collapse onto the composite primary key.
func insertMaterials(ctx context.Context, tx *sql.Tx, productID int64, materialIDs []int64) error {
	query := `
		INSERT INTO product_material (product_id, material_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, material_id) DO NOTHING
	`
	for _, materialID := range materialIDs {
		if _, err := tx.ExecContext(ctx, query, productID, materialID); err != nil {
			return classifyError(err, "failed to attach material")
		}
	}
	return nil
}

// insertMedia inserts media rows one by one so the generated media_id order
// follows the input order.
func insertMedia(ctx context.Context, tx *sql.Tx, productID int64, mediaURLs []string) error {
	query := `INSERT INTO product_media (product_id, url) VALUES ($1, $2)`
	for _, url := range mediaURLs {
		if _, err := tx.ExecContext(ctx, query, productID, url); err != nil {
			return fmt.Errorf("failed to attach media: %w", err)
		}
	}
	return nil
}

// classifyError maps constraint violations onto the repository's sentinel
// errors; anything else is wrapped as a generic persistence failure.
func classifyError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "product_sku_key" {
				return ErrDuplicateSKU
			}
		case "23503": // foreign_key_violation
			switch pgErr.ConstraintName {
			case "fk_product_category":
				return ErrCategoryNotFound
			case "fk_product_material_material":
				return ErrMaterialNotFound
			}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

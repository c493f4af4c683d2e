package repository

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-api/internal/domain"
)

// MaterialRepository defines read access to materials. Materials are
// pre-seeded; the API does not modify them.
type MaterialRepository interface {
	List(ctx context.Context) ([]*domain.Material, error)
}

type materialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new instance of MaterialRepository
func NewMaterialRepository(db *sql.DB) MaterialRepository {
	return &materialRepository{db: db}
}

// List retrieves all materials
func (r *materialRepository) List(ctx context.Context) ([]*domain.Material, error) {
	query := `
		SELECT material_id, material_name
		FROM material
		ORDER BY material_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	materials := []*domain.Material{}
	for rows.Next() {
		material := &domain.Material{}
		if err := rows.Scan(&material.MaterialID, &material.MaterialName); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, material)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating materials: %w", err)
	}

	return materials, nil
}

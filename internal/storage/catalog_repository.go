package storage

import (
	"context"

	"barberdesk/internal/availability"
	"barberdesk/internal/model"
	"barberdesk/libs/db"
)

type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, duration_mins, price::text, COALESCE(description, ''), is_active, created_at
		FROM services
		WHERE is_active
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.DurationMins, &svc.Price, &svc.Description, &svc.IsActive, &svc.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return services, nil
}

func (r *CatalogRepository) GetByName(ctx context.Context, name string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, duration_mins, price::text, COALESCE(description, ''), is_active, created_at
		FROM services
		WHERE name = $1
	`, name).Scan(&svc.ID, &svc.Name, &svc.DurationMins, &svc.Price, &svc.Description, &svc.IsActive, &svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *CatalogRepository) Create(ctx context.Context, svc *model.Service) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (name, duration_mins, price, description, is_active)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id
	`, svc.Name, svc.DurationMins, svc.Price, svc.Description, svc.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *CatalogRepository) Update(ctx context.Context, svc *model.Service) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE services
		SET duration_mins = $2,
			price = $3::numeric,
			description = $4,
			is_active = $5
		WHERE id = $1
	`, svc.ID, svc.DurationMins, svc.Price, svc.Description, svc.IsActive)
	return err
}

func (r *CatalogRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE services
		SET is_active = false
		WHERE id = $1
	`, id)
	return err
}

// LoadCatalog builds the in-memory duration map the availability engine
// consults. Only active services are loaded; names absent from the map fall
// back to the engine's default duration.
func (r *CatalogRepository) LoadCatalog(ctx context.Context) (availability.Catalog, error) {
	services, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(availability.Catalog, len(services))
	for _, svc := range services {
		catalog[svc.Name] = svc.DurationMins
	}
	return catalog, nil
}

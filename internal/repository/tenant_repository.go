package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/talentwire/socialcast/internal/models"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Tenant, error)
}

type tenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	query := `SELECT id, name, demo_mode, created_at FROM tenants WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.DemoMode, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &t, nil
}

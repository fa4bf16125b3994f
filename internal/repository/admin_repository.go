package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
)

const adminColumns = "id, name, account_id, created_at, updated_at"

// AdminRepository manages administrator profiles.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// List returns all administrators.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins ORDER BY id ASC", adminColumns)
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// FindByID fetches an administrator.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE id = $1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FirstID returns the lowest administrator id, or sql.ErrNoRows when none exist.
func (r *AdminRepository) FirstID(ctx context.Context) (string, error) {
	var id string
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM admins ORDER BY id ASC LIMIT 1`); err != nil {
		return "", err
	}
	return id, nil
}

// Update renames an administrator.
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	query := fmt.Sprintf(`UPDATE admins SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING %s`, adminColumns)
	if err := r.db.GetContext(ctx, admin, query, admin.ID, admin.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update admin: %w", err)
	}
	return nil
}

// Delete removes the administrator and its account together.
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	err := deleteProfile(ctx, r.db,
		`SELECT account_id FROM admins WHERE id = $1 FOR UPDATE`,
		`DELETE FROM admins WHERE id = $1`,
		id, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete admin: %w", err)
	}
	return nil
}

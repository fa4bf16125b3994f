package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/database"
)

// AccountRepository manages login accounts and profile registration.
type AccountRepository struct {
	db  *sqlx.DB
	ids *IdentifierAllocator
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(db *sqlx.DB, ids *IdentifierAllocator) *AccountRepository {
	if ids == nil {
		ids = NewIdentifierAllocator()
	}
	return &AccountRepository{db: db, ids: ids}
}

// RegisterParams carries an account and the role profile created with it.
type RegisterParams struct {
	Username       string
	PasswordHash   string
	Role           models.UserRole
	Name           string
	NRP            string
	Department     string
	NIK            string
	Specialization string
	Contact        *string
}

// FindByUsername fetches an account by its login name.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	const query = `SELECT id, username, password_hash, role, created_at, updated_at FROM accounts WHERE username = $1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, username); err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID fetches an account by id.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	const query = `SELECT id, username, password_hash, role, created_at, updated_at FROM accounts WHERE id = $1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

// ResolveEntityID returns the profile key bound to an account: NRP, NIK or admin id.
func (r *AccountRepository) ResolveEntityID(ctx context.Context, account *models.Account) (string, error) {
	var query string
	switch account.Role {
	case models.RoleMahasiswa:
		query = `SELECT nrp FROM students WHERE account_id = $1`
	case models.RoleKonselor:
		query = `SELECT nik FROM counselors WHERE account_id = $1`
	case models.RoleAdmin:
		query = `SELECT id FROM admins WHERE account_id = $1`
	default:
		return "", fmt.Errorf("unknown role %q", account.Role)
	}
	var entityID string
	if err := r.db.GetContext(ctx, &entityID, query, account.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("resolve entity id: %w", err)
	}
	return entityID, nil
}

// Register creates the account and its role profile atomically and returns
// the account together with the profile key.
func (r *AccountRepository) Register(ctx context.Context, params RegisterParams) (*models.Account, string, error) {
	var (
		account  models.Account
		entityID string
	)
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := r.ids.Next(ctx, tx, models.IDAccount)
		if err != nil {
			return err
		}
		const insertAccount = `INSERT INTO accounts (id, username, password_hash, role) VALUES ($1, $2, $3, $4)
RETURNING id, username, password_hash, role, created_at, updated_at`
		if err := tx.GetContext(ctx, &account, insertAccount, id, params.Username, params.PasswordHash, string(params.Role)); err != nil {
			return err
		}

		switch params.Role {
		case models.RoleMahasiswa:
			entityID = params.NRP
			_, err = tx.ExecContext(ctx, `INSERT INTO students (nrp, name, department, contact, account_id) VALUES ($1, $2, $3, $4, $5)`,
				params.NRP, params.Name, params.Department, params.Contact, account.ID)
		case models.RoleKonselor:
			entityID = params.NIK
			_, err = tx.ExecContext(ctx, `INSERT INTO counselors (nik, name, specialization, contact, account_id) VALUES ($1, $2, $3, $4, $5)`,
				params.NIK, params.Name, params.Specialization, params.Contact, account.ID)
		case models.RoleAdmin:
			entityID, err = r.ids.Next(ctx, tx, models.IDAdmin)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO admins (id, name, account_id) VALUES ($1, $2, $3)`,
				entityID, params.Name, account.ID)
		default:
			err = fmt.Errorf("unknown role %q", params.Role)
		}
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("register account: %w", translate(err))
	}
	return &account, entityID, nil
}

// deleteProfile removes a profile row and its account in one transaction.
// lookup must select the account_id of the profile; remove deletes it.
func deleteProfile(ctx context.Context, db *sqlx.DB, lookup, remove, key string, before func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		var accountID string
		if err := tx.GetContext(ctx, &accountID, lookup, key); err != nil {
			return err
		}
		if before != nil {
			if err := before(tx); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, remove, key); err != nil {
			return translate(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID); err != nil {
			return translate(err)
		}
		return nil
	})
}

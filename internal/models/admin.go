package models

import "time"

// Admin is an administrator profile.
type Admin struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AccountID string    `db:"account_id" json:"account_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package models

import "time"

// Topic is a counseling subject area.
type Topic struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AdminID   *string   `db:"admin_id" json:"admin_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package models

import "time"

// Tenant rows are owned by the account/billing side of the product; the
// publisher only reads the demo flag.
type Tenant struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	DemoMode  bool      `db:"demo_mode" json:"demo_mode"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

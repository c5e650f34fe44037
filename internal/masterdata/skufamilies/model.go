package skufamilies

import "time"

// SKUFamily is a named grouping of SKU codes.
type SKUFamily struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKUs      []string  `json:"skus"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

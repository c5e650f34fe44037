package storegroups

import "time"

// StoreGroup is a named grouping of store names. The request importer
// only checks id existence; membership is informational.
type StoreGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stores    []string  `json:"stores"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

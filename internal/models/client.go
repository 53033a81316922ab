package models

// Client is immutable once created; rules and accounts reference it by id.
type Client struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

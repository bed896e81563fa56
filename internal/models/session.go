package models

import "time"

// Session identifies one dashboard load. It exists only as a cache partition key.
type Session struct {
	ID       string    `json:"sessionId"`
	IssuedAt time.Time `json:"issuedAt"`
}

package domain

import "time"

// Rider is the customer renting a vehicle. Rider records are owned by the
// account service; the rental core only reads them.
type Rider struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	DocumentURLs []string  `json:"document_urls"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import "time"

type Credit struct {
	ID          string    `db:"id"`
	PhoneNumber string    `db:"phone_number"`
	Amount      float64   `db:"amount"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

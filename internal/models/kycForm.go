package models

import "time"

type KycForm struct {
	ID          string    `db:"id"`
	PhoneNumber string    `db:"phone_number"`
	FirstName   string    `db:"first_name"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

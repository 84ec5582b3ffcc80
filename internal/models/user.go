package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID             string       `db:"id"`
	FirstName      string       `db:"first_name"`
	LastName       string       `db:"last_name"`
	PhoneNumber    string       `db:"phone_number"`
	Gender         string       `db:"gender"`
	Email          string       `db:"email"`
	Role           string       `db:"role"`
	Status         string       `db:"status"`
	HashedPassword string       `db:"hashed_password"`
	LastLoginAt    sql.NullTime `db:"last_login_at"`
	CreatedAt      time.Time    `db:"created_at"`
	DeletedAt      sql.NullTime `db:"deleted_at"`
}

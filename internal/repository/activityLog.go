// Every action (synchronous or asynchronous) should be logged.
// This helps in audit and will also be used to trace activities.
// ...
// We used polymorphism to define entity and entity_id
// This allow our table to be used for different part of the application
package repository

import (
	"context"
	"database/sql"

	"github.com/oluseyi/kycflow/internal/models"
)

type ActivityRepository interface {
	Insert(log *models.ActivityLog) (string, error)
}

const (
	// ActivityLogUserEntity is used in activities that has to do with user account and the users table
	ActivityLogUserEntity = "user"

	// ActivityLogKycFormEntity is used in activities that has to do with KYC forms and the kyc_forms table
	ActivityLogKycFormEntity = "kyc_form"

	// ActivityLogCreditEntity is used in activities that has to do with welcome credits and the credits table
	ActivityLogCreditEntity = "credit"
)

type ActivityRepositoryImpl struct {
	db *DB
}

func NewActivityRepository(db *DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (repo *ActivityRepositoryImpl) Insert(log *models.ActivityLog) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO activity_logs (user_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		nullableID(log.UserID),
		log.Entity,
		log.EntityId,
		log.Description,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

// nullableID maps an absent id to NULL. The user_id column is uuid, so the
// empty string must become NULL before it reaches the driver; an SQL-level
// NULLIF would resolve the parameter as text and fail against the uuid column.
func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

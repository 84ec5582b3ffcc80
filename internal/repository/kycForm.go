package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/oluseyi/kycflow/internal/models"
)

type KycFormRepository interface {
	ExistsByPhoneAndStatus(phoneNumber, status string, tx Tx) (bool, error)
	Insert(form *models.KycForm) (string, error)
	UpdateStatusIfPending(phoneNumber, status string, tx Tx) (string, bool, error)
}

const (
	// KycStatusPending is the state of a freshly submitted form awaiting review.
	KycStatusPending = "pending"

	// KycStatusConfirmed is terminal. A confirmed phone number can never
	// submit or transition again.
	KycStatusConfirmed = "confirmed"

	// KycStatusRejected is terminal for the form, but the phone number may
	// submit a new form afterwards.
	KycStatusRejected = "rejected"
)

type KycFormRepositoryImpl struct {
	db *DB
}

func NewKycFormRepository(db *DB) KycFormRepository {
	return &KycFormRepositoryImpl{db: db}
}

func (repo *KycFormRepositoryImpl) ExistsByPhoneAndStatus(phoneNumber, status string, tx Tx) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM kyc_forms WHERE phone_number = $1 AND status = $2)`

	err := sqlx.GetContext(ctx, repo.db.execer(tx), &exists, query, phoneNumber, status)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *KycFormRepositoryImpl) Insert(form *models.KycForm) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO kyc_forms (phone_number, first_name, status)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		form.PhoneNumber,
		form.FirstName,
		KycStatusPending,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

// UpdateStatusIfPending flips a pending form to the given status in a single
// conditional statement and returns the id of the changed row, so concurrent
// confirmations cannot both pass a separate existence check.
func (repo *KycFormRepositoryImpl) UpdateStatusIfPending(phoneNumber, status string, tx Tx) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		UPDATE kyc_forms SET status = $1
		WHERE phone_number = $2 AND status = $3
		RETURNING id`

	err := sqlx.GetContext(ctx, repo.db.execer(tx), &id, query, status, phoneNumber, KycStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return id, true, nil
}

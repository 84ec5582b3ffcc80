package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/oluseyi/kycflow/internal/models"
)

type CreditRepository interface {
	ExistsByPhoneNumber(phoneNumber string, tx Tx) (bool, error)
	Insert(credit *models.Credit, tx Tx) (string, error)
}

const (
	// CreditStatusCredited marks an issued welcome credit.
	CreditStatusCredited = "credited"

	// CreditWelcomeAmount is the flat one-time credit issued on the first
	// successful KYC confirmation for a phone number.
	CreditWelcomeAmount float64 = 200
)

type CreditRepositoryImpl struct {
	db *DB
}

func NewCreditRepository(db *DB) CreditRepository {
	return &CreditRepositoryImpl{db: db}
}

func (repo *CreditRepositoryImpl) ExistsByPhoneNumber(phoneNumber string, tx Tx) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM credits WHERE phone_number = $1 AND status = $2)`

	err := sqlx.GetContext(ctx, repo.db.execer(tx), &exists, query, phoneNumber, CreditStatusCredited)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Insert relies on the UNIQUE constraint on credits.phone_number: even if two
// confirmations race past the existence check, only one insert can succeed.
func (repo *CreditRepositoryImpl) Insert(credit *models.Credit, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO credits (phone_number, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := sqlx.GetContext(ctx, repo.db.execer(tx), &id, query,
		credit.PhoneNumber,
		credit.Amount,
		CreditStatusCredited,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

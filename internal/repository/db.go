package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/oluseyi/kycflow/assets"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Tx is the part of a database transaction the workflow layer needs.
// Handlers begin a transaction, pass it down to repository calls and
// decide whether to commit or roll back.
type Tx interface {
	Commit() error
	Rollback() error
}

// TxBeginner is implemented by Database and lets handlers open a
// transaction without depending on the full interface.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// Database interface defines available repositories
type Database interface {
	User() UserRepository
	KycForm() KycFormRepository
	Credit() CreditRepository
	Activity() ActivityRepository

	Close() error
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

type DB struct {
	*sqlx.DB
}

// DatabaseImpl implements the Database interface
type DatabaseImpl struct {
	db           *DB
	userRepo     UserRepository
	kycFormRepo  KycFormRepository
	creditRepo   CreditRepository
	activityRepo ActivityRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	// Run migrations if enabled
	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: &DB{db}}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := d.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// execer resolves the executor a query should run against: the open
// transaction when one was passed down, the pooled connection otherwise.
func (db *DB) execer(tx Tx) sqlx.ExtContext {
	if t, ok := tx.(*sqlx.Tx); ok && t != nil {
		return t
	}
	return db.DB
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) KycForm() KycFormRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.kycFormRepo == nil {
		d.kycFormRepo = NewKycFormRepository(d.db)
	}
	return d.kycFormRepo
}

func (d *DatabaseImpl) Credit() CreditRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.creditRepo == nil {
		d.creditRepo = NewCreditRepository(d.db)
	}
	return d.creditRepo
}

func (d *DatabaseImpl) Activity() ActivityRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activityRepo == nil {
		d.activityRepo = NewActivityRepository(d.db)
	}
	return d.activityRepo
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ajibolad/phoneauth/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

const uniqueViolationCode = "23505"

type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (phone_number, name, date_of_birth, gender, registered_at, last_login_at)
              VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		account.PhoneNumber, account.Name, account.DateOfBirth, account.Gender,
		account.RegisteredAt, account.LastLoginAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrConflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetByPhone(ctx context.Context, phoneNumber string) (*models.Account, error) {
	query := `SELECT phone_number, name, date_of_birth, gender, registered_at, last_login_at
              FROM accounts WHERE phone_number = $1`

	row := r.pool.QueryRow(ctx, query, phoneNumber)

	var account models.Account
	err := row.Scan(&account.PhoneNumber, &account.Name, &account.DateOfBirth,
		&account.Gender, &account.RegisteredAt, &account.LastLoginAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE phone_number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, phoneNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return exists, nil
}

func (r *PostgresAccountRepository) SetLastLogin(ctx context.Context, phoneNumber string, lastLoginAt time.Time) error {
	query := `UPDATE accounts SET last_login_at = $1 WHERE phone_number = $2`

	result, err := r.pool.Exec(ctx, query, lastLoginAt, phoneNumber)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepository) Delete(ctx context.Context, phoneNumber string) error {
	query := `DELETE FROM accounts WHERE phone_number = $1`

	result, err := r.pool.Exec(ctx, query, phoneNumber)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

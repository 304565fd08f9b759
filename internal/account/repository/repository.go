package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/screentime-labs/tracker/backend/internal/account/domain"
	"github.com/screentime-labs/tracker/backend/internal/common/db"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
)

type Repository interface {
	Create(ctx context.Context, account domain.Account) error
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Summary, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, account domain.Account) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO accounts (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(account.ID),
		account.Username,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
		return db.HandleExecError(err, "create account", start)
	}
	db.MeasureQueryDuration("create account", start)
	return nil
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM accounts WHERE email = $1`,
		email,
	)

	var account domain.Account
	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, db.HandleQueryError(err, ErrAccountNotFound, "find account by email", start)
	}
	db.MeasureQueryDuration("find account by email", start)

	return account, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.Summary, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, email, created_at FROM accounts ORDER BY created_at`,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrAccountNotFound, "list accounts", start)
	}
	defer rows.Close()

	summaries := make([]domain.Summary, 0)
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Username, &s.Email, &s.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, ErrAccountNotFound, "list accounts", start)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrAccountNotFound, "list accounts", start)
	}
	db.MeasureQueryDuration("list accounts", start)

	return summaries, nil
}

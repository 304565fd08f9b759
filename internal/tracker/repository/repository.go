package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/screentime-labs/tracker/backend/internal/common/db"
	"github.com/screentime-labs/tracker/backend/internal/tracker/domain"
)

var (
	ErrWebsiteNotFound  = errors.New("website limit not found")
	ErrDuplicateWebsite = errors.New("website already tracked for this account")
	ErrAccountAbsent    = errors.New("owning account does not exist")
)

// ResetRow reports one counter zeroed by ResetStale, so the live feed can
// announce the rollover.
type ResetRow struct {
	WebsiteURL string
	TimeLimit  int
}

type Repository interface {
	List(ctx context.Context, accountID domain.AccountID) ([]domain.WebsiteLimit, error)
	Create(ctx context.Context, limit domain.WebsiteLimit, day string) error
	Delete(ctx context.Context, id domain.ID, accountID domain.AccountID) error
	UpdateUsage(ctx context.Context, accountID domain.AccountID, websiteURL string, timeUsed int) (timeLimit int, err error)
	ResetStale(ctx context.Context, accountID domain.AccountID, day string) ([]ResetRow, error)
	StatusReport(ctx context.Context) (domain.StatusReport, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context, accountID domain.AccountID) ([]domain.WebsiteLimit, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, account_id, website_url, time_limit, time_used, last_reset
		 FROM website_limits WHERE account_id = $1 ORDER BY website_url`,
		string(accountID),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrWebsiteNotFound, "list website limits", start)
	}
	defer rows.Close()

	limits := make([]domain.WebsiteLimit, 0)
	for rows.Next() {
		var l domain.WebsiteLimit
		if err := rows.Scan(&l.ID, &l.AccountID, &l.WebsiteURL, &l.TimeLimit, &l.TimeUsed, &l.LastReset); err != nil {
			return nil, db.HandleQueryError(err, ErrWebsiteNotFound, "list website limits", start)
		}
		limits = append(limits, l)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrWebsiteNotFound, "list website limits", start)
	}
	db.MeasureQueryDuration("list website limits", start)

	return limits, nil
}

func (r *PgRepository) Create(ctx context.Context, limit domain.WebsiteLimit, day string) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO website_limits (id, account_id, website_url, time_limit, time_used, last_reset)
		 VALUES ($1, $2, $3, $4, 0, $5::date)`,
		string(limit.ID),
		string(limit.AccountID),
		limit.WebsiteURL,
		limit.TimeLimit,
		day,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDuplicateWebsite
			case "23503":
				return ErrAccountAbsent
			}
		}
		return db.HandleExecError(err, "create website limit", start)
	}
	db.MeasureQueryDuration("create website limit", start)
	return nil
}

// Delete removes the row only when it belongs to accountID. Absence and
// ownership mismatch both come back as ErrWebsiteNotFound so callers cannot
// probe for other accounts' rows.
func (r *PgRepository) Delete(ctx context.Context, id domain.ID, accountID domain.AccountID) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM website_limits WHERE id = $1 AND account_id = $2`,
		string(id),
		string(accountID),
	)
	if err != nil {
		return db.HandleExecError(err, "delete website limit", start)
	}
	db.MeasureQueryDuration("delete website limit", start)

	if tag.RowsAffected() == 0 {
		return ErrWebsiteNotFound
	}
	return nil
}

// UpdateUsage overwrites the counter; it never touches last_reset, so a
// value written onto a day-stale row survives until the next list resets it.
func (r *PgRepository) UpdateUsage(ctx context.Context, accountID domain.AccountID, websiteURL string, timeUsed int) (int, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE website_limits SET time_used = $3
		 WHERE account_id = $1 AND website_url = $2
		 RETURNING time_limit`,
		string(accountID),
		websiteURL,
		timeUsed,
	)

	var timeLimit int
	if err := row.Scan(&timeLimit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			db.MeasureQueryDuration("update website usage", start)
			return 0, ErrWebsiteNotFound
		}
		return 0, db.HandleQueryError(err, ErrWebsiteNotFound, "update website usage", start)
	}
	db.MeasureQueryDuration("update website usage", start)

	return timeLimit, nil
}

// ResetStale zeroes every counter of the account whose last_reset predates
// day, in one conditional statement. Reapplying it on the same day matches
// no rows, so concurrent readers reset at most once.
func (r *PgRepository) ResetStale(ctx context.Context, accountID domain.AccountID, day string) ([]ResetRow, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`UPDATE website_limits SET time_used = 0, last_reset = $2::date
		 WHERE account_id = $1 AND last_reset < $2::date
		 RETURNING website_url, time_limit`,
		string(accountID),
		day,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrWebsiteNotFound, "reset stale usage", start)
	}
	defer rows.Close()

	var reset []ResetRow
	for rows.Next() {
		var rr ResetRow
		if err := rows.Scan(&rr.WebsiteURL, &rr.TimeLimit); err != nil {
			return nil, db.HandleQueryError(err, ErrWebsiteNotFound, "reset stale usage", start)
		}
		reset = append(reset, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrWebsiteNotFound, "reset stale usage", start)
	}
	db.MeasureQueryDuration("reset stale usage", start)

	return reset, nil
}

func (r *PgRepository) StatusReport(ctx context.Context) (domain.StatusReport, error) {
	start := time.Now()

	var report domain.StatusReport
	row := r.pool.QueryRow(
		ctx,
		`SELECT (SELECT COUNT(*) FROM accounts), (SELECT COUNT(*) FROM website_limits)`,
	)
	if err := row.Scan(&report.Accounts, &report.Websites); err != nil {
		return domain.StatusReport{}, db.HandleQueryError(err, ErrWebsiteNotFound, "count status report", start)
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT a.id, a.username, a.email, COUNT(w.id)
		 FROM accounts a
		 LEFT JOIN website_limits w ON a.id = w.account_id
		 GROUP BY a.id, a.username, a.email
		 ORDER BY a.username`,
	)
	if err != nil {
		return domain.StatusReport{}, db.HandleQueryError(err, ErrWebsiteNotFound, "account status report", start)
	}
	defer rows.Close()

	report.AccountStats = make([]domain.AccountStats, 0)
	for rows.Next() {
		var s domain.AccountStats
		if err := rows.Scan(&s.AccountID, &s.Username, &s.Email, &s.WebsiteCount); err != nil {
			return domain.StatusReport{}, db.HandleQueryError(err, ErrWebsiteNotFound, "account status report", start)
		}
		report.AccountStats = append(report.AccountStats, s)
	}
	if err := rows.Err(); err != nil {
		return domain.StatusReport{}, db.HandleQueryError(err, ErrWebsiteNotFound, "account status report", start)
	}
	db.MeasureQueryDuration("account status report", start)

	return report, nil
}

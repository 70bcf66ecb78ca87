package boosts

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

func (r *Repo) ListActive(ctx context.Context) ([]Grant, error) {
	const q = `
		SELECT id, user_id, itineraries_requested, status, price, expired, expired_at, created_at
		FROM boost_requests
		WHERE status = 'approved' AND NOT expired
		ORDER BY user_id, created_at`
	return r.list(ctx, q)
}

func (r *Repo) ListExpired(ctx context.Context) ([]Grant, error) {
	const q = `
		SELECT id, user_id, itineraries_requested, status, price, expired, expired_at, created_at
		FROM boost_requests
		WHERE status = 'approved' AND expired
		ORDER BY user_id, created_at`
	return r.list(ctx, q)
}

func (r *Repo) list(ctx context.Context, q string) ([]Grant, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		var expiredAt sql.NullTime
		if err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.ItinerariesRequested,
			&g.Status,
			&g.Price,
			&g.Expired,
			&expiredAt,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		if expiredAt.Valid {
			t := expiredAt.Time
			g.ExpiredAt = &t
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ExpireBatch гасит гранты одним UPDATE. Переход одноразовый: уже погашенные
// строки не трогаем, поэтому повторный вызов с теми же id безопасен.
func (r *Repo) ExpireBatch(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `
		UPDATE boost_requests
		SET expired = TRUE, expired_at = $2
		WHERE id = ANY($1) AND NOT expired`
	tag, err := r.db.Exec(ctx, q, ids, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo читает daily_itinerary_stats — агрегат, который пишет сервис генерации
// маршрутов. Здесь он используется только для сводки в отчёте.
type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

func (r *Repo) CountForDay(ctx context.Context, day time.Time) (int, error) {
	const q = `
		SELECT COALESCE(SUM(generated), 0)
		FROM daily_itinerary_stats
		WHERE day = $1`
	var n int
	if err := r.db.QueryRow(ctx, q, day).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

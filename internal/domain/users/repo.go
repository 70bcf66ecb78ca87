package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrResetConflict — сброс не применился: либо счётчик изменился параллельно,
// либо пользователь уже обработан в этом цикле.
var ErrResetConflict = errors.New("users: reset conflict")

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) List(ctx context.Context) ([]User, error) {
	const q = `
		SELECT id, email, name, role, monthly_used, daily_used, boost_saved,
		       last_month_reset, limit_notified, created_at, updated_at
		FROM users
		ORDER BY id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.Name,
			&u.Role,
			&u.MonthlyUsed,
			&u.DailyUsed,
			&u.BoostSaved,
			&u.LastMonthReset,
			&u.LimitNotified,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ApplyReset обнуляет счётчики и записывает перенос бустов одним UPDATE.
// Условие по monthly_used — оптимистическая проверка: пока шла реконсиляция,
// пользователь мог успеть сгенерировать маршрут. Условие по last_month_reset
// защищает от повторного прогона за тот же цикл.
func (r *Repo) ApplyReset(ctx context.Context, id int64, cycle string, expectedUsed, newSaved int) error {
	const q = `
		UPDATE users
		SET monthly_used = 0,
		    daily_used = 0,
		    boost_saved = $4,
		    last_month_reset = $2,
		    limit_notified = FALSE,
		    updated_at = NOW()
		WHERE id = $1
		  AND monthly_used = $3
		  AND last_month_reset <> $2`
	tag, err := r.pool.Exec(ctx, q, id, cycle, expectedUsed, newSaved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResetConflict
	}
	return nil
}

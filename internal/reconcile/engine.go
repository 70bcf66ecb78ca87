package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tripmind/quota-service/internal/domain/boosts"
	"github.com/tripmind/quota-service/internal/domain/users"
)

type UserStore interface {
	List(ctx context.Context) ([]users.User, error)
	ApplyReset(ctx context.Context, id int64, cycle string, expectedUsed, newSaved int) error
}

type BoostStore interface {
	ListActive(ctx context.Context) ([]boosts.Grant, error)
	ExpireBatch(ctx context.Context, ids []int64, at time.Time) (int64, error)
}

// BatchResult — итог прогона по всем пользователям.
// UsersProcessed = UsersUpdated + UsersSkipped + UsersWithErrors.
type BatchResult struct {
	Cycle                 string
	UsersProcessed        int
	UsersUpdated          int
	UsersSkipped          int
	UsersWithErrors       int
	BoostItinerariesSaved int
	ExpireIDs             []int64
}

type Engine struct {
	log    *slog.Logger
	users  UserStore
	boosts BoostStore
}

func NewEngine(log *slog.Logger, u UserStore, b BoostStore) *Engine {
	return &Engine{log: log, users: u, boosts: b}
}

// Run проходит по пользователям последовательно. Ошибка одного пользователя
// не прерывает прогон: его состояние остаётся нетронутым, гранты не гасятся,
// ошибка попадает в счётчик. Падение самих чтений прерывает всё.
func (e *Engine) Run(ctx context.Context, cycle string) (BatchResult, error) {
	res := BatchResult{Cycle: cycle}

	us, err := e.users.List(ctx)
	if err != nil {
		return res, err
	}
	grants, err := e.boosts.ListActive(ctx)
	if err != nil {
		return res, err
	}

	activeByUser := make(map[int64][]boosts.Grant)
	for _, g := range grants {
		activeByUser[g.UserID] = append(activeByUser[g.UserID], g)
	}

	for _, u := range us {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.UsersProcessed++

		active := activeByUser[u.ID]

		// Уже обработан в этом цикле — повторный прогон после частичного
		// сбоя трогает только недоделанных. Его активные гранты всё равно
		// идут под погашение: прошлый прогон мог упасть на батч-апдейте
		// уже после свёртки грантов в boost_saved, а повторное погашение
		// безопасно (ExpireBatch не трогает уже погашенные строки).
		if u.LastMonthReset == cycle {
			res.UsersSkipped++
			for _, g := range active {
				res.ExpireIDs = append(res.ExpireIDs, g.ID)
			}
			continue
		}

		amounts := make([]int, 0, len(active))
		for _, g := range active {
			amounts = append(amounts, g.ItinerariesRequested)
		}

		c := ComputeCarryover(users.DefaultLimit(u.Role), u.MonthlyUsed, u.BoostSaved, amounts)

		if err := e.users.ApplyReset(ctx, u.ID, cycle, u.MonthlyUsed, c.NewTotalSaved); err != nil {
			res.UsersWithErrors++
			if errors.Is(err, users.ErrResetConflict) {
				e.log.Warn("reset conflict, user left as is", "user_id", u.ID, "cycle", cycle)
			} else {
				e.log.Error("user reset failed", "user_id", u.ID, "err", err)
			}
			continue
		}

		res.UsersUpdated++
		res.BoostItinerariesSaved += c.NewlySaved
		for _, g := range active {
			res.ExpireIDs = append(res.ExpireIDs, g.ID)
		}
	}

	return res, nil
}

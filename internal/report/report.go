package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tripmind/quota-service/internal/limits"
)

const topUsersLimit = 10

// UserUsage — строка отчёта по одному пользователю, снятая до сброса.
type UserUsage struct {
	UserID           int64  `json:"userId"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	Used             int    `json:"used"`
	BaseLimit        int    `json:"baseLimit"`
	BoostAmount      int    `json:"boostAmount"`
	RealLimit        int    `json:"realLimit"`
	Percentage       int    `json:"percentage"`
	SavedBoosts      int    `json:"savedBoosts"`
	HasActiveBoost   bool   `json:"hasActiveBoost"`
	HasExpiredBoosts bool   `json:"hasExpiredBoosts"`
}

type Summary struct {
	TotalUsers             int     `json:"totalUsers"`
	ActiveUsers            int     `json:"activeUsers"`
	UsersWithActiveBoost   int     `json:"usersWithActiveBoost"`
	UsersWithExpiredBoosts int     `json:"usersWithExpiredBoosts"`
	TotalItinerariesUsed   int     `json:"totalItinerariesUsed"`
	AvgPerUser             float64 `json:"avgPerUser"`
	ItinerariesToday       int     `json:"itinerariesToday"`
}

// ExpiringBoost — пользователь, чьи активные гранты будут погашены этим циклом.
type ExpiringBoost struct {
	UserID      int64   `json:"userId"`
	Email       string  `json:"email"`
	Grants      int     `json:"grants"`
	Itineraries int     `json:"itineraries"`
	TotalPrice  float64 `json:"totalPrice"`
}

type Report struct {
	GeneratedAt    time.Time       `json:"generatedAt"`
	Cycle          string          `json:"cycle"`
	Users          []UserUsage     `json:"users"`
	Summary        Summary         `json:"summary"`
	TopUsers       []UserUsage     `json:"topUsers"`
	AtLimit        []UserUsage     `json:"atLimit"`
	ExpiringBoosts []ExpiringBoost `json:"expiringBoosts"`
}

type SnapshotSource interface {
	All(ctx context.Context) ([]limits.Snapshot, error)
}

type StatsSource interface {
	CountForDay(ctx context.Context, day time.Time) (int, error)
}

type Generator struct {
	snapshots SnapshotSource
	stats     StatsSource
	now       func() time.Time
}

func NewGenerator(snapshots SnapshotSource, stats StatsSource) *Generator {
	return &Generator{snapshots: snapshots, stats: stats, now: time.Now}
}

// Generate снимает состояние до каких-либо мутаций. Любая ошибка чтения
// прерывает генерацию: без аудиторского снимка реконсиляцию не запускаем.
func (g *Generator) Generate(ctx context.Context, cycle string) (*Report, error) {
	snaps, err := g.snapshots.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: load snapshots: %w", err)
	}

	now := g.now()
	r := &Report{
		GeneratedAt: now,
		Cycle:       cycle,
		Users:       make([]UserUsage, 0, len(snaps)),
	}

	for _, s := range snaps {
		row := UserUsage{
			UserID:           s.UserID,
			Email:            s.Email,
			Name:             s.Name,
			Role:             string(s.Role),
			Used:             s.Used,
			BaseLimit:        s.BaseLimit,
			BoostAmount:      s.BoostAmount,
			RealLimit:        s.RealLimit,
			Percentage:       s.Percentage,
			SavedBoosts:      s.SavedBoosts,
			HasActiveBoost:   s.HasActiveBoost,
			HasExpiredBoosts: s.HasExpiredBoosts,
		}
		r.Users = append(r.Users, row)

		r.Summary.TotalUsers++
		r.Summary.TotalItinerariesUsed += s.Used
		if s.Used > 0 {
			r.Summary.ActiveUsers++
		}
		if s.HasActiveBoost {
			r.Summary.UsersWithActiveBoost++

			eb := ExpiringBoost{UserID: s.UserID, Email: s.Email}
			for _, gr := range s.ActiveBoosts {
				eb.Grants++
				eb.Itineraries += gr.ItinerariesRequested
				eb.TotalPrice += gr.Price
			}
			r.ExpiringBoosts = append(r.ExpiringBoosts, eb)
		}
		if s.HasExpiredBoosts {
			r.Summary.UsersWithExpiredBoosts++
		}
		if s.RealLimit > 0 && s.Used >= s.RealLimit {
			r.AtLimit = append(r.AtLimit, row)
		}
	}

	if r.Summary.TotalUsers > 0 {
		r.Summary.AvgPerUser = float64(r.Summary.TotalItinerariesUsed) / float64(r.Summary.TotalUsers)
	}

	r.TopUsers = topByUsage(r.Users, topUsersLimit)

	if g.stats != nil {
		day := now.UTC().Truncate(24 * time.Hour)
		n, err := g.stats.CountForDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("report: daily stats: %w", err)
		}
		r.Summary.ItinerariesToday = n
	}

	return r, nil
}

func topByUsage(rows []UserUsage, n int) []UserUsage {
	top := make([]UserUsage, len(rows))
	copy(top, rows)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Used > top[j].Used })
	if len(top) > n {
		top = top[:n]
	}
	return top
}

package limits

import (
	"context"
	"math"
	"time"

	"github.com/tripmind/quota-service/internal/domain/boosts"
	"github.com/tripmind/quota-service/internal/domain/users"
)

// Snapshot — лимиты и потребление одного пользователя на текущий момент.
type Snapshot struct {
	UserID           int64
	Email            string
	Name             string
	Role             users.Role
	Used             int
	BaseLimit        int
	BoostAmount      int
	RealLimit        int
	Percentage       int
	SavedBoosts      int
	HasActiveBoost   bool
	HasExpiredBoosts bool
	ActiveBoosts     []boosts.Grant
	ExpiredBoosts    []boosts.Grant
	CreatedAt        time.Time
	LastMonthReset   string
}

type UserSource interface {
	List(ctx context.Context) ([]users.User, error)
}

type BoostSource interface {
	ListActive(ctx context.Context) ([]boosts.Grant, error)
	ListExpired(ctx context.Context) ([]boosts.Grant, error)
}

type Service struct {
	users  UserSource
	boosts BoostSource
}

func NewService(u UserSource, b BoostSource) *Service {
	return &Service{users: u, boosts: b}
}

// DefaultLimit — чистая таблица тарифов, без обращения к базе.
func (s *Service) DefaultLimit(r users.Role) int {
	return users.DefaultLimit(r)
}

// All собирает снапшоты по всем пользователям за три запроса,
// без N+1 по грантам.
func (s *Service) All(ctx context.Context) ([]Snapshot, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.boosts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	expired, err := s.boosts.ListExpired(ctx)
	if err != nil {
		return nil, err
	}

	activeByUser := groupByUser(active)
	expiredByUser := groupByUser(expired)

	out := make([]Snapshot, 0, len(us))
	for _, u := range us {
		out = append(out, build(u, activeByUser[u.ID], expiredByUser[u.ID]))
	}
	return out, nil
}

func build(u users.User, active, expired []boosts.Grant) Snapshot {
	boostAmount := 0
	for _, g := range active {
		boostAmount += g.ItinerariesRequested
	}
	base := users.DefaultLimit(u.Role)
	real := base + boostAmount

	return Snapshot{
		UserID:           u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		Used:             u.MonthlyUsed,
		BaseLimit:        base,
		BoostAmount:      boostAmount,
		RealLimit:        real,
		Percentage:       Percentage(u.MonthlyUsed, real),
		SavedBoosts:      u.BoostSaved,
		HasActiveBoost:   len(active) > 0,
		HasExpiredBoosts: len(expired) > 0,
		ActiveBoosts:     active,
		ExpiredBoosts:    expired,
		CreatedAt:        u.CreatedAt,
		LastMonthReset:   u.LastMonthReset,
	}
}

func Percentage(used, realLimit int) int {
	if realLimit <= 0 {
		return 0
	}
	return int(math.Round(float64(used) / float64(realLimit) * 100))
}

func groupByUser(gs []boosts.Grant) map[int64][]boosts.Grant {
	m := make(map[int64][]boosts.Grant)
	for _, g := range gs {
		m[g.UserID] = append(m[g.UserID], g)
	}
	return m
}

package boosts

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Grant — оплаченная добавка маршрутов к месячному лимиту. Создаётся заявкой
// пользователя (pending), одобряется админом (approved) и живёт до конца
// цикла: реконсиляция сворачивает остаток в users.boost_saved и гасит грант.
type Grant struct {
	ID                   int64
	UserID               int64
	ItinerariesRequested int
	Status               Status
	Price                float64
	Expired              bool
	ExpiredAt            *time.Time
	CreatedAt            time.Time
}

// Active — грант участвует в текущем цикле.
func (g Grant) Active() bool {
	return g.Status == StatusApproved && !g.Expired
}

package users

import "time"

type Role string

const (
	RoleMicro      Role = "micro"
	RoleBasic      Role = "basic"
	RolePro        Role = "pro"
	RoleEnterprise Role = "enterprise"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID             int64
	Email          string
	Name           string
	Role           Role
	MonthlyUsed    int
	DailyUsed      int
	BoostSaved     int
	LastMonthReset string // "YYYY-MM", empty until the first reconciliation
	LimitNotified  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultLimit возвращает месячный лимит маршрутов по тарифу.
func DefaultLimit(r Role) int {
	switch r {
	case RoleMicro:
		return 5
	case RoleBasic:
		return 30
	case RolePro:
		return 100
	case RoleEnterprise:
		return 300
	case RoleAdmin:
		return 1000
	default:
		return 5
	}
}

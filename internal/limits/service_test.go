package limits

import (
	"context"
	"testing"

	"github.com/tripmind/quota-service/internal/domain/boosts"
	"github.com/tripmind/quota-service/internal/domain/users"
)

type fakeUsers struct{ list []users.User }

func (f *fakeUsers) List(_ context.Context) ([]users.User, error) { return f.list, nil }

type fakeBoosts struct{ active, expired []boosts.Grant }

func (f *fakeBoosts) ListActive(_ context.Context) ([]boosts.Grant, error)  { return f.active, nil }
func (f *fakeBoosts) ListExpired(_ context.Context) ([]boosts.Grant, error) { return f.expired, nil }

func TestPercentage(t *testing.T) {
	tests := []struct {
		used, real, want int
	}{
		{0, 30, 0},
		{15, 30, 50},
		{30, 30, 100},
		{45, 30, 150},
		{1, 3, 33},
		{2, 3, 67},
		{5, 0, 0}, // деление на ноль не допускаем
	}
	for _, tt := range tests {
		if got := Percentage(tt.used, tt.real); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.used, tt.real, got, tt.want)
		}
	}
}

func TestServiceAll(t *testing.T) {
	svc := NewService(
		&fakeUsers{list: []users.User{
			{ID: 1, Email: "a@x.com", Role: users.RoleBasic, MonthlyUsed: 40, BoostSaved: 5},
			{ID: 2, Email: "b@x.com", Role: users.RolePro, MonthlyUsed: 10},
		}},
		&fakeBoosts{
			active: []boosts.Grant{
				{ID: 11, UserID: 1, ItinerariesRequested: 20, Status: boosts.StatusApproved},
				{ID: 12, UserID: 1, ItinerariesRequested: 10, Status: boosts.StatusApproved},
			},
			expired: []boosts.Grant{
				{ID: 13, UserID: 2, ItinerariesRequested: 5, Status: boosts.StatusApproved, Expired: true},
			},
		},
	)

	snaps, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("len(snaps) = %d, want 2", len(snaps))
	}

	s1 := snaps[0]
	if s1.BaseLimit != 30 || s1.BoostAmount != 30 || s1.RealLimit != 60 {
		t.Errorf("user 1 limits = %+v", s1)
	}
	if s1.Percentage != 67 { // 40/60
		t.Errorf("user 1 percentage = %d, want 67", s1.Percentage)
	}
	if !s1.HasActiveBoost || s1.HasExpiredBoosts {
		t.Errorf("user 1 flags = %+v", s1)
	}
	if s1.SavedBoosts != 5 {
		t.Errorf("user 1 saved = %d, want 5", s1.SavedBoosts)
	}

	s2 := snaps[1]
	if s2.BaseLimit != 100 || s2.BoostAmount != 0 || s2.RealLimit != 100 {
		t.Errorf("user 2 limits = %+v", s2)
	}
	if s2.HasActiveBoost || !s2.HasExpiredBoosts {
		t.Errorf("user 2 flags = %+v", s2)
	}
}

func TestDefaultLimitCoversAllRoles(t *testing.T) {
	roles := []users.Role{users.RoleMicro, users.RoleBasic, users.RolePro, users.RoleEnterprise, users.RoleAdmin}
	prev := 0
	for _, r := range roles {
		l := users.DefaultLimit(r)
		if l <= 0 {
			t.Errorf("DefaultLimit(%s) = %d, want > 0", r, l)
		}
		if l < prev {
			t.Errorf("DefaultLimit(%s) = %d, smaller than lower tier", r, l)
		}
		prev = l
	}
	// Неизвестная роль падает на минимальный тариф.
	if got := users.DefaultLimit("unknown"); got != users.DefaultLimit(users.RoleMicro) {
		t.Errorf("DefaultLimit(unknown) = %d", got)
	}
}

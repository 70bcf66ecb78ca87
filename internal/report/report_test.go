package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tripmind/quota-service/internal/domain/boosts"
	"github.com/tripmind/quota-service/internal/domain/users"
	"github.com/tripmind/quota-service/internal/limits"
)

type fakeSnapshots struct {
	snaps []limits.Snapshot
	err   error
}

func (f *fakeSnapshots) All(_ context.Context) ([]limits.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snaps, nil
}

type fakeStats struct {
	n   int
	err error
}

func (f *fakeStats) CountForDay(_ context.Context, _ time.Time) (int, error) {
	return f.n, f.err
}

func snap(id int64, email string, used, base, boost int, active []boosts.Grant, expired bool) limits.Snapshot {
	real := base + boost
	return limits.Snapshot{
		UserID:           id,
		Email:            email,
		Role:             users.RoleBasic,
		Used:             used,
		BaseLimit:        base,
		BoostAmount:      boost,
		RealLimit:        real,
		Percentage:       limits.Percentage(used, real),
		HasActiveBoost:   len(active) > 0,
		HasExpiredBoosts: expired,
		ActiveBoosts:     active,
	}
}

func TestGeneratorGenerate(t *testing.T) {
	src := &fakeSnapshots{snaps: []limits.Snapshot{
		snap(1, "a@x.com", 25, 30, 0, nil, false),
		snap(2, "b@x.com", 0, 30, 0, nil, true),
		snap(3, "c@x.com", 50, 30, 20, []boosts.Grant{
			{ID: 10, UserID: 3, ItinerariesRequested: 20, Price: 19.90},
		}, false),
	}}

	g := NewGenerator(src, &fakeStats{n: 7})
	r, err := g.Generate(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	s := r.Summary
	if s.TotalUsers != 3 || s.ActiveUsers != 2 {
		t.Errorf("summary users = %+v", s)
	}
	if s.UsersWithActiveBoost != 1 || s.UsersWithExpiredBoosts != 1 {
		t.Errorf("summary boosts = %+v", s)
	}
	if s.TotalItinerariesUsed != 75 {
		t.Errorf("TotalItinerariesUsed = %d, want 75", s.TotalItinerariesUsed)
	}
	if s.AvgPerUser != 25 {
		t.Errorf("AvgPerUser = %v, want 25", s.AvgPerUser)
	}
	if s.ItinerariesToday != 7 {
		t.Errorf("ItinerariesToday = %d, want 7", s.ItinerariesToday)
	}

	if len(r.TopUsers) != 3 || r.TopUsers[0].UserID != 3 || r.TopUsers[1].UserID != 1 {
		t.Errorf("TopUsers = %+v", r.TopUsers)
	}

	// user 3: used 50 == realLimit 50 — на пределе.
	if len(r.AtLimit) != 1 || r.AtLimit[0].UserID != 3 {
		t.Errorf("AtLimit = %+v", r.AtLimit)
	}

	if len(r.ExpiringBoosts) != 1 {
		t.Fatalf("ExpiringBoosts = %+v", r.ExpiringBoosts)
	}
	eb := r.ExpiringBoosts[0]
	if eb.UserID != 3 || eb.Grants != 1 || eb.Itineraries != 20 || eb.TotalPrice != 19.90 {
		t.Errorf("ExpiringBoosts[0] = %+v", eb)
	}
}

func TestGeneratorGenerateReadFailure(t *testing.T) {
	g := NewGenerator(&fakeSnapshots{err: errors.New("db down")}, &fakeStats{})
	if _, err := g.Generate(context.Background(), "2026-08"); err == nil {
		t.Fatal("Generate() expected error")
	}
}

func TestGeneratorGenerateStatsFailure(t *testing.T) {
	src := &fakeSnapshots{snaps: []limits.Snapshot{snap(1, "a@x.com", 1, 30, 0, nil, false)}}
	g := NewGenerator(src, &fakeStats{err: errors.New("db down")})
	if _, err := g.Generate(context.Background(), "2026-08"); err == nil {
		t.Fatal("Generate() expected error")
	}
}

func TestWriteWorkbook(t *testing.T) {
	src := &fakeSnapshots{snaps: []limits.Snapshot{
		snap(1, "a@x.com", 25, 30, 0, nil, false),
	}}
	g := NewGenerator(src, nil)
	r, err := g.Generate(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	buf, err := WriteWorkbook(r)
	if err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("workbook is empty")
	}
}

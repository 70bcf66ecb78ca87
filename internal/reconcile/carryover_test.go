package reconcile

import "testing"

func TestComputeCarryover(t *testing.T) {
	tests := []struct {
		name          string
		baseLimit     int
		monthlyUsed   int
		savedBoosts   int
		activeAmounts []int
		want          Carryover
	}{
		{
			name:          "spillover consumes saved then active",
			baseLimit:     50,
			monthlyUsed:   70,
			savedBoosts:   5,
			activeAmounts: []int{30},
			want: Carryover{
				TotalBoostAvailable: 30,
				ConsumedBeyondBase:  20,
				ConsumedFromSaved:   5,
				RemainingSaved:      0,
				ConsumedFromActive:  15,
				NewlySaved:          15,
				NewTotalSaved:       15,
			},
		},
		{
			name:          "full consumption caps at available",
			baseLimit:     50,
			monthlyUsed:   100,
			savedBoosts:   0,
			activeAmounts: []int{40},
			want: Carryover{
				TotalBoostAvailable: 40,
				ConsumedBeyondBase:  50,
				ConsumedFromSaved:   0,
				RemainingSaved:      0,
				ConsumedFromActive:  50,
				NewlySaved:          0,
				NewTotalSaved:       0,
			},
		},
		{
			name:          "under base carries everything forward",
			baseLimit:     50,
			monthlyUsed:   30,
			savedBoosts:   10,
			activeAmounts: []int{20},
			want: Carryover{
				TotalBoostAvailable: 20,
				ConsumedBeyondBase:  0,
				ConsumedFromSaved:   0,
				RemainingSaved:      10,
				ConsumedFromActive:  0,
				NewlySaved:          20,
				NewTotalSaved:       30,
			},
		},
		{
			name:        "no active grants preserves saved untouched",
			baseLimit:   50,
			monthlyUsed: 120,
			savedBoosts: 7,
			want: Carryover{
				RemainingSaved: 7,
				NewTotalSaved:  7,
			},
		},
		{
			name:        "no usage no grants is a no-op",
			baseLimit:   30,
			monthlyUsed: 0,
			savedBoosts: 12,
			want: Carryover{
				RemainingSaved: 12,
				NewTotalSaved:  12,
			},
		},
		{
			name:          "multiple grants sum before consumption",
			baseLimit:     30,
			monthlyUsed:   45,
			savedBoosts:   0,
			activeAmounts: []int{10, 10, 10},
			want: Carryover{
				TotalBoostAvailable: 30,
				ConsumedBeyondBase:  15,
				ConsumedFromSaved:   0,
				RemainingSaved:      0,
				ConsumedFromActive:  15,
				NewlySaved:          15,
				NewTotalSaved:       15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCarryover(tt.baseLimit, tt.monthlyUsed, tt.savedBoosts, tt.activeAmounts)
			if got != tt.want {
				t.Errorf("ComputeCarryover() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeCarryoverInvariants(t *testing.T) {
	// Неотрицательность и сохранение накопленного на сетке входов.
	for base := 0; base <= 60; base += 30 {
		for used := 0; used <= 120; used += 20 {
			for saved := 0; saved <= 20; saved += 10 {
				for _, active := range [][]int{nil, {5}, {25, 25}} {
					c := ComputeCarryover(base, used, saved, active)
					if c.RemainingSaved < 0 || c.NewlySaved < 0 || c.NewTotalSaved < 0 {
						t.Fatalf("negative result %+v for base=%d used=%d saved=%d active=%v",
							c, base, used, saved, active)
					}
					if c.RemainingSaved+c.ConsumedFromSaved != saved {
						t.Fatalf("saved not conserved: %+v for base=%d used=%d saved=%d active=%v",
							c, base, used, saved, active)
					}
					if len(active) == 0 && c.NewTotalSaved != saved {
						t.Fatalf("no active grants must preserve saved: %+v (saved=%d)", c, saved)
					}
				}
			}
		}
	}
}

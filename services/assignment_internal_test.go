package services

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"landmark-quest-system/models"
)

func TestPickQuests(t *testing.T) {
	tests := []struct {
		eligible int
		min, max int
		wantLo   int
		wantHi   int
	}{
		{eligible: 10, min: 3, max: 5, wantLo: 3, wantHi: 5},
		{eligible: 4, min: 3, max: 5, wantLo: 3, wantHi: 4},
		{eligible: 3, min: 3, max: 5, wantLo: 3, wantHi: 3},
		{eligible: 6, min: 2, max: 2, wantLo: 2, wantHi: 2},
	}
	r := rand.New(rand.NewPCG(1, 2))
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d-%d", tt.eligible, tt.min, tt.max), func(t *testing.T) {
			eligible := make([]models.Quest, tt.eligible)
			for i := range eligible {
				eligible[i] = models.Quest{ID: fmt.Sprintf("q%d", i)}
			}
			sizes := map[int]bool{}
			for i := 0; i < 200; i++ {
				picked := pickQuests(r, eligible, tt.min, tt.max)
				if len(picked) < tt.wantLo || len(picked) > tt.wantHi {
					t.Fatalf("picked %d, want %d..%d", len(picked), tt.wantLo, tt.wantHi)
				}
				seen := map[string]bool{}
				for _, q := range picked {
					if seen[q.ID] {
						t.Fatalf("quest %s picked twice", q.ID)
					}
					seen[q.ID] = true
				}
				sizes[len(picked)] = true
			}
			if len(sizes) != tt.wantHi-tt.wantLo+1 {
				t.Errorf("saw sizes %v, want every size in %d..%d", sizes, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	at := time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC)
	if got := DateOf(at, time.UTC); got != "2026-10-14" {
		t.Errorf("utc = %s", got)
	}
	if got := DateOf(at, moscow); got != "2026-10-15" {
		t.Errorf("moscow = %s", got)
	}
}

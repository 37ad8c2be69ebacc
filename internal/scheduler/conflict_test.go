package scheduler

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 10, hour, min, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "touching endpoints do not conflict",
			a:    Interval{Start: at(10, 0), End: at(11, 0)},
			b:    Interval{Start: at(11, 0), End: at(12, 0)},
			want: false,
		},
		{
			name: "partial overlap conflicts",
			a:    Interval{Start: at(10, 0), End: at(11, 0)},
			b:    Interval{Start: at(10, 30), End: at(11, 30)},
			want: true,
		},
		{
			name: "containment conflicts",
			a:    Interval{Start: at(9, 0), End: at(12, 0)},
			b:    Interval{Start: at(10, 0), End: at(11, 0)},
			want: true,
		},
		{
			name: "identical intervals conflict",
			a:    Interval{Start: at(10, 0), End: at(11, 0)},
			b:    Interval{Start: at(10, 0), End: at(11, 0)},
			want: true,
		},
		{
			name: "disjoint intervals do not conflict",
			a:    Interval{Start: at(8, 0), End: at(9, 0)},
			b:    Interval{Start: at(14, 0), End: at(15, 0)},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("overlap is not symmetric: b.Overlaps(a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIntervalCovers(t *testing.T) {
	iv := Interval{Start: at(10, 0), End: at(11, 0)}

	if !iv.Covers(at(10, 0)) {
		t.Fatal("start instant should be covered")
	}
	if !iv.Covers(at(10, 30)) {
		t.Fatal("interior instant should be covered")
	}
	if iv.Covers(at(11, 0)) {
		t.Fatal("end instant should not be covered")
	}
}

func TestDetectConflicts(t *testing.T) {
	existing := []Reservation{
		{ID: "r1", PlanificationID: "p1", Kind: ResourceRoom, ResourceID: "room-a", Interval: Interval{Start: at(10, 0), End: at(11, 0)}},
		{ID: "r2", PlanificationID: "p1", Kind: ResourceEquipment, ResourceID: "beamer", Interval: Interval{Start: at(10, 0), End: at(11, 0)}},
	}

	t.Run("same room overlapping interval conflicts", func(t *testing.T) {
		conflicts := DetectConflicts(existing, []Claim{
			{Kind: ResourceRoom, ResourceID: "room-a", Interval: Interval{Start: at(10, 30), End: at(11, 30)}},
		})
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].ReservationID != "r1" || conflicts[0].PlanificationID != "p1" {
			t.Fatalf("unexpected conflict details: %+v", conflicts[0])
		}
	})

	t.Run("different room does not conflict", func(t *testing.T) {
		conflicts := DetectConflicts(existing, []Claim{
			{Kind: ResourceRoom, ResourceID: "room-b", Interval: Interval{Start: at(10, 0), End: at(11, 0)}},
		})
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("room claim never conflicts with equipment reservation", func(t *testing.T) {
		conflicts := DetectConflicts(existing, []Claim{
			{Kind: ResourceRoom, ResourceID: "beamer", Interval: Interval{Start: at(10, 0), End: at(11, 0)}},
		})
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("adjacent interval does not conflict", func(t *testing.T) {
		if c := FirstConflict(existing, []Claim{
			{Kind: ResourceRoom, ResourceID: "room-a", Interval: Interval{Start: at(11, 0), End: at(12, 0)}},
		}); c != nil {
			t.Fatalf("expected no conflict, got %+v", c)
		}
	})
}

// Randomized property: building a ledger one claim at a time, admitting a
// claim only when DetectConflicts reports it free, never produces two
// overlapping reservations for the same resource.
func TestDetectConflictsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := at(8, 0)

	for round := 0; round < 50; round++ {
		var ledger []Reservation
		for i := 0; i < 40; i++ {
			start := base.Add(time.Duration(rng.Intn(12*60)) * time.Minute)
			end := start.Add(time.Duration(15+rng.Intn(180)) * time.Minute)
			claim := Claim{
				Kind:       ResourceRoom,
				ResourceID: fmt.Sprintf("room-%d", rng.Intn(3)),
				Interval:   Interval{Start: start, End: end},
			}
			if FirstConflict(ledger, []Claim{claim}) != nil {
				continue
			}
			ledger = append(ledger, Reservation{
				ID:         fmt.Sprintf("res-%d-%d", round, i),
				Kind:       claim.Kind,
				ResourceID: claim.ResourceID,
				Interval:   claim.Interval,
			})
		}

		byResource := make(map[string][]Reservation)
		for _, res := range ledger {
			byResource[res.ResourceID] = append(byResource[res.ResourceID], res)
		}
		for resource, reservations := range byResource {
			sort.Slice(reservations, func(i, j int) bool {
				return reservations[i].Interval.Start.Before(reservations[j].Interval.Start)
			})
			for i := 1; i < len(reservations); i++ {
				prev, cur := reservations[i-1], reservations[i]
				if prev.Interval.Overlaps(cur.Interval) {
					t.Fatalf("round %d: resource %s holds overlapping reservations %+v and %+v",
						round, resource, prev, cur)
				}
			}
		}
	}
}

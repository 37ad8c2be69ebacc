package scheduler

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Covers reports whether the instant falls inside the half-open interval.
func (iv Interval) Covers(at time.Time) bool {
	return !at.Before(iv.Start) && at.Before(iv.End)
}

// ResourceKind identifies the kind of resource a claim is made against.
type ResourceKind string

const (
	// ResourceRoom is a meeting room.
	ResourceRoom ResourceKind = "room"
	// ResourceEquipment is a reservable equipment item.
	ResourceEquipment ResourceKind = "equipment"
)

// Claim is a candidate reservation of one resource over an interval.
type Claim struct {
	Kind       ResourceKind
	ResourceID string
	Interval   Interval
}

// Reservation is an existing time-bounded claim in the ledger.
type Reservation struct {
	ID              string
	PlanificationID string
	Kind            ResourceKind
	ResourceID      string
	Interval        Interval
}

// Conflict details an overlapping reservation that callers can present to users.
type Conflict struct {
	Kind            ResourceKind
	ResourceID      string
	ReservationID   string
	PlanificationID string
}

// DetectConflicts identifies, for each candidate claim, the existing
// reservations on the same resource whose intervals overlap it.
func DetectConflicts(existing []Reservation, claims []Claim) []Conflict {
	var conflicts []Conflict
	for _, claim := range claims {
		for _, res := range existing {
			if res.Kind != claim.Kind || res.ResourceID != claim.ResourceID {
				continue
			}
			if !claim.Interval.Overlaps(res.Interval) {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Kind:            claim.Kind,
				ResourceID:      claim.ResourceID,
				ReservationID:   res.ID,
				PlanificationID: res.PlanificationID,
			})
		}
	}
	return conflicts
}

// FirstConflict returns the first conflict between the claims and the existing
// reservations, or nil when every claim is free.
func FirstConflict(existing []Reservation, claims []Claim) *Conflict {
	conflicts := DetectConflicts(existing, claims)
	if len(conflicts) == 0 {
		return nil
	}
	return &conflicts[0]
}

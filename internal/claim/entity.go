// AngelaMos | 2026
// entity.go

package claim

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the review process may move a claim from
// s to next. Only pending claims are reviewable.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

type Claim struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	DealID    string    `db:"deal_id"`
	Status    Status    `db:"status"`
	ClaimedAt time.Time `db:"claimed_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Tally partitions claims by status, so Total always equals the sum of the
// three buckets.
func Tally(claims []*Claim) Stats {
	var s Stats
	for _, c := range claims {
		switch c.Status {
		case StatusPending:
			s.Pending++
		case StatusApproved:
			s.Approved++
		case StatusRejected:
			s.Rejected++
		default:
			continue
		}
		s.Total++
	}
	return s
}

package models

import (
	"math"
	"time"
)

// Deal is a sales opportunity tracked through the pipeline. It is also called
// a prospect (before outreach) or an opportunity (in the store).
type Deal struct {
	ID               string     `json:"id"`
	AccountID        string     `json:"accountId,omitempty"`
	PrimaryContactID string     `json:"primaryContactId,omitempty"`
	CompanyName      string     `json:"companyName"`
	ContactName      string     `json:"contactName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Website          string     `json:"website,omitempty"`
	Industry         string     `json:"industry"`
	RevenueRange     string     `json:"revenueRange"`
	Stage            Stage      `json:"stage"`
	Score            *LeadScore `json:"score,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	AssignedTo       string     `json:"assignedTo,omitempty"`
	AssignedToName   string     `json:"assignedToName,omitempty"` // read-only, joined from users
	LastContact      *time.Time `json:"lastContact,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Clone returns a deep copy so callers cannot alias the score or timestamps.
func (d Deal) Clone() Deal {
	out := d
	if d.Score != nil {
		s := *d.Score
		out.Score = &s
	}
	if d.LastContact != nil {
		t := *d.LastContact
		out.LastContact = &t
	}
	return out
}

// LeadTier buckets a composite score.
type LeadTier string

const (
	TierHot  LeadTier = "HOT"
	TierWarm LeadTier = "WARM"
	TierCold LeadTier = "COLD"
)

// LeadScore is the AI assessment of a prospect. Sub-scores are on a 1..10
// scale, Composite on 0..100.
type LeadScore struct {
	Fit       float64 `json:"fit"`
	Need      float64 `json:"need"`
	Timing    float64 `json:"timing"`
	Readiness float64 `json:"readiness"`
	Composite float64 `json:"composite"`
	Rationale string  `json:"rationale"`
}

// Normalize clamps the sub-scores into 1..10.
func (s *LeadScore) Normalize() {
	s.Fit = clampScore(s.Fit)
	s.Need = clampScore(s.Need)
	s.Timing = clampScore(s.Timing)
	s.Readiness = clampScore(s.Readiness)
	if s.Composite < 0 {
		s.Composite = 0
	}
}

// Derive recomputes Composite from the sub-scores on a 0..100 scale:
// Fit*2 + Need*3 + Timing*2 + Readiness*3, rounded to one decimal.
func (s *LeadScore) Derive() {
	c := s.Fit*2 + s.Need*3 + s.Timing*2 + s.Readiness*3
	s.Composite = math.Round(c*10) / 10
}

// Tier follows the prospecting screen: 80+ is hot, 60+ warm.
func (s LeadScore) Tier() LeadTier {
	switch {
	case s.Composite >= 80:
		return TierHot
	case s.Composite >= 60:
		return TierWarm
	default:
		return TierCold
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Min(10, math.Max(1, v))
}

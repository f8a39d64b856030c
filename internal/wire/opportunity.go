// Package wire holds the Sync Gateway wire/store format of a deal and the one
// mapping between it and models.Deal. Nothing outside the gateway boundary
// (server handlers and the gateway client) should use these types.
package wire

import (
	"fmt"
	"time"

	"github.com/skyaboveme/yourgency/internal/models"
)

// Opportunity is a deal as it travels over HTTP and sits in the opportunities
// table. JSON names equal column names.
type Opportunity struct {
	ID               string     `json:"id"`
	AccountID        string     `json:"account_id,omitempty"`
	PrimaryContactID string     `json:"primary_contact_id,omitempty"`
	CompanyName      string     `json:"company_name"`
	ContactName      string     `json:"contact_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Website          string     `json:"website"`
	Industry         string     `json:"industry"`
	RevenueRange     string     `json:"revenue_range"`
	Stage            string     `json:"stage"`
	Score            *Score     `json:"score,omitempty"`
	Notes            string     `json:"notes"`
	AssignedTo       string     `json:"assigned_to,omitempty"`
	AssignedToName   string     `json:"assigned_to_name,omitempty"`
	LastContact      *time.Time `json:"last_contact,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Score is stored as a JSON document in opportunities.score.
type Score struct {
	Fit       float64 `json:"fit"`
	Need      float64 `json:"need"`
	Timing    float64 `json:"timing"`
	Readiness float64 `json:"readiness"`
	Composite float64 `json:"composite"`
	Rationale string  `json:"rationale"`
}

// Field is one row of the mapping table.
type Field struct {
	Wire  string // wire JSON name and store column
	Model string // models.Deal field name
}

// DealFields is the mapping table between the wire/store format and
// models.Deal. ToDeal and FromDeal implement exactly this table; tests keep the
// struct tags in step with it.
var DealFields = []Field{
	{"id", "ID"},
	{"account_id", "AccountID"},
	{"primary_contact_id", "PrimaryContactID"},
	{"company_name", "CompanyName"},
	{"contact_name", "ContactName"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"website", "Website"},
	{"industry", "Industry"},
	{"revenue_range", "RevenueRange"},
	{"stage", "Stage"},
	{"score", "Score"},
	{"notes", "Notes"},
	{"assigned_to", "AssignedTo"},
	{"assigned_to_name", "AssignedToName"},
	{"last_contact", "LastContact"},
	{"created_at", "CreatedAt"},
}

// ToDeal converts a wire record. The stage is normalised case-insensitively;
// an unknown stage is an error because a Deal's stage must be enumerated.
func ToDeal(o Opportunity) (models.Deal, error) {
	stage, err := models.ParseStage(o.Stage)
	if err != nil {
		return models.Deal{}, &models.ErrValidation{Field: "stage", Message: err.Error()}
	}
	d := models.Deal{
		ID:               o.ID,
		AccountID:        o.AccountID,
		PrimaryContactID: o.PrimaryContactID,
		CompanyName:      o.CompanyName,
		ContactName:      o.ContactName,
		Email:            o.Email,
		Phone:            o.Phone,
		Website:          o.Website,
		Industry:         o.Industry,
		RevenueRange:     o.RevenueRange,
		Stage:            stage,
		Notes:            o.Notes,
		AssignedTo:       o.AssignedTo,
		AssignedToName:   o.AssignedToName,
		CreatedAt:        o.CreatedAt,
	}
	if o.Score != nil {
		d.Score = &models.LeadScore{
			Fit:       o.Score.Fit,
			Need:      o.Score.Need,
			Timing:    o.Score.Timing,
			Readiness: o.Score.Readiness,
			Composite: o.Score.Composite,
			Rationale: o.Score.Rationale,
		}
	}
	if o.LastContact != nil {
		t := *o.LastContact
		d.LastContact = &t
	}
	return d, nil
}

func FromDeal(d models.Deal) Opportunity {
	o := Opportunity{
		ID:               d.ID,
		AccountID:        d.AccountID,
		PrimaryContactID: d.PrimaryContactID,
		CompanyName:      d.CompanyName,
		ContactName:      d.ContactName,
		Email:            d.Email,
		Phone:            d.Phone,
		Website:          d.Website,
		Industry:         d.Industry,
		RevenueRange:     d.RevenueRange,
		Stage:            string(d.Stage),
		Notes:            d.Notes,
		AssignedTo:       d.AssignedTo,
		AssignedToName:   d.AssignedToName,
		CreatedAt:        d.CreatedAt,
	}
	o.Score = ScoreFrom(d.Score)
	if d.LastContact != nil {
		t := *d.LastContact
		o.LastContact = &t
	}
	return o
}

// ScoreFrom converts an in-memory score; nil stays nil.
func ScoreFrom(s *models.LeadScore) *Score {
	if s == nil {
		return nil
	}
	return &Score{
		Fit:       s.Fit,
		Need:      s.Need,
		Timing:    s.Timing,
		Readiness: s.Readiness,
		Composite: s.Composite,
		Rationale: s.Rationale,
	}
}

// ToDeals converts a batch; the first bad record fails the whole batch.
func ToDeals(in []Opportunity) ([]models.Deal, error) {
	out := make([]models.Deal, 0, len(in))
	for i, o := range in {
		d, err := ToDeal(o)
		if err != nil {
			return nil, fmt.Errorf("record %d (id=%q): %w", i, o.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func FromDeals(in []models.Deal) []Opportunity {
	out := make([]Opportunity, 0, len(in))
	for _, d := range in {
		out = append(out, FromDeal(d))
	}
	return out
}

// UpsertResponse is the body of a successful PUT /api/opportunities.
type UpsertResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

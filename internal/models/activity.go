package models

import "time"

type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote:
		return true
	}
	return false
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Activity is one entry on the timeline of an account, contact or opportunity.
type Activity struct {
	ID            string       `json:"id"`
	AccountID     string       `json:"accountId,omitempty"`
	ContactID     string       `json:"contactId,omitempty"`
	OpportunityID string       `json:"opportunityId,omitempty"`
	Type          ActivityType `json:"type"`
	Direction     Direction    `json:"direction"`
	Subject       string       `json:"subject"`
	Content       string       `json:"content"`
	Status        string       `json:"status"`
	Date          time.Time    `json:"date"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// ActivityFilter selects timeline entries; empty fields are ignored.
type ActivityFilter struct {
	AccountID     string
	ContactID     string
	OpportunityID string
}

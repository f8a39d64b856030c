package models

import "time"

// Account is a company the agency sells to.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	Website      string    `json:"website,omitempty"`
	RevenueRange string    `json:"revenueRange,omitempty"`
	TechStack    []string  `json:"techStack,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Contact is a person at an account.
type Contact struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

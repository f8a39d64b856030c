package models

// ScoreRequest asks the advisory service to score a prospect.
type ScoreRequest struct {
	CompanyName  string `json:"companyName"`
	Industry     string `json:"industry"`
	Observations string `json:"observations"`
	// DealID, when set, stores the score on that opportunity.
	DealID string `json:"dealId,omitempty"`
}

type AnalysisRequest struct {
	CompanyName string `json:"companyName"`
	Details     string `json:"details"`
}

type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
	UseMaps bool       `json:"useMaps,omitempty"`
}

type OutreachRequest struct {
	CompanyName string   `json:"companyName"`
	PainPoints  []string `json:"painPoints"`
	Stage       Stage    `json:"stage"`
}

// OutreachEmail is a drafted (or to be sent) outreach message.
type OutreachEmail struct {
	To      string `json:"to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	DealID  string `json:"dealId,omitempty"`
}

// TextReply wraps free-form advisory output.
type TextReply struct {
	Text string `json:"text"`
}

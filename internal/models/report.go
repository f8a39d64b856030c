package models

// Brief is the AI "morning brief" over the active pipeline.
type Brief struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"actionItems"`
	Risks       []string `json:"risks"`
}

// StageCount is one bar of the pipeline distribution chart.
type StageCount struct {
	Stage Stage  `json:"stage"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary backs the dashboard KPIs.
type Summary struct {
	ActiveProspects int          `json:"activeProspects"`
	WinRate         float64      `json:"winRate"`
	AtRisk          int          `json:"atRisk"`
	Users           int          `json:"users"`
	Accounts        int          `json:"accounts"`
	Distribution    []StageCount `json:"distribution"`
}

// ChatTurn is one message of an advisory chat history.
type ChatTurn struct {
	Role string `json:"role"` // "user" | "model"
	Text string `json:"text"`
}

// ChatReply is the advisory answer plus any grounding links.
type ChatReply struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

type Source struct {
	Kind  string `json:"kind"` // "web" | "maps"
	Title string `json:"title"`
	URI   string `json:"uri"`
}

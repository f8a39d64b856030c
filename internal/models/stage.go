package models

import (
	"fmt"
	"strings"
)

// Stage is one position in the sales pipeline.
type Stage string

const (
	StageProspect    Stage = "PROSPECT"
	StageOutreach    Stage = "OUTREACH"
	StageEngaged     Stage = "ENGAGED"
	StageDiscovery   Stage = "DISCOVERY"
	StageProposal    Stage = "PROPOSAL"
	StageNegotiation Stage = "NEGOTIATION"
	StageClosedWon   Stage = "CLOSED_WON"
	StageClosedLost  Stage = "CLOSED_LOST"
)

// Stages lists every stage in enumeration order.
var Stages = []Stage{
	StageProspect,
	StageOutreach,
	StageEngaged,
	StageDiscovery,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// BoardStages are the columns shown on the pipeline board, in advance order.
// DISCOVERY is not part of the advance order; it is reachable only by a direct edit.
var BoardStages = []Stage{
	StageProspect,
	StageOutreach,
	StageEngaged,
	StageProposal,
	StageNegotiation,
}

var stageLabels = map[Stage]string{
	StageProspect:    "Prospect",
	StageOutreach:    "Outreach",
	StageEngaged:     "Engaged",
	StageDiscovery:   "Discovery",
	StageProposal:    "Proposal",
	StageNegotiation: "Negotiation",
	StageClosedWon:   "Won",
	StageClosedLost:  "Lost",
}

// ParseStage accepts any letter case ("prospect", "Prospect") and returns the
// canonical stage.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return st, nil
}

func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label is the human readable column title.
func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// Closed reports whether the stage ends the deal.
func (s Stage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

package pipeline

import "github.com/skyaboveme/yourgency/internal/models"

// Допустимые переходы "вперёд" на доске. DISCOVERY в порядок не входит,
// NEGOTIATION и закрытые стадии финальные для Advance.
var advanceTransitions = map[models.Stage]models.Stage{
	models.StageProspect: models.StageOutreach,
	models.StageOutreach: models.StageEngaged,
	models.StageEngaged:  models.StageProposal,
	models.StageProposal: models.StageNegotiation,
}

// NextStage returns the stage Advance moves a deal to, or false when the
// stage is terminal for Advance.
func NextStage(s models.Stage) (models.Stage, bool) {
	next, ok := advanceTransitions[s]
	return next, ok
}

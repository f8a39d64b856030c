package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/pipeline"
)

func TestRenderBoard_ColumnsInAdvanceOrder(t *testing.T) {
	out := renderBoard([]models.Deal{
		{ID: "1", CompanyName: "Zeta Roofing", Stage: models.StageProspect},
		{ID: "2", CompanyName: "Apex HVAC", Stage: models.StageProspect,
			Score: &models.LeadScore{Composite: 86}},
		{ID: "3", CompanyName: "Delta Pest", Stage: models.StageNegotiation},
	})

	assert.Contains(t, out, "Pipeline (3 deals)")
	assert.Contains(t, out, "Prospect (2)")
	assert.Contains(t, out, "Outreach (0)")
	assert.Contains(t, out, "86 HOT")
	assert.NotContains(t, out, "Discovery", "empty off-board columns are hidden")

	assert.Less(t, strings.Index(out, "Apex HVAC"), strings.Index(out, "Zeta Roofing"))
	assert.Less(t, strings.Index(out, "Prospect"), strings.Index(out, "Negotiation"))
}

func TestRenderBoard_OffBoardStages(t *testing.T) {
	out := renderBoard([]models.Deal{
		{ID: "1", CompanyName: "Apex", Stage: models.StageDiscovery},
		{ID: "2", CompanyName: "Beta", Stage: models.StageClosedWon},
	})
	assert.Contains(t, out, "Discovery (1)")
	assert.Contains(t, out, "Won (1)")
	assert.NotContains(t, out, "Lost")
}

func TestApplyDealFlags_OnlyChanged(t *testing.T) {
	cmd := &cobra.Command{}
	addDealFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--stage", "closed_won", "--notes", "signed"}))

	d := models.Deal{ID: "1", CompanyName: "Apex", Email: "jo@apex.test", Stage: models.StageNegotiation}
	require.NoError(t, applyDealFlags(cmd, &d))
	assert.Equal(t, models.StageClosedWon, d.Stage)
	assert.Equal(t, "signed", d.Notes)
	assert.Equal(t, "Apex", d.CompanyName)
	assert.Equal(t, "jo@apex.test", d.Email)
}

func TestApplyDealFlags_UnknownStage(t *testing.T) {
	cmd := &cobra.Command{}
	addDealFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--stage", "waiting"}))
	assert.Error(t, applyDealFlags(cmd, &models.Deal{}))
}

func TestOutcomeErr(t *testing.T) {
	assert.NoError(t, outcomeErr("1", pipeline.Applied))
	assert.NoError(t, outcomeErr("1", pipeline.Declined))
	assert.ErrorContains(t, outcomeErr("1", pipeline.NotFound), "not on the board")
	assert.ErrorContains(t, outcomeErr("1", pipeline.Terminal), "cannot advance")
	assert.ErrorContains(t, outcomeErr("1", pipeline.Invalid), "invalid")
}

func TestRenderBrief(t *testing.T) {
	out := renderBrief(models.Brief{Summary: "Two hot leads.", ActionItems: []string{"Call Apex"}})
	assert.Contains(t, out, "Two hot leads.")
	assert.Contains(t, out, "Call Apex")
	assert.NotContains(t, out, "Risks")
}

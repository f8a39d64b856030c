package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/resilience"
)

type fakeGenerator struct {
	reply *Response
	err   error
	got   []Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (*Response, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func TestScore_ClampsAndDerivesComposite(t *testing.T) {
	gen := &fakeGenerator{reply: &Response{
		Text:         `{"fit":9,"need":12,"timing":10,"readiness":0,"composite":8.9,"rationale":"outdated site"}`,
		PromptTokens: 100, CompletionTokens: 20,
	}}
	var prompt, completion int
	a := NewAdvisor(gen, DefaultModels(), func(p, c int) { prompt, completion = p, c })

	score, err := a.Score(context.Background(), "", models.ScoreRequest{CompanyName: "Apex HVAC", Industry: "HVAC"})
	require.NoError(t, err)

	assert.Equal(t, 10.0, score.Need)
	assert.Equal(t, 1.0, score.Readiness)
	// 9*2 + 10*3 + 10*2 + 1*3
	assert.Equal(t, 71.0, score.Composite)
	assert.Equal(t, models.TierWarm, score.Tier())
	assert.Equal(t, "outdated site", score.Rationale)
	assert.Equal(t, 100, prompt)
	assert.Equal(t, 20, completion)

	require.Len(t, gen.got, 1)
	req := gen.got[0]
	assert.Equal(t, "gemini-3-flash-preview", req.Model)
	assert.NotNil(t, req.Schema)
	assert.Equal(t, DefaultSystemInstruction, req.SystemInstruction)
	assert.Contains(t, req.Prompt, "Apex HVAC")
}

func TestScore_CustomInstructionAndBadJSON(t *testing.T) {
	gen := &fakeGenerator{reply: &Response{Text: "not json"}}
	a := NewAdvisor(gen, DefaultModels(), nil)

	_, err := a.Score(context.Background(), "be terse", models.ScoreRequest{})
	var ext *models.ErrExternalService
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "be terse", gen.got[0].SystemInstruction)
}

func TestDeepAnalysis_UsesThinkingBudget(t *testing.T) {
	gen := &fakeGenerator{reply: &Response{Text: ""}}
	a := NewAdvisor(gen, DefaultModels(), nil)

	text, err := a.DeepAnalysis(context.Background(), models.AnalysisRequest{CompanyName: "Apex"})
	require.NoError(t, err)
	assert.Equal(t, "Could not generate deep analysis.", text)
	assert.Equal(t, "gemini-3-pro-preview", gen.got[0].Model)
	assert.Equal(t, int32(32768), gen.got[0].ThinkingBudget)
}

func TestChat_MapsSwitchesModel(t *testing.T) {
	gen := &fakeGenerator{reply: &Response{
		Text:    "Three HVAC shops nearby.",
		Sources: []models.Source{{Kind: "maps", Title: "Apex HVAC", URI: "https://maps.example/apex"}},
	}}
	a := NewAdvisor(gen, DefaultModels(), nil)

	reply, err := a.Chat(context.Background(), "", models.ChatRequest{
		Message: "who is near Austin?",
		History: []models.ChatTurn{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}},
		UseMaps: true,
	})
	require.NoError(t, err)
	assert.Len(t, reply.Sources, 1)

	req := gen.got[0]
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.True(t, req.UseMaps)
	assert.Len(t, req.History, 2)
}

func TestChat_NoHistoryIsStillAChat(t *testing.T) {
	gen := &fakeGenerator{reply: &Response{}}
	a := NewAdvisor(gen, DefaultModels(), nil)

	reply, err := a.Chat(context.Background(), "", models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "No response generated.", reply.Text)
	assert.NotNil(t, gen.got[0].History)
	assert.Equal(t, "gemini-3-flash-preview", gen.got[0].Model)
}

func TestMorningBrief_SkipsClosedDeals(t *testing.T) {
	gen := &fakeGenerator{reply: &Response{Text: `{"summary":"Healthy.","actionItems":["Call Apex"]}`}}
	a := NewAdvisor(gen, DefaultModels(), nil)

	last := time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC)
	brief, err := a.MorningBrief(context.Background(), "", []models.Deal{
		{CompanyName: "Apex", Stage: models.StageProposal, LastContact: &last, Score: &models.LeadScore{Composite: 89}},
		{CompanyName: "Won Co", Stage: models.StageClosedWon},
		{CompanyName: "Lost Co", Stage: models.StageClosedLost},
	})
	require.NoError(t, err)
	assert.Equal(t, "Healthy.", brief.Summary)
	assert.Equal(t, []string{}, brief.Risks)

	prompt := gen.got[0].Prompt
	assert.Contains(t, prompt, `"name":"Apex"`)
	assert.Contains(t, prompt, "2025-10-25")
	assert.NotContains(t, prompt, "Won Co")
	assert.NotContains(t, prompt, "Lost Co")
	assert.True(t, gen.got[0].JSON)
}

func TestGeneratorErrorPropagates(t *testing.T) {
	boom := &models.ErrExternalService{Service: "gemini", Err: errors.New("quota")}
	a := NewAdvisor(&fakeGenerator{err: boom}, DefaultModels(), nil)

	_, err := a.DraftOutreach(context.Background(), "", models.OutreachRequest{CompanyName: "Apex"})
	assert.ErrorIs(t, err, boom)
}

func TestNewGenAIGenerator_RequiresKey(t *testing.T) {
	_, err := NewGenAIGenerator(context.Background(), "", nil, resilience.Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

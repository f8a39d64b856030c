package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/skyaboveme/yourgency/internal/models"
)

// DefaultSystemInstruction is used unless the workspace settings carry one.
const DefaultSystemInstruction = `You are Yourgency AI, the sales and client management assistant for Yourgency,
a marketing agency for home service companies (HVAC, plumbing, electrical, pest control, roofing).

Goal: help the sales team find, qualify and close home service companies with strategic advice,
outreach drafts and lead-fit analysis.

Ideal client: HVAC, Plumbing, Electrical, Pest Control or Roofing; revenue $500K-$10M; weak website,
weak Google presence, no visibility in AI assistants, dependence on lead aggregators.

Scoring: Fit (service alignment, size, location), Need (web/SEO gaps, aggregator dependence),
Timing (seasonality, hiring, bad reviews), Readiness (budget, attitude), each 1-10.
Composite = Fit*2 + Need*3 + Timing*2 + Readiness*3 (0-100).

Services: conversion-focused websites, local SEO and Google Business Profile, AI visibility
optimization, paid search and LSA.

Tone: professional, strategic, action-oriented.`

// Models names the Gemini models used per task.
type Models struct {
	Fast           string // scoring, chat, drafting, brief
	Deep           string // deep analysis
	Maps           string // chat with maps grounding
	ThinkingBudget int32
}

func DefaultModels() Models {
	return Models{
		Fast:           "gemini-3-flash-preview",
		Deep:           "gemini-3-pro-preview",
		Maps:           "gemini-2.5-flash",
		ThinkingBudget: 32768,
	}
}

// Usage is reported after every model call.
type Usage func(prompt, completion int)

// Advisor builds prompts, calls the Generator and parses answers.
type Advisor struct {
	gen    Generator
	models Models
	usage  Usage
}

func NewAdvisor(gen Generator, m Models, usage Usage) *Advisor {
	if usage == nil {
		usage = func(int, int) {}
	}
	return &Advisor{gen: gen, models: m, usage: usage}
}

var scoreSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"fit":       {Type: genai.TypeNumber},
		"need":      {Type: genai.TypeNumber},
		"timing":    {Type: genai.TypeNumber},
		"readiness": {Type: genai.TypeNumber},
		"composite": {Type: genai.TypeNumber},
		"rationale": {Type: genai.TypeString},
	},
	Required: []string{"fit", "need", "timing", "readiness", "composite", "rationale"},
}

// Score rates a prospect. Sub-scores are clamped to 1..10 and the composite
// is recomputed from them on the 0..100 scale.
func (a *Advisor) Score(ctx context.Context, instruction string, req models.ScoreRequest) (*models.LeadScore, error) {
	prompt := fmt.Sprintf(`Analyze this prospect for Yourgency (marketing agency for home services).
Company: %s
Industry: %s
Observations: %s

Return JSON with 1-10 scores for:
- fit (service alignment, size)
- need (website quality, SEO presence, AI visibility)
- timing (seasonality, buying signals)
- readiness (budget, attitude)
Also return the composite score and a short rationale.`, req.CompanyName, req.Industry, req.Observations)

	resp, err := a.call(ctx, Request{
		Model:             a.models.Fast,
		SystemInstruction: nonEmpty(instruction, DefaultSystemInstruction),
		Prompt:            prompt,
		Schema:            scoreSchema,
	})
	if err != nil {
		return nil, err
	}

	var score models.LeadScore
	if err := json.Unmarshal([]byte(resp.Text), &score); err != nil {
		return nil, &models.ErrExternalService{Service: serviceName, Err: fmt.Errorf("score is not valid JSON: %w", err)}
	}
	score.Normalize()
	score.Derive()
	return &score, nil
}

// DeepAnalysis returns a long-form strategy report produced with a thinking budget.
func (a *Advisor) DeepAnalysis(ctx context.Context, req models.AnalysisRequest) (string, error) {
	prompt := fmt.Sprintf(`Perform a deep strategic analysis of this prospect.
Company: %s
Details: %s

Cover:
1. Hidden opportunities in their market.
2. Competitive weaknesses implied by the details.
3. A step-by-step 90-day plan.
4. Likely objections and how to answer them.

Be detailed and tactical.`, req.CompanyName, req.Details)

	resp, err := a.call(ctx, Request{
		Model:          a.models.Deep,
		Prompt:         prompt,
		ThinkingBudget: a.models.ThinkingBudget,
	})
	if err != nil {
		return "", err
	}
	return nonEmpty(resp.Text, "Could not generate deep analysis."), nil
}

// Chat continues a conversation. With UseMaps the maps-grounded model is used
// and grounding sources are returned.
func (a *Advisor) Chat(ctx context.Context, instruction string, req models.ChatRequest) (*models.ChatReply, error) {
	model := a.models.Fast
	if req.UseMaps {
		model = a.models.Maps
	}
	history := req.History
	if history == nil {
		history = []models.ChatTurn{}
	}

	resp, err := a.call(ctx, Request{
		Model:             model,
		SystemInstruction: nonEmpty(instruction, DefaultSystemInstruction),
		Prompt:            req.Message,
		History:           history,
		UseMaps:           req.UseMaps,
	})
	if err != nil {
		return nil, err
	}
	return &models.ChatReply{
		Text:    nonEmpty(resp.Text, "No response generated."),
		Sources: resp.Sources,
	}, nil
}

// DraftOutreach writes a short outreach email body.
func (a *Advisor) DraftOutreach(ctx context.Context, instruction string, req models.OutreachRequest) (string, error) {
	prompt := fmt.Sprintf(`Draft a short, punchy outreach email for %s.
Stage: %s.
Pain points observed: %s.
Focus on value, not features. Mention Yourgency's expertise in their trade.`,
		req.CompanyName, req.Stage, strings.Join(req.PainPoints, ", "))

	resp, err := a.call(ctx, Request{
		Model:             a.models.Fast,
		SystemInstruction: nonEmpty(instruction, DefaultSystemInstruction),
		Prompt:            prompt,
	})
	if err != nil {
		return "", err
	}
	return nonEmpty(resp.Text, "Could not generate email."), nil
}

type briefDeal struct {
	Name        string `json:"name"`
	Stage       string `json:"stage"`
	Score       any    `json:"score"`
	LastContact string `json:"lastContact"`
	Revenue     string `json:"revenue"`
}

// MorningBrief summarises the active (not closed) part of the pipeline.
func (a *Advisor) MorningBrief(ctx context.Context, instruction string, deals []models.Deal) (*models.Brief, error) {
	active := make([]briefDeal, 0, len(deals))
	for _, d := range deals {
		if d.Stage.Closed() {
			continue
		}
		bd := briefDeal{
			Name:        d.CompanyName,
			Stage:       string(d.Stage),
			Score:       "N/A",
			LastContact: "Never",
			Revenue:     d.RevenueRange,
		}
		if d.Score != nil {
			bd.Score = d.Score.Composite
		}
		if d.LastContact != nil {
			bd.LastContact = d.LastContact.Format("2006-01-02")
		}
		active = append(active, bd)
	}
	pipelineJSON, err := json.Marshal(active)
	if err != nil {
		return nil, fmt.Errorf("brief context: %w", err)
	}

	prompt := fmt.Sprintf(`Act as a sales director. Write a morning brief for the user's active pipeline.

Active pipeline:
%s

1. Name 3 critical action items (stalled deals, high-value opportunities).
2. Name 2-3 risks (deals stuck in prospect, missing follow-ups).
3. Write a 2-sentence summary of pipeline health.

Answer only with JSON: {"summary": "...", "actionItems": ["..."], "risks": ["..."]}`, pipelineJSON)

	resp, err := a.call(ctx, Request{
		Model:             a.models.Fast,
		SystemInstruction: nonEmpty(instruction, DefaultSystemInstruction),
		Prompt:            prompt,
		JSON:              true,
	})
	if err != nil {
		return nil, err
	}

	var brief models.Brief
	if err := json.Unmarshal([]byte(resp.Text), &brief); err != nil {
		return nil, &models.ErrExternalService{Service: serviceName, Err: fmt.Errorf("brief is not valid JSON: %w", err)}
	}
	if brief.ActionItems == nil {
		brief.ActionItems = []string{}
	}
	if brief.Risks == nil {
		brief.Risks = []string{}
	}
	return &brief, nil
}

func (a *Advisor) call(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	a.usage(resp.PromptTokens, resp.CompletionTokens)
	return resp, nil
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Package ai adapts the Gemini API (google.golang.org/genai) to the CRM's
// advisory use cases: lead scoring, deep analysis, chat, outreach drafting
// and the morning brief.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/resilience"
)

const serviceName = "gemini"

var tracer = otel.Tracer("ai")

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("ai: GEMINI_API_KEY is not set")

// Request is one call to the model.
type Request struct {
	Model             string
	SystemInstruction string
	Prompt            string
	History           []models.ChatTurn // chat only
	Schema            *genai.Schema     // forces a JSON answer matching the schema
	JSON              bool              // JSON answer without a schema
	ThinkingBudget    int32
	UseMaps           bool
}

type Response struct {
	Text             string
	Sources          []models.Source
	PromptTokens     int
	CompletionTokens int
}

// Generator is the opaque advisory service.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GenAIGenerator calls Gemini through the genai SDK.
type GenAIGenerator struct {
	client *genai.Client
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
}

// NewGenAIGenerator creates the client. An empty key yields ErrNotConfigured.
func NewGenAIGenerator(ctx context.Context, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, cb: cb, cfg: cfg}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "ai.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", req.Model),
		attribute.Bool("ai.chat", req.History != nil),
		attribute.Bool("ai.maps", req.UseMaps),
	)

	out, err := resilience.Call(ctx, g.cb, g.cfg, func(ctx context.Context) (*Response, error) {
		return g.generate(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &models.ErrExternalService{Service: serviceName, Err: err}
	}
	return out, nil
}

func (g *GenAIGenerator) generate(ctx context.Context, req Request) (*Response, error) {
	config := buildConfig(req)

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if req.History != nil {
		chat, cerr := g.client.Chats.Create(ctx, req.Model, config, toContents(req.History))
		if cerr != nil {
			return nil, fmt.Errorf("create chat: %w", cerr)
		}
		resp, err = chat.SendMessage(ctx, genai.Part{Text: req.Prompt})
	} else {
		resp, err = g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	}
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return fromResponse(resp), nil
}

func buildConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	} else if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.ThinkingBudget > 0 {
		budget := req.ThinkingBudget
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}
	if req.UseMaps {
		config.Tools = []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	}
	return config
}

func toContents(history []models.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == "model" {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	return out
}

func fromResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{Text: resp.Text()}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return out
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		switch {
		case chunk == nil:
		case chunk.Web != nil:
			out.Sources = append(out.Sources, models.Source{Kind: "web", Title: chunk.Web.Title, URI: chunk.Web.URI})
		case chunk.Maps != nil:
			out.Sources = append(out.Sources, models.Source{Kind: "maps", Title: chunk.Maps.Title, URI: chunk.Maps.URI})
		}
	}
	return out
}

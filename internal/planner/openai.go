package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/vinayprograms/butler/internal/plan"
)

const planSystemPrompt = `You are a task planner for a personal assistant.
Given a user message and a list of available capabilities, produce a plan
as a JSON object with this exact shape:

{
  "description": "<one-line summary of the plan>",
  "steps": [
    {"label": "<short human label>", "action": "<capability name>", "args": {<string keys>}}
  ]
}

Rules:
- Use only capabilities from the provided list.
- Keep the plan minimal: the fewest steps that satisfy the request.
- Respond with the JSON object only, no prose around it.`

// OpenAIPlanner acquires plans from an OpenAI-compatible chat completion
// endpoint.
type OpenAIPlanner struct {
	client openai.Client
	model  string
}

// NewOpenAIPlanner builds a planner against the given endpoint. baseURL may
// be empty for the default OpenAI API.
func NewOpenAIPlanner(apiKey, model, baseURL string) *OpenAIPlanner {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIPlanner{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Plan sends the message verbatim, along with the capability list, and
// parses the returned JSON into an executable plan. All failures are
// wrapped as PlanningError.
func (p *OpenAIPlanner) Plan(ctx context.Context, message string, pc Context) (*plan.Plan, error) {
	user := fmt.Sprintf("Available capabilities: %s\n\nUser message: %s",
		strings.Join(pc.Capabilities, ", "), message)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(planSystemPrompt),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return nil, &PlanningError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &PlanningError{Err: fmt.Errorf("model returned no choices")}
	}

	pl, err := ParsePlanJSON(ctx, resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &PlanningError{Err: err}
	}
	return pl, nil
}

// ParsePlanJSON extracts the first JSON object from model output and
// decodes it into a plan. Models wrap JSON in code fences or prose often
// enough that plain unmarshal is not sufficient.
func ParsePlanJSON(ctx context.Context, raw string) (*plan.Plan, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var decoded struct {
		Description string `json:"description"`
		Steps       []struct {
			Label  string                 `json:"label"`
			Action string                 `json:"action"`
			Args   map[string]interface{} `json:"args"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if len(decoded.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}

	pl := &plan.Plan{Description: decoded.Description}
	for _, s := range decoded.Steps {
		if s.Action == "" {
			return nil, fmt.Errorf("plan step missing action")
		}
		pl.Steps = append(pl.Steps, plan.NewStep(ctx, s.Label, s.Action, s.Args))
	}
	return pl, nil
}

// extractJSON finds the first balanced JSON object in text, respecting
// string literals and escapes.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

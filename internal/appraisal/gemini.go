package appraisal

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/everforgeworks/togore-tuna-hunt/internal/game"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultComment = "Togore grunts in approval."
	minMultiplier  = 0.5
	maxMultiplier  = 3.0
)

// Gemini asks a Gemini model, speaking as Togore, for an offer.
type Gemini struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGemini creates a Gemini appraiser. rps throttles outbound calls.
func NewGemini(ctx context.Context, apiKey, model string, rps float64) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if rps <= 0 {
		rps = 1
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Appraise sends the prompt and parses the JSON verdict.
func (g *Gemini) Appraise(ctx context.Context, fish game.CaughtFish) (Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(fish)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}
	return parseVerdict(resp.Text(), fish.BasePrice)
}

func prompt(fish game.CaughtFish) string {
	var b strings.Builder
	b.WriteString("You are Togore, a giant, chaotic, funny monster who loves eating tuna.\n")
	fmt.Fprintf(&b, "A player has caught a %s.\n", fish.Name)
	fmt.Fprintf(&b, "Description: %s.\n", fish.Description)
	fmt.Fprintf(&b, "Base Price: %d.\n\n", fish.BasePrice)
	b.WriteString("Decide how much you want to pay for it based on a whim.\n")
	b.WriteString("- If you are hungry (random chance), offer MORE (up to 3x).\n")
	b.WriteString("- If you think it looks gross, offer LESS (down to 0.5x).\n")
	b.WriteString("- Be funny, brief, and chaotic. Speak in first person as Togore.\n\n")
	b.WriteString("Output JSON only:\n")
	b.WriteString(`{"comment": "Your funny reason here", "multiplier": 1.5}`)
	return b.String()
}

type verdict struct {
	Comment    string   `json:"comment"`
	Multiplier *float64 `json:"multiplier"`
}

// parseVerdict turns model output into an offer. A missing or zero
// multiplier means 1; out-of-range multipliers are clamped.
func parseVerdict(text string, basePrice int) (Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	if text == "" {
		return Result{}, fmt.Errorf("gemini returned no text")
	}

	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Result{}, fmt.Errorf("malformed verdict: %w", err)
	}

	m := 1.0
	if v.Multiplier != nil && *v.Multiplier != 0 {
		m = math.Min(maxMultiplier, math.Max(minMultiplier, *v.Multiplier))
	}
	comment := strings.TrimSpace(v.Comment)
	if comment == "" {
		comment = DefaultComment
	}
	return Result{
		Value:   int(math.Floor(float64(basePrice) * m)),
		Comment: comment,
	}, nil
}

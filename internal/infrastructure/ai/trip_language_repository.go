package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/domain/repository"
	"github.com/tharu280/tourAgent/internal/infrastructure/retry"
)

// geminiTripRepository はGemini APIを使用してTripLanguageRepositoryを実装
type geminiTripRepository struct {
	client *GeminiClient
	policy retry.Policy
}

// NewGeminiTripRepository は新しいgeminiTripRepositoryインスタンスを作成
// policy.IsTransient が未設定の場合は IsTransientError を使う
func NewGeminiTripRepository(client *GeminiClient, policy retry.Policy) repository.TripLanguageRepository {
	if policy.IsTransient == nil {
		policy.IsTransient = IsTransientError
	}
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			log.Printf("🔁 Gemini API 一時エラー、%v 後にリトライ (%d/%d): %v", delay, attempt, policy.MaxRetries, err)
		}
	}
	return &geminiTripRepository{
		client: client,
		policy: policy,
	}
}

var guardrailSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"decision": {
			Type:        "STRING",
			Enum:        model.ClassifiableDecisions(),
			Description: "The category of the query. 'valid' means it has origin, destination, AND duration.",
		},
		"feedback_message": {
			Type:        "STRING",
			Description: "A friendly reply to the user. Ask for the missing details when incomplete.",
		},
	},
	Required: []string{"decision", "feedback_message"},
}

var extractionSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"origin":        {Type: "STRING", Description: "The starting city or location of the trip."},
		"destination":   {Type: "STRING", Description: "The final city or destination of the trip."},
		"duration_days": {Type: "INTEGER", Nullable: true, Description: "The duration of the trip in days, if mentioned."},
	},
	Required: []string{"origin", "destination"},
}

var rankingSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"top_attractions": {
			Type: "ARRAY",
			Items: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"name":      {Type: "STRING", Description: "The exact name of the attraction from the candidate list."},
					"reasoning": {Type: "STRING", Description: "Why it fits and where it sits in the schedule."},
				},
				Required: []string{"name", "reasoning"},
			},
		},
	},
	Required: []string{"top_attractions"},
}

type rankedAttractionsList struct {
	TopAttractions []model.RankedAttraction `json:"top_attractions"`
}

// ClassifyQuery はクエリを分類し、ユーザー向けの返答を生成する
func (g *geminiTripRepository) ClassifyQuery(ctx context.Context, query string) (*model.GuardrailOutcome, error) {
	prompt := g.buildGuardrailPrompt(query)

	return retry.Do(ctx, g.policy, func(ctx context.Context) (*model.GuardrailOutcome, error) {
		var outcome model.GuardrailOutcome
		if err := g.client.GenerateStructured(ctx, prompt, guardrailSchema, &outcome); err != nil {
			return nil, err
		}
		if !outcome.Decision.IsKnown() {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("未知の分類です: %q", outcome.Decision)}
		}
		return &outcome, nil
	})
}

// ExtractLocations はクエリから出発地・目的地・日数を抽出する
func (g *geminiTripRepository) ExtractLocations(ctx context.Context, query string) (*model.ExtractedLocations, error) {
	prompt := g.buildExtractionPrompt(query)

	return retry.Do(ctx, g.policy, func(ctx context.Context) (*model.ExtractedLocations, error) {
		var extracted model.ExtractedLocations
		if err := g.client.GenerateStructured(ctx, prompt, extractionSchema, &extracted); err != nil {
			return nil, err
		}
		extracted.Origin = strings.TrimSpace(extracted.Origin)
		extracted.Destination = strings.TrimSpace(extracted.Destination)
		if extracted.DurationDays != nil && *extracted.DurationDays < 1 {
			extracted.DurationDays = nil
		}
		return &extracted, nil
	})
}

// RankAttractions は候補から旅行日数に合わせた観光地を選ぶ
func (g *geminiTripRepository) RankAttractions(ctx context.Context, rc *model.RankingContext) ([]model.RankedAttraction, error) {
	prompt := g.buildRankingPrompt(rc)

	return retry.Do(ctx, g.policy, func(ctx context.Context) ([]model.RankedAttraction, error) {
		var list rankedAttractionsList
		if err := g.client.GenerateStructured(ctx, prompt, rankingSchema, &list); err != nil {
			return nil, err
		}
		return list.TopAttractions, nil
	})
}

// WriteItinerary は日別の旅程をマークダウンで生成する
func (g *geminiTripRepository) WriteItinerary(ctx context.Context, ic *model.ItineraryContext) (string, error) {
	prompt := g.buildItineraryPrompt(ic)

	return retry.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		text, err := g.client.GenerateContent(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", &MalformedResponseError{Reason: "旅程テキストが空です"}
		}
		return text, nil
	})
}

// buildGuardrailPrompt はゲートキーパー用プロンプトを構築
func (g *geminiTripRepository) buildGuardrailPrompt(query string) string {
	return fmt.Sprintf(`You are the polite gatekeeper of a road-trip planning assistant.
Classify the user's message and write a short, natural reply.

USER INPUT: %q

Categories:
- "greeting": a simple hello.
- "unrelated": anything outside travel planning.
- "incomplete": a travel request missing the origin, the destination or the number of days.
- "valid": a travel request that states origin, destination AND duration.

Reply guidelines:
- greeting: welcome them and ask for their trip details.
- unrelated: explain that you only plan trips and steer them back.
- incomplete: say in one sentence what is missing and show an example such as "Plan a 3-day trip from X to Y".
- valid: acknowledge the request and say you are working on it.
Write like a concierge sending a text message. No labels, no heavy markdown.`, query)
}

// buildExtractionPrompt は抽出用プロンプトを構築
func (g *geminiTripRepository) buildExtractionPrompt(query string) string {
	return fmt.Sprintf(`Extract the origin city, the destination city and the trip duration in days from this travel request.

Query: %q

If the duration is not mentioned, return null for duration_days.`, query)
}

// buildRankingPrompt はランキング用プロンプトを構築
func (g *geminiTripRepository) buildRankingPrompt(rc *model.RankingContext) string {
	lines := make([]string, 0, len(rc.Candidates))
	for _, a := range rc.Candidates {
		lines = append(lines, fmt.Sprintf("- %s (Category: %s, Context: %s)", a.Name, a.Categories, a.LocationContext))
	}
	minCount, maxCount := model.TargetAttractionCount(rc.DurationDays)

	return fmt.Sprintf(`You are planning a road trip itinerary.

TRIP CONTEXT:
- User request: %q
- Origin: %s
- Destination: %s
- Trip duration: %d days
- Total driving time: %s

CANDIDATES:
%s

INSTRUCTIONS:
1. Select between %d and %d attractions (1 day: 5-7, 2-3 days: 10-15, 4+ days: 15-20).
2. Put "Stopover" candidates from along the route first, then "Destination" candidates.
3. Drop generic infrastructure such as banks, supermarkets and bus stands. Keep viewpoints, waterfalls, temples, monuments, historic buildings and parks.
4. Use names exactly as written in the candidate list.
For each selection, the reasoning must say why it is worth visiting and where it fits in the schedule.`,
		rc.OriginalQuery, rc.OriginName, rc.DestinationName, rc.DurationDays, rc.DriveTime,
		strings.Join(lines, "\n"), minCount, maxCount)
}

// buildItineraryPrompt は旅程生成用プロンプトを構築
func (g *geminiTripRepository) buildItineraryPrompt(ic *model.ItineraryContext) string {
	var sb strings.Builder
	for i, a := range ic.Attractions {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, a.Name, a.Reasoning)
	}

	return fmt.Sprintf(`You are a travel agent writing a personalised road-trip itinerary.

TRIP DETAILS:
- Route: %s to %s
- Duration: %d days
- Total driving time: %s (approximate one-way drive)

SELECTED ATTRACTIONS:
%s
INSTRUCTIONS:
Write a day-by-day itinerary in Markdown.
- Day 1 covers the drive from %s to %s; schedule the stopover attractions along the way.
- Schedule destination attractions from Day 2 onwards, or on the afternoon of Day 1 for a one-day trip.
- Use headings such as "## Day 1: The Journey Begins" and Morning / Afternoon / Evening bullets.
- Add short practical tips. If the list is short, fill gaps with simple activities.`,
		ic.OriginName, ic.DestinationName, ic.DurationDays, ic.DriveTime,
		sb.String(), ic.OriginName, ic.DestinationName)
}

package extractor

import "github.com/jochenheirman09/broos-app-sub001/internal/domain"

// OnboardingInput is the onboarding-scoped call shape.
type OnboardingInput struct {
	UserName string
	Topic    domain.Topic
	Message  string
	History  []domain.ChatMessage
}

// OnboardingOutput is the validated onboarding answer.
type OnboardingOutput struct {
	Response        string `json:"response"`
	IsTopicComplete bool   `json:"isTopicComplete"`
	Summary         string `json:"summary,omitempty"`
}

// WellnessInput is the wellness-scoped call shape.
type WellnessInput struct {
	UserName  string
	BuddyName string
	Message   string
	History   []domain.ChatMessage
	Activity  domain.Activity
}

// WellnessOutput is the validated wellness answer. Scores is sparse and Alert
// is nil unless exactly one valid classification survived validation.
type WellnessOutput struct {
	Response string
	Summary  string
	Scores   map[domain.Dimension]domain.ScoreSignal
	Injury   *domain.InjurySignal
	Alert    *domain.AlertSignal
}

// Update returns the score-document fields this answer contributes.
func (o WellnessOutput) Update() domain.WellnessUpdate {
	return domain.WellnessUpdate{Scores: o.Scores, Injury: o.Injury, Summary: o.Summary}
}

// InsightOutput is a validated team or club insight.
type InsightOutput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// wire formats as produced by the model

type wireWellness struct {
	Response       string               `json:"response"`
	Summary        string               `json:"summary"`
	WellnessScores map[string]wireScore `json:"wellnessScores"`
	Injury         *domain.InjurySignal `json:"injury"`
	Alerts         []wireAlert          `json:"alerts"`
}

type wireScore struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type wireAlert struct {
	Type              string `json:"type"`
	TriggeringMessage string `json:"triggeringMessage"`
}

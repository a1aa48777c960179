// Package extractor adapts a language-model service into the structured
// signal extraction the check-in pipeline consumes: onboarding replies,
// wellness scores and alerts, and team/club insights.
package extractor

import "context"

// Schema tags the structured output a request expects.
type Schema string

const (
	SchemaOnboarding  Schema = "onboarding"
	SchemaWellness    Schema = "wellness"
	SchemaTeamInsight Schema = "team_insight"
	SchemaClubInsight Schema = "club_insight"
)

// Request is one structured generation call.
type Request struct {
	Schema Schema
	System string
	Prompt string
}

// Client is the language-model service. Generate returns the raw JSON answer
// for req.Schema, or an error classifiable with errors.Is against
// ErrServiceUnavailable.
type Client interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

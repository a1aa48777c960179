package services

import "github.com/jochenheirman09/broos-app-sub001/internal/domain"

// TurnKind tags the variant of a TurnResult.
type TurnKind string

const (
	KindOnboarding TurnKind = "onboarding"
	KindWellness   TurnKind = "wellness"
	KindFallback   TurnKind = "fallback"
)

// TurnResult is the outcome of one processed turn. It is implemented only by
// OnboardingResult, WellnessResult and FallbackResult.
type TurnResult interface {
	Kind() TurnKind
	Reply() string
	turnResult()
}

// OnboardingResult is returned while the profile still has open topics.
type OnboardingResult struct {
	Response      string       `json:"response"`
	Topic         domain.Topic `json:"topic,omitempty"`
	TopicComplete bool         `json:"topic_complete"`
	// SavePending is true when a topic summary was handed to the background
	// saver.
	SavePending bool   `json:"save_pending"`
	MessageID   string `json:"message_id,omitempty"`

	summary string
}

func (OnboardingResult) Kind() TurnKind  { return KindOnboarding }
func (r OnboardingResult) Reply() string { return r.Response }
func (OnboardingResult) turnResult()     {}

// WellnessResult is returned for a daily check-in of an onboarded player.
type WellnessResult struct {
	Response  string                                  `json:"response"`
	Activity  domain.Activity                         `json:"activity"`
	Scores    map[domain.Dimension]domain.ScoreSignal `json:"scores,omitempty"`
	Injury    *domain.InjurySignal                    `json:"injury,omitempty"`
	AlertID   string                                  `json:"alert_id,omitempty"`
	MessageID string                                  `json:"message_id,omitempty"`
}

func (WellnessResult) Kind() TurnKind  { return KindWellness }
func (r WellnessResult) Reply() string { return r.Response }
func (WellnessResult) turnResult()     {}

// FallbackReason says why a turn produced a canned reply.
type FallbackReason string

const (
	ReasonConfiguration      FallbackReason = "configuration"
	ReasonServiceUnavailable FallbackReason = "service_unavailable"
)

// FallbackResult is a user-safe reply for a turn that could not be analysed.
// Nothing is persisted for it.
type FallbackResult struct {
	Reason  FallbackReason `json:"reason"`
	Message string         `json:"message"`
}

func (FallbackResult) Kind() TurnKind  { return KindFallback }
func (r FallbackResult) Reply() string { return r.Message }
func (FallbackResult) turnResult()     {}

const (
	msgNotConfigured = "The check-in buddy is not available right now. Please let your club know."
	msgTryAgain      = "I'm a little overloaded right now. Please try again in a moment."
	msgAlreadyKnown  = "We already know each other! Tell me how your day is going."
)

func fallback(reason FallbackReason) FallbackResult {
	if reason == ReasonConfiguration {
		return FallbackResult{Reason: reason, Message: msgNotConfigured}
	}
	return FallbackResult{Reason: reason, Message: msgTryAgain}
}

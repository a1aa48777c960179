package domain

// Topic identifies one onboarding area. The canonical order is Topics.
type Topic string

const (
	TopicFamilySituation  Topic = "familySituation"
	TopicSchoolSituation  Topic = "schoolSituation"
	TopicSportsBackground Topic = "sportsBackground"
	TopicHealthHistory    Topic = "healthHistory"
	TopicHobbiesInterests Topic = "hobbiesInterests"
	TopicGoalsMotivation  Topic = "goalsMotivation"
)

// Topics is the fixed, ordered set of onboarding topics.
var Topics = []Topic{
	TopicFamilySituation,
	TopicSchoolSituation,
	TopicSportsBackground,
	TopicHealthHistory,
	TopicHobbiesInterests,
	TopicGoalsMotivation,
}

// topicColumns maps a topic to its profiles column.
var topicColumns = map[Topic]string{
	TopicFamilySituation:  "family_situation",
	TopicSchoolSituation:  "school_situation",
	TopicSportsBackground: "sports_background",
	TopicHealthHistory:    "health_history",
	TopicHobbiesInterests: "hobbies_interests",
	TopicGoalsMotivation:  "goals_motivation",
}

// Valid reports whether t is one of the six onboarding topics.
func (t Topic) Valid() bool {
	_, ok := topicColumns[t]
	return ok
}

// Column returns the profiles column storing the topic summary.
func (t Topic) Column() string { return topicColumns[t] }

// TopicSummary returns the stored summary for t, or "" when absent.
func (p *UserProfile) TopicSummary(t Topic) string {
	if f := p.topicField(t); f != nil && *f != nil {
		return **f
	}
	return ""
}

// SetTopicSummary sets the in-memory summary for t. Empty summaries are ignored
// so a topic can never be "un-summarized".
func (p *UserProfile) SetTopicSummary(t Topic, summary string) {
	if summary == "" {
		return
	}
	if f := p.topicField(t); f != nil {
		s := summary
		*f = &s
	}
}

// AllTopicsSummarized reports whether every onboarding topic has a summary.
func (p *UserProfile) AllTopicsSummarized() bool {
	for _, t := range Topics {
		if p.TopicSummary(t) == "" {
			return false
		}
	}
	return true
}

func (p *UserProfile) topicField(t Topic) **string {
	switch t {
	case TopicFamilySituation:
		return &p.FamilySituation
	case TopicSchoolSituation:
		return &p.SchoolSituation
	case TopicSportsBackground:
		return &p.SportsBackground
	case TopicHealthHistory:
		return &p.HealthHistory
	case TopicHobbiesInterests:
		return &p.HobbiesInterests
	case TopicGoalsMotivation:
		return &p.GoalsMotivation
	}
	return nil
}

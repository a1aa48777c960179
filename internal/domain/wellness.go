package domain

import "time"

// Dimension is one wellbeing axis scored 1–5.
type Dimension string

const (
	DimensionMood       Dimension = "mood"
	DimensionStress     Dimension = "stress"
	DimensionSleep      Dimension = "sleep"
	DimensionMotivation Dimension = "motivation"
	DimensionEnergy     Dimension = "energy"
	DimensionSchool     Dimension = "school"
	DimensionFamily     Dimension = "family"
)

// Dimensions is the fixed set of scored dimensions, in reporting order.
var Dimensions = []Dimension{
	DimensionMood,
	DimensionStress,
	DimensionSleep,
	DimensionMotivation,
	DimensionEnergy,
	DimensionSchool,
	DimensionFamily,
}

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	for _, x := range Dimensions {
		if x == d {
			return true
		}
	}
	return false
}

// ScoreColumn and ReasonColumn name the wellness_scores columns for d.
func (d Dimension) ScoreColumn() string  { return string(d) + "_score" }
func (d Dimension) ReasonColumn() string { return string(d) + "_reason" }

// MinScore and MaxScore bound every dimension score.
const (
	MinScore = 1
	MaxScore = 5
)

// ScoreSignal is a single extracted score with its textual justification.
type ScoreSignal struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// InjurySignal reports whether the player mentioned an injury today.
type InjurySignal struct {
	Injured bool   `json:"injured"`
	Reason  string `json:"reason"`
}

// WellnessScore is the single per-(user, day) score document. Every field is
// nullable; successive writes only touch the fields they carry.
type WellnessScore struct {
	UserID string `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	Date   string `json:"date"    gorm:"type:char(10);primaryKey;index"`

	MoodScore        *int    `json:"mood_score,omitempty"`
	MoodReason       *string `json:"mood_reason,omitempty"       gorm:"type:text"`
	StressScore      *int    `json:"stress_score,omitempty"`
	StressReason     *string `json:"stress_reason,omitempty"     gorm:"type:text"`
	SleepScore       *int    `json:"sleep_score,omitempty"`
	SleepReason      *string `json:"sleep_reason,omitempty"      gorm:"type:text"`
	MotivationScore  *int    `json:"motivation_score,omitempty"`
	MotivationReason *string `json:"motivation_reason,omitempty" gorm:"type:text"`
	EnergyScore      *int    `json:"energy_score,omitempty"`
	EnergyReason     *string `json:"energy_reason,omitempty"     gorm:"type:text"`
	SchoolScore      *int    `json:"school_score,omitempty"`
	SchoolReason     *string `json:"school_reason,omitempty"     gorm:"type:text"`
	FamilyScore      *int    `json:"family_score,omitempty"`
	FamilyReason     *string `json:"family_reason,omitempty"     gorm:"type:text"`

	Injury       *bool   `json:"injury,omitempty"`
	InjuryReason *string `json:"injury_reason,omitempty" gorm:"type:text"`

	Summary *string `json:"summary,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for WellnessScore.
func (WellnessScore) TableName() string { return "wellness_scores" }

// Signal returns the stored score for d, if set.
func (w *WellnessScore) Signal(d Dimension) (ScoreSignal, bool) {
	score, reason := w.fields(d)
	if score == nil || *score == nil {
		return ScoreSignal{}, false
	}
	out := ScoreSignal{Score: **score}
	if *reason != nil {
		out.Reason = **reason
	}
	return out, true
}

// SetSignal sets the score and reason for d in memory.
func (w *WellnessScore) SetSignal(d Dimension, s ScoreSignal) {
	score, reason := w.fields(d)
	if score == nil {
		return
	}
	v, r := s.Score, s.Reason
	*score = &v
	*reason = &r
}

func (w *WellnessScore) fields(d Dimension) (**int, **string) {
	switch d {
	case DimensionMood:
		return &w.MoodScore, &w.MoodReason
	case DimensionStress:
		return &w.StressScore, &w.StressReason
	case DimensionSleep:
		return &w.SleepScore, &w.SleepReason
	case DimensionMotivation:
		return &w.MotivationScore, &w.MotivationReason
	case DimensionEnergy:
		return &w.EnergyScore, &w.EnergyReason
	case DimensionSchool:
		return &w.SchoolScore, &w.SchoolReason
	case DimensionFamily:
		return &w.FamilyScore, &w.FamilyReason
	}
	return nil, nil
}

// WellnessUpdate is the set of fields a single turn contributes to the day's
// score document. Absent fields leave stored values untouched.
type WellnessUpdate struct {
	Scores  map[Dimension]ScoreSignal
	Injury  *InjurySignal
	Summary string
}

// Empty reports whether the update carries nothing to merge.
func (u WellnessUpdate) Empty() bool {
	return len(u.Scores) == 0 && u.Injury == nil && u.Summary == ""
}

// HasSignals reports whether the update carries a score or an injury flag.
// A summary on its own does not count.
func (u WellnessUpdate) HasSignals() bool {
	return len(u.Scores) > 0 || u.Injury != nil
}

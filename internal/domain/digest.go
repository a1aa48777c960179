package domain

// DimensionAverage is the mean score of one dimension across scored players.
type DimensionAverage struct {
	Dimension Dimension `json:"dimension"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
}

// TeamDigest is the transient statistical summary of a team handed to the
// insight generator. It is never stored as-is.
type TeamDigest struct {
	ClubID        string             `json:"club_id"`
	TeamID        string             `json:"team_id"`
	TeamName      string             `json:"team_name"`
	Date          string             `json:"date"`
	ScoredPlayers int                `json:"scored_players"`
	Averages      []DimensionAverage `json:"averages"`
	InjuryCount   int                `json:"injury_count"`
	CommonTopics  []string           `json:"common_topics"`
}

// TeamInsightDigest is one team's insight as seen by the club pass.
type TeamInsightDigest struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// ClubDigest is the club-level input built from a run's team insights.
type ClubDigest struct {
	ClubID   string              `json:"club_id"`
	ClubName string              `json:"club_name"`
	Date     string              `json:"date"`
	Teams    []TeamInsightDigest `json:"teams"`
}

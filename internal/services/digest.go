package services

import (
	"math"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/topics"
)

// commonTopicCount caps the themes reported per team.
const commonTopicCount = 5

// BuildTeamDigest aggregates the latest score document of each scored player.
// Averages are rounded to two decimals and only listed for dimensions at
// least one player has a score for.
func BuildTeamDigest(team domain.Team, date string, scores []domain.WellnessScore, locale string) domain.TeamDigest {
	d := domain.TeamDigest{
		ClubID:        team.ClubID,
		TeamID:        team.ID,
		TeamName:      team.Name,
		Date:          date,
		ScoredPlayers: len(scores),
	}

	counter := topics.NewCounter(topics.WithLocale(locale))
	sums := make(map[domain.Dimension]int, len(domain.Dimensions))
	counts := make(map[domain.Dimension]int, len(domain.Dimensions))

	for i := range scores {
		w := &scores[i]
		for _, dim := range domain.Dimensions {
			sig, ok := w.Signal(dim)
			if !ok {
				continue
			}
			sums[dim] += sig.Score
			counts[dim]++
			counter.Add(sig.Reason)
		}
		if w.Injury != nil && *w.Injury {
			d.InjuryCount++
		}
		if w.Summary != nil {
			counter.Add(*w.Summary)
		}
	}

	for _, dim := range domain.Dimensions {
		n := counts[dim]
		if n == 0 {
			continue
		}
		avg := float64(sums[dim]) / float64(n)
		d.Averages = append(d.Averages, domain.DimensionAverage{
			Dimension: dim,
			Average:   math.Round(avg*100) / 100,
			Count:     n,
		})
	}

	minDocs := 2
	if len(scores) < 2 {
		minDocs = 1
	}
	d.CommonTopics = counter.Terms(commonTopicCount, minDocs)
	return d
}

// BuildClubDigest collects a run's team insights for the club pass.
func BuildClubDigest(club domain.Club, date string, insights []domain.Insight, teamNames map[string]string) domain.ClubDigest {
	d := domain.ClubDigest{ClubID: club.ID, ClubName: club.Name, Date: date}
	for _, in := range insights {
		d.Teams = append(d.Teams, domain.TeamInsightDigest{
			TeamID:   in.TeamID,
			TeamName: teamNames[in.TeamID],
			Title:    in.Title,
			Category: in.Category,
			Content:  in.Content,
		})
	}
	return d
}

package services

import (
	"kickoff-api/models"

	"gorm.io/gorm"
)

// CareerStats is a user's record across all finished matches they played.
type CareerStats struct {
	TotalMatches int `json:"totalMatches"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	GoalsScored  int `json:"goalsScored"`
	MVPs         int `json:"mvps"`
}

// StatsService derives career stats from matches + plays. Nothing is
// cached; every call recomputes from the current snapshot.
type StatsService struct {
	DB     *gorm.DB
	Roster *RosterService
}

func NewStatsService(db *gorm.DB, roster *RosterService) *StatsService {
	return &StatsService{DB: db, Roster: roster}
}

// ComputeCareerStats walks the user's finished matches. Every finished
// match counts toward totalMatches and goalsScored, and toward mvps when
// the user is the designated MVP — team assignment does not matter for
// those. Wins and losses only accrue to players on team A or B; a drawn
// match counts for neither side.
func (s *StatsService) ComputeCareerStats(userID uint) (*CareerStats, error) {
	var matches []models.Match
	err := s.DB.
		Joins("JOIN plays ON plays.match_id = matches.id").
		Where("plays.user_id = ? AND matches.finished = ?", userID, true).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}

	stats := &CareerStats{}
	for _, match := range matches {
		stats.TotalMatches++

		play, err := s.Roster.Get(userID, match.ID)
		if err != nil {
			return nil, err
		}
		stats.GoalsScored += play.Goals

		if match.MVP != nil && *match.MVP == userID {
			stats.MVPs++
		}

		switch play.Team {
		case models.TeamA:
			if match.ScoreLocal > match.ScoreAway {
				stats.Wins++
			} else if match.ScoreLocal < match.ScoreAway {
				stats.Losses++
			}
		case models.TeamB:
			if match.ScoreAway > match.ScoreLocal {
				stats.Wins++
			} else if match.ScoreAway < match.ScoreLocal {
				stats.Losses++
			}
		}
	}
	return stats, nil
}

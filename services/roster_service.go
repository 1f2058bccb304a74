package services

import (
	"errors"
	"fmt"

	"kickoff-api/models"

	"gorm.io/gorm"
)

// RosterService owns the player↔match membership relation (plays table).
type RosterService struct {
	DB *gorm.DB
}

func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{DB: db}
}

// RosterEntry is the input shape for bulk team assignment. Goals is
// optional: nil means "keep whatever this player already had".
type RosterEntry struct {
	UserID uint
	Team   string
	Goals  *int
}

// Join adds a player to a match with no team and zero goals. A second
// join of the same pair loses on the primary key and comes back as
// ErrDuplicateMembership — join is strict, not idempotent.
func (s *RosterService) Join(userID, matchID uint) (*models.Play, error) {
	play := models.Play{UserID: userID, MatchID: matchID, Team: models.TeamNone, Goals: 0}
	if err := s.DB.Create(&play).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateMembership
		}
		return nil, err
	}
	return &play, nil
}

// BulkReplace swaps the whole roster of a match for a new one in a single
// transaction. Goals of players that survive the reshuffle are carried
// over from the old roster unless the entry pins them explicitly; players
// new to the match start at zero. If the current MVP is dropped from the
// roster, the match's mvp field is cleared in the same transaction. On
// any failure the previous roster is left untouched.
func (s *RosterService) BulkReplace(matchID uint, entries []RosterEntry) ([]models.Play, error) {
	for _, e := range entries {
		if !models.ValidTeam(e.Team) {
			return nil, fmt.Errorf("%w: team must be \"\", \"A\" or \"B\"", ErrValidation)
		}
	}

	var inserted []models.Play
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.Play
		if err := tx.Where("match_id = ?", matchID).Find(&existing).Error; err != nil {
			return err
		}
		prevGoals := make(map[uint]int, len(existing))
		for _, p := range existing {
			prevGoals[p.UserID] = p.Goals
		}

		if err := tx.Where("match_id = ?", matchID).Delete(&models.Play{}).Error; err != nil {
			return err
		}

		inserted = make([]models.Play, 0, len(entries))
		keep := make(map[uint]bool, len(entries))
		for _, e := range entries {
			goals := prevGoals[e.UserID]
			if e.Goals != nil {
				goals = *e.Goals
			}
			if goals < 0 {
				goals = 0
			}
			keep[e.UserID] = true
			inserted = append(inserted, models.Play{
				UserID:  e.UserID,
				MatchID: matchID,
				Team:    e.Team,
				Goals:   goals,
			})
		}
		if len(inserted) > 0 {
			if err := tx.Create(&inserted).Error; err != nil {
				return err
			}
		}

		// A dropped player cannot stay MVP of the match.
		var match models.Match
		if err := tx.First(&match, matchID).Error; err != nil {
			return err
		}
		if match.MVP != nil && !keep[*match.MVP] {
			if err := tx.Model(&match).Update("mvp", nil).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateGoals records a player's goal tally, clamped at zero.
func (s *RosterService) UpdateGoals(userID, matchID uint, goals int) (*models.Play, error) {
	if goals < 0 {
		goals = 0
	}
	var play models.Play
	err := s.DB.Where("user_id = ? AND match_id = ?", userID, matchID).First(&play).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(&play).Update("goals", goals).Error; err != nil {
		return nil, err
	}
	play.Goals = goals
	return &play, nil
}

// Get returns the play for one (user, match) pair, or ErrNotFound.
func (s *RosterService) Get(userID, matchID uint) (*models.Play, error) {
	var play models.Play
	err := s.DB.Where("user_id = ? AND match_id = ?", userID, matchID).First(&play).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &play, nil
}

func (s *RosterService) IsMember(userID, matchID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Play{}).
		Where("user_id = ? AND match_id = ?", userID, matchID).
		Count(&count).Error
	return count > 0, err
}

func (s *RosterService) ListByMatch(matchID uint) ([]models.Play, error) {
	var plays []models.Play
	err := s.DB.Where("match_id = ?", matchID).Find(&plays).Error
	return plays, err
}

func (s *RosterService) ListByUser(userID uint) ([]models.Play, error) {
	var plays []models.Play
	err := s.DB.Where("user_id = ?", userID).Find(&plays).Error
	return plays, err
}

// RemoveByMatch clears a match's roster, used when the match is deleted.
func (s *RosterService) RemoveByMatch(tx *gorm.DB, matchID uint) error {
	return tx.Where("match_id = ?", matchID).Delete(&models.Play{}).Error
}

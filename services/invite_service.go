package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"kickoff-api/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// DefaultInviteTTLHours is how long a fresh invite code stays valid.
const DefaultInviteTTLHours = 24

// sweepRetention is how long after expiry a dead code is kept around
// before the sweeper deletes the row. An expired code never resolves
// either way; this only caps table growth.
const sweepRetention = 30 * 24 * time.Hour

// InviteService issues and resolves time-limited join codes for matches.
type InviteService struct {
	DB *gorm.DB
}

func NewInviteService(db *gorm.DB) *InviteService {
	return &InviteService{DB: db}
}

// Issue creates a fresh invite for the match: 128 bits from crypto/rand,
// hex-encoded, valid for ttlHours from now. Codes are never reused.
func (s *InviteService) Issue(matchID uint, ttlHours int) (*models.InviteLink, error) {
	if ttlHours <= 0 {
		ttlHours = DefaultInviteTTLHours
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	invite := models.InviteLink{
		MatchID:   matchID,
		Code:      hex.EncodeToString(buf),
		ExpiresAt: time.Now().Add(time.Duration(ttlHours) * time.Hour),
	}
	if err := s.DB.Create(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// Resolve returns the invite behind a code while it is still valid.
// Expired and never-issued codes are both ErrNotFound on purpose: a
// caller probing codes learns nothing about which ones ever existed.
func (s *InviteService) Resolve(code string) (*models.InviteLink, error) {
	var invite models.InviteLink
	err := s.DB.Where("code = ? AND expires_at > ?", code, time.Now()).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// StartSweeper purges long-dead invite rows once an hour.
func (s *InviteService) StartSweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-sweepRetention)
			res := s.DB.Where("expires_at < ?", cutoff).Delete(&models.InviteLink{})
			if res.Error != nil {
				log.Printf("[Sweeper] invite purge failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("🧹 [Sweeper] purged %d stale invite links", res.RowsAffected)
			}
		}),
	)
}

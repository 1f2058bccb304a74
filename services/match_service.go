package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"kickoff-api/middleware"
	"kickoff-api/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// MatchService exposes the match endpoints. It owns match CRUD itself and
// delegates roster, invite, policy and stats work to the core services.
type MatchService struct {
	DB      *gorm.DB
	Roster  *RosterService
	Invites *InviteService
	Stats   *StatsService
	Policy  *VisibilityPolicy
}

func NewMatchService(db *gorm.DB, roster *RosterService, invites *InviteService, stats *StatsService, policy *VisibilityPolicy) *MatchService {
	return &MatchService{DB: db, Roster: roster, Invites: invites, Stats: stats, Policy: policy}
}

func frontendURL() string {
	url := os.Getenv("FRONTEND_URL")
	if url == "" {
		url = "http://localhost:5173"
	}
	return url
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrValidation, raw)
	}
	return uint(id), nil
}

func (s *MatchService) getMatch(id uint) (*models.Match, error) {
	var match models.Match
	err := s.DB.Preload("Creator").First(&match, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	match.CreatorUsername = match.Creator.Username
	return &match, nil
}

func (s *MatchService) userExists(id uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetPublicMatches lists matches anyone can still join: public and not
// yet finished.
func (s *MatchService) GetPublicMatches(c *fiber.Ctx) error {
	matches := []models.Match{}
	if err := s.DB.Where("is_public = ? AND finished = ?", true, false).Find(&matches).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(matches)
}

type createMatchRequest struct {
	Timestamp string `json:"timestamp"`
	Location  string `json:"location"`
	IsPublic  bool   `json:"isPublic"`
}

// CreateMatch creates a match and joins the creator in one transaction.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	var req createMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Timestamp == "" || req.Location == "" {
		return c.Status(400).JSON(fiber.Map{"error": "timestamp and location are required"})
	}
	when, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid timestamp (use RFC3339)"})
	}

	userID := middleware.UserID(c)
	match := models.Match{
		Timestamp: when,
		Location:  req.Location,
		Slug:      slug.Make(req.Location),
		CreatorID: userID,
		IsPublic:  req.IsPublic,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&match).Error; err != nil {
			return err
		}
		play := models.Play{UserID: userID, MatchID: match.ID}
		return tx.Create(&play).Error
	})
	if err != nil {
		log.Printf("❌ [MATCH] create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create match"})
	}
	return c.JSON(match)
}

type deleteMatchRequest struct {
	ID uint `json:"id"`
}

// DeleteMatch removes a match with its plays and invite links. Creator
// only.
func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	var req deleteMatchRequest
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid match id"})
	}

	match, err := s.getMatch(req.ID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}
	if !s.Policy.CanEdit(match, middleware.UserID(c)) {
		return c.Status(403).JSON(fiber.Map{"error": "only the match creator can delete it"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Roster.RemoveByMatch(tx, match.ID); err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", match.ID).Delete(&models.InviteLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Match{}, match.ID).Error
	})
	if err != nil {
		log.Printf("❌ [MATCH] delete %d failed: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete match"})
	}
	return c.SendStatus(204)
}

type updateMatchRequest struct {
	ID         uint   `json:"id"`
	ScoreLocal int    `json:"scoreLocal"`
	ScoreAway  int    `json:"scoreAway"`
	Timestamp  string `json:"timestamp"`
	MVP        *uint  `json:"mvp"`
	Finished   bool   `json:"finished"`
	IsPublic   bool   `json:"isPublic"`
}

// UpdateMatch overwrites a match's mutable fields. Creator only. An MVP,
// when set, has to be on the roster.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	var req updateMatchRequest
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ScoreLocal < 0 || req.ScoreAway < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "scores must be non-negative"})
	}

	match, err := s.getMatch(req.ID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}
	if !s.Policy.CanEdit(match, middleware.UserID(c)) {
		return c.Status(403).JSON(fiber.Map{"error": "only the match creator can update it"})
	}

	updates := map[string]interface{}{
		"score_local": req.ScoreLocal,
		"score_away":  req.ScoreAway,
		"mvp":         req.MVP,
		"finished":    req.Finished,
		"is_public":   req.IsPublic,
	}
	if req.Timestamp != "" {
		when, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid timestamp (use RFC3339)"})
		}
		updates["timestamp"] = when
	}

	if req.MVP != nil {
		member, err := s.Roster.IsMember(*req.MVP, match.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to check roster"})
		}
		if !member {
			return c.Status(400).JSON(fiber.Map{"error": "mvp must be a player in the match"})
		}
	}

	if err := s.DB.Model(&models.Match{}).Where("id = ?", match.ID).Updates(updates).Error; err != nil {
		log.Printf("❌ [MATCH] update %d failed: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update match"})
	}
	updated, err := s.getMatch(match.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}
	return c.JSON(updated)
}

// GetMatchesByUser lists every match the user plays in, finished or not.
func (s *MatchService) GetMatchesByUser(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}
	exists, err := s.userExists(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	if !exists {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	matches := []models.Match{}
	err = s.DB.
		Joins("JOIN plays ON plays.match_id = matches.id").
		Where("plays.user_id = ?", userID).
		Find(&matches).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(matches)
}

// GetCareerStats returns a user's aggregated record over finished
// matches.
func (s *MatchService) GetCareerStats(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}
	exists, err := s.userExists(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	if !exists {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	stats, err := s.Stats.ComputeCareerStats(userID)
	if err != nil {
		log.Printf("❌ [STATS] compute for user %d failed: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	return c.JSON(stats)
}

type addPlayerRequest struct {
	MatchID  uint `json:"matchId"`
	PlayerID uint `json:"playerId"`
}

// AddPlayer puts one player on a match roster. Anyone already involved
// (creator counts, they are always a member) may add players; a repeat
// add is a 409, not a crash.
func (s *MatchService) AddPlayer(c *fiber.Ctx) error {
	var req addPlayerRequest
	if err := c.BodyParser(&req); err != nil || req.MatchID == 0 || req.PlayerID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "matchId and playerId are required"})
	}

	match, err := s.getMatch(req.MatchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}

	actor := middleware.UserID(c)
	member, err := s.Roster.IsMember(actor, match.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check roster"})
	}
	if !member {
		return c.Status(403).JSON(fiber.Map{"error": "only players in the match can add others"})
	}

	exists, err := s.userExists(req.PlayerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	if !exists {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}

	play, err := s.Roster.Join(req.PlayerID, match.ID)
	if errors.Is(err, ErrDuplicateMembership) {
		return c.Status(409).JSON(fiber.Map{"error": "player is already in the match"})
	}
	if err != nil {
		log.Printf("❌ [ROSTER] add player %d to match %d failed: %v", req.PlayerID, match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to add player to match"})
	}
	return c.JSON(play)
}

type bulkAddRequest struct {
	MatchID uint `json:"matchId"`
	Players []struct {
		PlayerID uint   `json:"playerId"`
		Team     string `json:"team"`
	} `json:"players"`
}

// BulkAddPlayers replaces the whole roster at once, preserving goals of
// returning players. Creator only; all-or-nothing.
func (s *MatchService) BulkAddPlayers(c *fiber.Ctx) error {
	var req bulkAddRequest
	if err := c.BodyParser(&req); err != nil || req.MatchID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "matchId and players are required"})
	}

	match, err := s.getMatch(req.MatchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}
	if !s.Policy.CanEdit(match, middleware.UserID(c)) {
		return c.Status(403).JSON(fiber.Map{"error": "only the match creator can assign teams"})
	}

	entries := make([]RosterEntry, 0, len(req.Players))
	for _, p := range req.Players {
		if p.PlayerID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "playerId is required for every player"})
		}
		entries = append(entries, RosterEntry{UserID: p.PlayerID, Team: p.Team})
	}

	plays, err := s.Roster.BulkReplace(match.ID, entries)
	if errors.Is(err, ErrValidation) {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		log.Printf("❌ [ROSTER] bulk replace for match %d failed, rolled back: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update match players, changes were rolled back"})
	}
	return c.JSON(plays)
}

type updateGoalsRequest struct {
	MatchID  uint `json:"matchId"`
	PlayerID uint `json:"playerId"`
	Goals    int  `json:"goals"`
}

// UpdatePlayerGoals sets a player's goal count for a match, clamped at
// zero. Creator only.
func (s *MatchService) UpdatePlayerGoals(c *fiber.Ctx) error {
	var req updateGoalsRequest
	if err := c.BodyParser(&req); err != nil || req.MatchID == 0 || req.PlayerID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "matchId and playerId are required"})
	}

	match, err := s.getMatch(req.MatchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}
	if !s.Policy.CanEdit(match, middleware.UserID(c)) {
		return c.Status(403).JSON(fiber.Map{"error": "only the match creator can record goals"})
	}

	play, err := s.Roster.UpdateGoals(req.PlayerID, match.ID, req.Goals)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "player not found in match"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update goals"})
	}
	return c.JSON(play)
}

type matchPlayer struct {
	UserID   uint   `json:"userId"`
	MatchID  uint   `json:"matchId"`
	Team     string `json:"team"`
	Goals    int    `json:"goals"`
	Username string `json:"username"`
}

// GetMatchPlayers lists the roster with usernames. Visibility policy
// applies.
func (s *MatchService) GetMatchPlayers(c *fiber.Ctx) error {
	matchID, err := parseID(c.Params("matchId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid match id"})
	}
	match, err := s.getMatch(matchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}

	allowed, err := s.Policy.CanView(match, middleware.UserID(c), c.Query("inviteCode"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check access"})
	}
	if !allowed {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden: you are not allowed to view this match"})
	}

	var players []matchPlayer
	err = s.DB.Model(&models.Play{}).
		Select("plays.user_id, plays.match_id, plays.team, plays.goals, users.username").
		Joins("JOIN users ON users.id = plays.user_id").
		Where("plays.match_id = ?", match.ID).
		Scan(&players).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	if players == nil {
		players = []matchPlayer{}
	}
	return c.JSON(players)
}

// CreateInvite issues a join code for the match and returns the link the
// webapp shows.
func (s *MatchService) CreateInvite(c *fiber.Ctx) error {
	matchID, err := parseID(c.Params("matchId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid match id"})
	}
	match, err := s.getMatch(matchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}

	allowed, err := s.Policy.CanView(match, middleware.UserID(c), "")
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check access"})
	}
	if !allowed {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden: you are not allowed to invite to this match"})
	}

	invite, err := s.Invites.Issue(match.ID, DefaultInviteTTLHours)
	if err != nil {
		log.Printf("❌ [INVITE] issue for match %d failed: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create invite link"})
	}
	return c.JSON(fiber.Map{
		"code":      invite.Code,
		"url":       fmt.Sprintf("%s/matches/join/%s", frontendURL(), invite.Code),
		"expiresAt": invite.ExpiresAt,
	})
}

type joinMatchRequest struct {
	InviteCode string `json:"inviteCode"`
}

// JoinMatch adds the authenticated caller to a match, either because the
// match is public or because they hold a valid invite for it.
func (s *MatchService) JoinMatch(c *fiber.Ctx) error {
	matchID, err := parseID(c.Params("matchId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid match id"})
	}
	var req joinMatchRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	match, err := s.getMatch(matchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}

	userID := middleware.UserID(c)
	allowed, err := s.Policy.CanJoin(match, userID, req.InviteCode)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check access"})
	}
	if !allowed {
		if req.InviteCode != "" {
			// Expired and never-issued codes look the same on purpose.
			return c.Status(404).JSON(fiber.Map{"error": "invalid or expired invite link"})
		}
		return c.Status(403).JSON(fiber.Map{"error": "forbidden: this match requires an invite"})
	}

	play, err := s.Roster.Join(userID, match.ID)
	if errors.Is(err, ErrDuplicateMembership) {
		return c.Status(409).JSON(fiber.Map{"error": "you are already in this match"})
	}
	if err != nil {
		log.Printf("❌ [ROSTER] join match %d by user %d failed: %v", match.ID, userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to join match"})
	}
	return c.JSON(fiber.Map{"matchId": play.MatchID})
}

// ResolveInvite previews the match behind an invite code.
func (s *MatchService) ResolveInvite(c *fiber.Ctx) error {
	invite, err := s.Invites.Resolve(c.Params("code"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "invalid or expired invite link"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to resolve invite"})
	}

	match, err := s.getMatch(invite.MatchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}
	return c.JSON(match)
}

// GetMatch returns one match, subject to the visibility policy.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	matchID, err := parseID(c.Params("matchId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid match id"})
	}
	match, err := s.getMatch(matchID)
	if errors.Is(err, ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}

	allowed, err := s.Policy.CanView(match, middleware.UserID(c), c.Query("inviteCode"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check access"})
	}
	if !allowed {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden: you are not allowed to view this match"})
	}
	return c.JSON(match)
}

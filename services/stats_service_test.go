package services

import (
	"testing"

	"kickoff-api/models"
	"kickoff-api/testhelpers"
)

// seedFinishedMatch creates a finished match with the given scores and
// puts the player in it on team with goals.
func seedFinishedMatch(t *testing.T, svc *StatsService, creator, player *models.User, scoreLocal, scoreAway int, team string, goals int, mvp *uint) {
	t.Helper()
	match := &models.Match{
		Location:   "pitch",
		CreatorID:  creator.ID,
		ScoreLocal: scoreLocal,
		ScoreAway:  scoreAway,
		Finished:   true,
		MVP:        mvp,
	}
	if err := svc.DB.Create(match).Error; err != nil {
		t.Fatalf("seed match failed: %v", err)
	}
	play := &models.Play{UserID: player.ID, MatchID: match.ID, Team: team, Goals: goals}
	if err := svc.DB.Create(play).Error; err != nil {
		t.Fatalf("seed play failed: %v", err)
	}
}

func TestStatsCountsWinsAndLossesByTeam(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	svc := NewStatsService(db, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	player := testhelpers.CreateUser(t, db, "bo")

	seedFinishedMatch(t, svc, creator, player, 2, 1, models.TeamA, 1, nil) // A wins
	seedFinishedMatch(t, svc, creator, player, 0, 3, models.TeamA, 0, nil) // A loses
	seedFinishedMatch(t, svc, creator, player, 1, 4, models.TeamB, 2, nil) // B wins

	stats, err := svc.ComputeCareerStats(player.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if stats.TotalMatches != 3 || stats.Wins != 2 || stats.Losses != 1 {
		t.Errorf("expected 3/2/1 total/wins/losses, got %d/%d/%d", stats.TotalMatches, stats.Wins, stats.Losses)
	}
	if stats.GoalsScored != 3 {
		t.Errorf("expected 3 goals, got %d", stats.GoalsScored)
	}
}

func TestStatsDrawCountsForNeitherSide(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	svc := NewStatsService(db, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	player := testhelpers.CreateUser(t, db, "bo")

	seedFinishedMatch(t, svc, creator, player, 2, 2, models.TeamA, 1, nil)

	stats, err := svc.ComputeCareerStats(player.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if stats.TotalMatches != 1 || stats.GoalsScored != 1 {
		t.Errorf("draw still counts toward totals, got %d matches / %d goals", stats.TotalMatches, stats.GoalsScored)
	}
	if stats.Wins != 0 || stats.Losses != 0 {
		t.Errorf("draw must not count as win or loss, got %d/%d", stats.Wins, stats.Losses)
	}
}

func TestStatsMVPIndependentOfTeam(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	svc := NewStatsService(db, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	player := testhelpers.CreateUser(t, db, "bo")

	seedFinishedMatch(t, svc, creator, player, 3, 1, models.TeamNone, 2, &player.ID)

	stats, err := svc.ComputeCareerStats(player.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if stats.MVPs != 1 {
		t.Errorf("teamless MVP still counts, got %d", stats.MVPs)
	}
	if stats.Wins != 0 || stats.Losses != 0 {
		t.Errorf("teamless player never wins or loses, got %d/%d", stats.Wins, stats.Losses)
	}
	if stats.GoalsScored != 2 {
		t.Errorf("expected 2 goals, got %d", stats.GoalsScored)
	}
}

func TestStatsIgnoresUnfinishedMatches(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	svc := NewStatsService(db, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	match := testhelpers.CreateMatch(t, db, creator, true) // not finished
	if err := db.Model(&models.Play{}).
		Where("user_id = ? AND match_id = ?", creator.ID, match.ID).
		Updates(map[string]interface{}{"team": models.TeamA, "goals": 5}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	stats, err := svc.ComputeCareerStats(creator.ID)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if stats.TotalMatches != 0 || stats.GoalsScored != 0 {
		t.Errorf("unfinished matches must not count, got %d matches / %d goals", stats.TotalMatches, stats.GoalsScored)
	}
}

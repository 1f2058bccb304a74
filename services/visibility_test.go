package services

import (
	"testing"
	"time"

	"kickoff-api/models"
	"kickoff-api/testhelpers"
)

func TestPublicMatchVisibleToAnyone(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	policy := NewVisibilityPolicy(NewInviteService(db), roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	match := testhelpers.CreateMatch(t, db, creator, true)

	for _, actorID := range []uint{creator.ID, 999, 12345} {
		for _, code := range []string{"", "garbage"} {
			ok, err := policy.CanView(match, actorID, code)
			if err != nil || !ok {
				t.Errorf("public match should be visible to actor %d with code %q (ok=%v err=%v)", actorID, code, ok, err)
			}
			ok, err = policy.CanJoin(match, actorID, code)
			if err != nil || !ok {
				t.Errorf("public match should be joinable by actor %d (ok=%v err=%v)", actorID, ok, err)
			}
		}
	}
}

func TestPrivateMatchNeedsInviteOrMembership(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	invites := NewInviteService(db)
	policy := NewVisibilityPolicy(invites, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	outsider := testhelpers.CreateUser(t, db, "bo")
	match := testhelpers.CreateMatch(t, db, creator, false)

	if ok, _ := policy.CanView(match, outsider.ID, ""); ok {
		t.Error("outsider without invite must not see a private match")
	}

	invite, err := invites.Issue(match.ID, 24)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if ok, _ := policy.CanView(match, outsider.ID, invite.Code); !ok {
		t.Error("valid invite should grant view")
	}
	if ok, _ := policy.CanJoin(match, outsider.ID, invite.Code); !ok {
		t.Error("valid invite should grant join")
	}

	// membership grants view but never join
	if ok, _ := policy.CanView(match, creator.ID, ""); !ok {
		t.Error("roster member should see the match")
	}
	if ok, _ := policy.CanJoin(match, creator.ID, ""); ok {
		t.Error("membership alone must not grant join")
	}
}

func TestInviteForOtherMatchDoesNotGrant(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	invites := NewInviteService(db)
	policy := NewVisibilityPolicy(invites, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	outsider := testhelpers.CreateUser(t, db, "bo")
	private := testhelpers.CreateMatch(t, db, creator, false)
	other := testhelpers.CreateMatch(t, db, creator, false)

	invite, err := invites.Issue(other.ID, 24)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if ok, _ := policy.CanView(private, outsider.ID, invite.Code); ok {
		t.Error("an invite is bound to its match, it must not open others")
	}
}

func TestExpiredInviteDoesNotGrant(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	invites := NewInviteService(db)
	policy := NewVisibilityPolicy(invites, roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	outsider := testhelpers.CreateUser(t, db, "bo")
	match := testhelpers.CreateMatch(t, db, creator, false)

	expired := models.InviteLink{
		MatchID: match.ID, Code: "cccccccccccccccccccccccccccccccc",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if ok, _ := policy.CanView(match, outsider.ID, expired.Code); ok {
		t.Error("expired invite must not grant view")
	}
}

func TestCanEditIsCreatorOnly(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	roster := NewRosterService(db)
	policy := NewVisibilityPolicy(NewInviteService(db), roster)

	creator := testhelpers.CreateUser(t, db, "ana")
	member := testhelpers.CreateUser(t, db, "bo")
	match := testhelpers.CreateMatch(t, db, creator, true)
	if _, err := roster.Join(member.ID, match.ID); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if !policy.CanEdit(match, creator.ID) {
		t.Error("creator should be allowed to edit")
	}
	if policy.CanEdit(match, member.ID) {
		t.Error("plain member must not edit")
	}
}

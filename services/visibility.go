package services

import (
	"errors"

	"kickoff-api/models"
)

// VisibilityPolicy decides whether an actor may see or join a match.
// It only reads; callers act on the answer.
type VisibilityPolicy struct {
	Invites *InviteService
	Roster  *RosterService
}

func NewVisibilityPolicy(invites *InviteService, roster *RosterService) *VisibilityPolicy {
	return &VisibilityPolicy{Invites: invites, Roster: roster}
}

// CanView checks, in order: public match, valid invite code for this
// match, existing roster membership. First hit wins; no hit is a deny.
func (p *VisibilityPolicy) CanView(match *models.Match, actorID uint, inviteCode string) (bool, error) {
	ok, err := p.publicOrInvited(match, inviteCode)
	if err != nil || ok {
		return ok, err
	}
	return p.Roster.IsMember(actorID, match.ID)
}

// CanJoin is CanView minus the membership rule: already being on the
// roster grants reading the match, not joining it again.
func (p *VisibilityPolicy) CanJoin(match *models.Match, actorID uint, inviteCode string) (bool, error) {
	return p.publicOrInvited(match, inviteCode)
}

func (p *VisibilityPolicy) publicOrInvited(match *models.Match, inviteCode string) (bool, error) {
	if match.IsPublic {
		return true, nil
	}
	if inviteCode != "" {
		invite, err := p.Invites.Resolve(inviteCode)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return false, err
		}
		if invite != nil && invite.MatchID == match.ID {
			return true, nil
		}
	}
	return false, nil
}

// CanEdit guards match mutation: only the creator may update or delete a
// match, reassign teams, or record goals.
func (p *VisibilityPolicy) CanEdit(match *models.Match, actorID uint) bool {
	return match.CreatorID == actorID
}

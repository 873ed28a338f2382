package lobby

import (
	"errors"
	"strings"
)

var (
	ErrNotInvited      = errors.New("user was not invited to game")
	ErrAlreadyAnswered = errors.New("invitation already answered")
)

// Invitation tracks the answers to a host's invites. A decline only excludes
// that invitee; the game goes ahead with whoever accepted.
type Invitation struct {
	GameID     string
	HostUserID string
	Invitees   []string

	answers map[string]bool
}

func newInvitation(gameID, hostUserID string, invitees []string) *Invitation {
	i := &Invitation{
		GameID:     gameID,
		HostUserID: hostUserID,
		answers:    make(map[string]bool, len(invitees)),
	}

	seen := make(map[string]struct{}, len(invitees))
	for _, displayName := range invitees {
		k := strings.ToLower(displayName)
		if _, dup := seen[k]; dup || k == "" {
			continue
		}
		seen[k] = struct{}{}
		i.Invitees = append(i.Invitees, displayName)
	}

	return i
}

func (i *Invitation) Invited(displayName string) bool {
	for _, invitee := range i.Invitees {
		if strings.EqualFold(invitee, displayName) {
			return true
		}
	}
	return false
}

func (i *Invitation) Answered(displayName string) bool {
	_, ok := i.answers[strings.ToLower(displayName)]
	return ok
}

func (i *Invitation) answer(displayName string, accepted bool) error {
	if !i.Invited(displayName) {
		return ErrNotInvited
	}

	if i.Answered(displayName) {
		return ErrAlreadyAnswered
	}

	i.answers[strings.ToLower(displayName)] = accepted
	return nil
}

// rename moves an invitee, and any answer they gave, to a new display name.
func (i *Invitation) rename(oldDisplayName, newDisplayName string) bool {
	for n, invitee := range i.Invitees {
		if !strings.EqualFold(invitee, oldDisplayName) {
			continue
		}

		i.Invitees[n] = newDisplayName

		if accepted, ok := i.answers[strings.ToLower(oldDisplayName)]; ok {
			delete(i.answers, strings.ToLower(oldDisplayName))
			i.answers[strings.ToLower(newDisplayName)] = accepted
		}
		return true
	}
	return false
}

// Complete reports whether every invitee has answered.
func (i *Invitation) Complete() bool {
	return len(i.answers) == len(i.Invitees)
}

func (i *Invitation) Accepted() int {
	count := 0
	for _, accepted := range i.answers {
		if accepted {
			count++
		}
	}
	return count
}

func (i *Invitation) Pending() []string {
	var pending []string
	for _, invitee := range i.Invitees {
		if !i.Answered(invitee) {
			pending = append(pending, invitee)
		}
	}
	return pending
}

// Package access decides whether category content may be released to a
// user: admin bypass, otherwise a membership gate over all registered
// mandatory channels.
package access

import (
	"log"

	"github.com/arashpm/uploadmaster/internal/models"
)

// MembershipChecker reports a user's live membership status in a channel.
type MembershipChecker interface {
	MemberStatus(channelID string, userID int64) (string, error)
}

// ChannelLister supplies the current set of mandatory channels.
type ChannelLister interface {
	List() ([]models.Channel, error)
}

// Decision is the outcome of an access check. When not granted, Missing
// carries every channel the user has not joined, for UI presentation.
type Decision struct {
	Granted bool
	Missing []models.Channel
}

// joined statuses; anything else, including an unknown status, counts as
// not a member.
var joinedStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

type Evaluator struct {
	admins   map[int64]bool
	channels ChannelLister
	checker  MembershipChecker
}

func NewEvaluator(adminIDs []int64, channels ChannelLister, checker MembershipChecker) *Evaluator {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Evaluator{admins: admins, channels: channels, checker: checker}
}

// IsAdmin reports whether the user is a configured administrator.
func (e *Evaluator) IsAdmin(userID int64) bool {
	return e.admins[userID]
}

// Check evaluates the membership gate for a user. Admins are granted
// unconditionally. A failed status query fails closed for that channel
// only and the remaining channels are still evaluated. Membership can
// change at any time, so callers re-run Check from scratch on every
// recheck.
func (e *Evaluator) Check(userID int64) (Decision, error) {
	if e.admins[userID] {
		return Decision{Granted: true}, nil
	}

	channels, err := e.channels.List()
	if err != nil {
		return Decision{}, err
	}
	if len(channels) == 0 {
		return Decision{Granted: true}, nil
	}

	var missing []models.Channel
	for _, ch := range channels {
		status, err := e.checker.MemberStatus(ch.ChannelID, userID)
		if err != nil {
			log.Printf("Error checking membership in %s: %v", ch.ChannelID, err)
			missing = append(missing, ch)
			continue
		}
		if !joinedStatuses[status] {
			missing = append(missing, ch)
		}
	}
	if len(missing) > 0 {
		return Decision{Missing: missing}, nil
	}
	return Decision{Granted: true}, nil
}

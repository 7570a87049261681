// Package ledger tracks per-user interaction state: which items a user has
// seen and which they liked. The ledger personalizes the feed by filtering
// already-seen items out of ranked results.
package ledger

import (
	"context"

	"github.com/pkg/errors"
)

// Action is an interaction kind.
type Action string

const (
	// ActionLike marks an item seen and liked.
	ActionLike Action = "like"
	// ActionSkip marks an item seen without liking it.
	ActionSkip Action = "skip"
)

// ParseAction validates a raw action string.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionLike:
		return ActionLike, nil
	case ActionSkip:
		return ActionSkip, nil
	default:
		return "", errors.Errorf("unknown action %q, expected %q or %q", raw, ActionLike, ActionSkip)
	}
}

// UserStats is a point-in-time summary of one user's sets.
type UserStats struct {
	TotalSeen  int
	TotalLiked int
}

// Ledger is the per-user interaction store. Sessions are created lazily on
// first reference and grow monotonically: seen and liked sets never shrink.
// The liked set is always a subset of the seen set.
//
// Recording does not validate links against the catalog; recording is
// link-identity-based, not existence-based.
type Ledger interface {
	// Record marks link as seen for userID, and liked too when action is
	// ActionLike. Idempotent: repeating the same call leaves state unchanged.
	Record(ctx context.Context, userID, link string, action Action) (UserStats, error)

	// FilterSeen returns the links the user has not seen, preserving order.
	// An unknown user sees everything.
	FilterSeen(ctx context.Context, userID string, links []string) []string

	// Stats returns the current set sizes for a user. Useful for watching
	// unbounded seen-set growth on long-lived processes.
	Stats(ctx context.Context, userID string) UserStats
}

package ledger

import (
	"context"
	"sync"
)

// userState holds one user's sets. Invariant: liked ⊆ seen.
type userState struct {
	seen  map[string]struct{}
	liked map[string]struct{}
}

// MemoryLedger is the in-memory Ledger implementation. State lives for the
// process's uptime. A single lock over the whole ledger is enough at this
// scale; set union is commutative, so concurrent records for the same
// user/link both land.
type MemoryLedger struct {
	mu    sync.RWMutex
	users map[string]*userState
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		users: make(map[string]*userState),
	}
}

func (l *MemoryLedger) Record(ctx context.Context, userID, link string, action Action) (UserStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.users[userID]
	if !ok {
		state = &userState{
			seen:  make(map[string]struct{}),
			liked: make(map[string]struct{}),
		}
		l.users[userID] = state
	}

	state.seen[link] = struct{}{}
	if action == ActionLike {
		state.liked[link] = struct{}{}
	}

	return UserStats{
		TotalSeen:  len(state.seen),
		TotalLiked: len(state.liked),
	}, nil
}

func (l *MemoryLedger) FilterSeen(ctx context.Context, userID string, links []string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state, ok := l.users[userID]
	if !ok {
		return links
	}

	unseen := make([]string, 0, len(links))
	for _, link := range links {
		if _, seen := state.seen[link]; !seen {
			unseen = append(unseen, link)
		}
	}
	return unseen
}

func (l *MemoryLedger) Stats(ctx context.Context, userID string) UserStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state, ok := l.users[userID]
	if !ok {
		return UserStats{}
	}
	return UserStats{
		TotalSeen:  len(state.seen),
		TotalLiked: len(state.liked),
	}
}

var _ Ledger = (*MemoryLedger)(nil)

package reservation

import (
	"context"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
)

// Committer writes validated seat keys to the store with a conditional update.
type Committer struct {
	store domain.SessionStore
}

// NewCommitter returns a Committer that writes through store.
func NewCommitter(store domain.SessionStore) *Committer {
	return &Committer{store: store}
}

// Commit re-reads the session, rejects keys that became taken since
// validation and then issues the conditional write. A write that modifies
// nothing is a lost race.
func (c *Committer) Commit(ctx context.Context, filmID, sessionID string, keys []string) error {
	session, err := c.store.GetSession(ctx, filmID, sessionID)
	if err != nil {
		return sessionLookupError(sessionID, err)
	}

	taken := make(map[string]struct{}, len(session.Taken))
	for _, key := range session.Taken {
		taken[key] = struct{}{}
	}

	for _, key := range keys {
		if _, ok := taken[key]; ok {
			return domain.NewCommitRaceLostError()
		}
	}

	modified, err := c.store.AddTakenSeats(ctx, filmID, sessionID, keys)
	if err != nil {
		return domain.NewStoreUnavailableError(err)
	}

	if !modified {
		return domain.NewCommitRaceLostError()
	}

	return nil
}

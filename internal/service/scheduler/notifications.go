package scheduler

import (
	"context"
)

// FeedSweeper drops expired XP notifications.
type FeedSweeper interface {
	Sweep()
}

// runNotificationSweep prunes the in-memory feed so users who never poll
// again do not keep their entries forever.
func (s *Service) runNotificationSweep(_ context.Context) error {
	s.feed.Sweep()
	return nil
}

package runtime

import (
	"context"
	"time"
)

// DefaultSettle is the quiet period Sync waits for before rebuilding.
const DefaultSettle = 150 * time.Millisecond

// Sync rebuilds the graph whenever a Watchable store reports an external
// change. Notifications arriving within settle of each other are coalesced
// into one rebuild. Rebuild failures are logged and the previous graph kept.
// Sync returns when ctx is done or the store stops watching.
func (e *Engine) Sync(ctx context.Context, settle time.Duration) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			pending := map[string]struct{}{id: {}}
			if !e.settle(ctx, changes, settle, pending) {
				return nil
			}
			ids := make([]string, 0, len(pending))
			for id := range pending {
				ids = append(ids, id)
			}
			e.logger.InfoContext(ctx, "external change detected", "units", ids)
			if _, err := e.Refresh(ctx); err != nil {
				e.logger.ErrorContext(ctx, "refresh after external change failed", "error", err)
			}
		}
	}
}

// settle collects notifications until none arrives for d. It reports false
// when ctx is done or the channel closed.
func (e *Engine) settle(ctx context.Context, changes <-chan string, d time.Duration, pending map[string]struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case id, ok := <-changes:
			if !ok {
				return false
			}
			pending[id] = struct{}{}
			timer.Reset(d)
		case <-timer.C:
			return true
		}
	}
}

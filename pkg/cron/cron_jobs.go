package cron

import (
	"context"
	"tenpo_transactions/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
)

// Revalidator refetches cached data that has gone stale.
type Revalidator interface {
	Revalidate(ctx context.Context) error
}

// SessionPruner drops page sessions nobody has used for a while.
type SessionPruner interface {
	Prune(idle time.Duration) int
}

const (
	revalidateTimeout = 30 * time.Second

	pruneSchedule = "@every 10m"
	SessionIdle   = 30 * time.Minute
)

func StartCronJob(schedule string, r Revalidator, sessions SessionPruner) (*cron.Cron, error) {
	c := cron.New()

	// Keeps the cached transaction list warm between page loads
	_, err := c.AddFunc(schedule, func() {
		if err := RevalidateTransactions(r); err != nil {
			utils.Logger.Errorf("Cron job failed to revalidate transactions: %v", err)
		}
	})
	if err != nil {
		return nil, utils.ErrorHandler(err, "Failed to schedule transaction revalidation job")
	}

	// Forgets browsers that went away so their page state does not pile up
	_, err = c.AddFunc(pruneSchedule, func() {
		PruneSessions(sessions)
	})
	if err != nil {
		return nil, utils.ErrorHandler(err, "Failed to schedule session pruning job")
	}

	c.Start()
	utils.Logger.Infof("Cron jobs started (transaction revalidation %s)", schedule)
	return c, nil
}

// -------------------------------------------------------------
// Refetch the transaction list when it is stale
// -------------------------------------------------------------
func RevalidateTransactions(r Revalidator) error {
	ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
	defer cancel()

	return r.Revalidate(ctx)
}

// -------------------------------------------------------------
// Drop page sessions idle for longer than SessionIdle
// -------------------------------------------------------------
func PruneSessions(sessions SessionPruner) int {
	removed := sessions.Prune(SessionIdle)
	if removed > 0 {
		utils.Logger.Infof("🧹 Pruned %d idle page sessions", removed)
	}
	return removed
}

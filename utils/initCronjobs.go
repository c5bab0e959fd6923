package utils

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tagserver/comm"
)

// CronCleaner runs the periodic maintenance jobs. Sessions disconnected past
// the grace window are reclaimed hourly; reconnects past the window get a
// fresh session either way, the sweep only frees the memory.
func CronCleaner(clients *comm.ClientManager, logger *zap.Logger) {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		logger.Info("Sweeping stale client sessions")
		clients.Sweep()
	})

	c.Start()
}

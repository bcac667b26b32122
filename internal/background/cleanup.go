package background

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper deletes expired sessions.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// RecoverySweeper deletes expired or consumed recovery tokens.
type RecoverySweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically reclaims expired sessions and recovery tokens.
// Expiry is enforced on every read, so this loop is storage hygiene, not a
// correctness mechanism.
type CleanupManager struct {
	sessions SessionSweeper
	recovery RecoverySweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	sessions SessionSweeper,
	recovery RecoverySweeper,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		sessions: sessions,
		recovery: recovery,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sessions, err := cm.sessions.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired sessions", slog.Any("error", err))
	} else if sessions > 0 {
		cm.logger.Info("expired sessions swept", slog.Int64("rows_deleted", sessions))
	}

	tokens, err := cm.recovery.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired recovery tokens", slog.Any("error", err))
	} else if tokens > 0 {
		cm.logger.Info("expired recovery tokens swept", slog.Int64("rows_deleted", tokens))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

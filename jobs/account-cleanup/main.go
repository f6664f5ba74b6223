package main

import (
	"context"
	"log/slog"
	"time"
)

func main() {
	slog.Info("Starting account cleanup job")
	start := time.Now()

	cleanUpUnverifiedUsers()
	pruneExpiredRefreshTokens()

	slog.Info("Account cleanup job completed", slog.Duration("duration", time.Since(start)))
}

func cleanUpUnverifiedUsers() {
	slog.Debug("Start cleaning up unverified users")

	expiredBefore := time.Now().Add(-conf.CleanupConfig.DeleteUnverifiedUsersAfter).Unix()
	count, err := accountUserDBService.DeleteUnverifiedUsers(context.Background(), expiredBefore)
	if err != nil {
		slog.Error("Error cleaning up unverified users", slog.String("error", err.Error()))
		return
	}

	slog.Info("Clean up unverified users finished", slog.Int("count", int(count)))
}

func pruneExpiredRefreshTokens() {
	slog.Debug("Start pruning expired refresh tokens")

	count, err := accountUserDBService.PruneExpiredRefreshTokens(context.Background(), time.Now().Unix())
	if err != nil {
		slog.Error("Error pruning expired refresh tokens", slog.String("error", err.Error()))
		return
	}

	slog.Info("Pruning expired refresh tokens finished", slog.Int("modifiedAccounts", int(count)))
}

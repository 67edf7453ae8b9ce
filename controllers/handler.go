package controllers

import (
	"time"

	"hackerranker-backend/leaderboard"
	"hackerranker-backend/roster"
	"hackerranker-backend/updater"
)

// Handler bundles the injected collaborators for the HTTP layer.
type Handler struct {
	Members   roster.Repository
	Snapshots leaderboard.SnapshotRepository
	Ranking   *leaderboard.Service
	Fetcher   updater.ScoreFetcher
	Updater   *updater.Updater
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

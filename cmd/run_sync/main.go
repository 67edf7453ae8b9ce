package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"hackerranker-backend/database"
	"hackerranker-backend/leaderboard"
	"hackerranker-backend/providers"
	"hackerranker-backend/roster"
	"hackerranker-backend/updater"

	"github.com/joho/godotenv"
)

// One-shot synchronization run for operational use (cron, manual recovery).
func main() {
	if os.Getenv("RENDER") == "" {
		_ = godotenv.Load()
	}

	var (
		memberList = flag.String("members", "", "Comma-separated live member ids, or @path to a file with one id per line")
		devMode    = flag.Bool("dev", false, "Sync without roster reconciliation")
	)
	flag.Parse()

	ids, err := parseMemberIDs(*memberList)
	if err != nil {
		log.Fatal(err)
	}
	if len(ids) == 0 && !*devMode {
		log.Fatal("--members is required outside dev mode")
	}

	db, err := database.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	members := roster.NewPostgresRepository(db)
	snapshots := leaderboard.NewPostgresRepository(db)
	fetcher := providers.NewClient(os.Getenv("RM_API_KEY"))
	scoreUpdater := updater.New(members, snapshots, fetcher, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := scoreUpdater.SyncAll(ctx, ids, *devMode)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	fmt.Printf("Synced %d members (activated %d, deactivated %d, deleted %d, errors %d) in %.2fs\n",
		summary.Synced, summary.Activated, summary.Deactivated, summary.Deleted,
		len(summary.Errors), summary.Duration.Seconds())
	for _, memberErr := range summary.Errors {
		fmt.Printf("  member %d: %s\n", memberErr.MemberID, memberErr.Error)
	}
}

func parseMemberIDs(value string) ([]int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var parts []string
	if strings.HasPrefix(value, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("read member list: %w", err)
		}
		parts = strings.Fields(string(data))
	} else {
		parts = strings.Split(value, ",")
	}

	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid member id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

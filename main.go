package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"hackerranker-backend/controllers"
	"hackerranker-backend/database"
	"hackerranker-backend/leaderboard"
	"hackerranker-backend/mail"
	"hackerranker-backend/providers"
	"hackerranker-backend/roster"
	"hackerranker-backend/routes"
	"hackerranker-backend/updater"
)

func main() {
	// Load env vars from .env file
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("No .env file found, continuing with system environment variables")
		}
	}

	db, err := database.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL successfully!")

	port := os.Getenv("PORT")
	if port == "" {
		log.Fatal("PORT environment variable not set")
	}

	members := roster.NewPostgresRepository(db)
	snapshots := leaderboard.NewPostgresRepository(db)
	ranking := leaderboard.NewService(snapshots, members)
	fetcher := providers.NewClient(os.Getenv("RM_API_KEY"))

	var notifier updater.Notifier
	if apiKey := os.Getenv("SENDGRID_API_KEY"); apiKey != "" {
		notifier = mail.NewRunNotifier(apiKey, os.Getenv("EMAIL_FROM"), os.Getenv("OPS_EMAIL"))
	}

	scoreUpdater := updater.New(members, snapshots, fetcher, notifier)

	handler := &controllers.Handler{
		Members:   members,
		Snapshots: snapshots,
		Ranking:   ranking,
		Fetcher:   fetcher,
		Updater:   scoreUpdater,
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Setup routes
	routes.APIRoutes(app, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Scheduled sync runs only when the chat collaborator's member-list
	// endpoint is configured.
	if memberListURL := os.Getenv("MEMBER_LIST_URL"); memberListURL != "" {
		lister := updater.NewHTTPMemberLister(memberListURL)
		go runScheduledSync(ctx, scoreUpdater, lister)
	}

	go func() {
		log.Println("Server running on port " + port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Println("Shutdown error: ", err)
	}
}

func runScheduledSync(ctx context.Context, scoreUpdater *updater.Updater, lister updater.MemberLister) {
	interval := 60 * time.Minute
	if raw := os.Getenv("UPDATE_INTERVAL_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			log.Fatal("UPDATE_INTERVAL_MINUTES must be a positive integer")
		}
		interval = time.Duration(minutes) * time.Minute
	}
	devMode := os.Getenv("DEV_MODE") == "true"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := lister.LiveMemberIDs(ctx)
			if err != nil {
				log.Println("Skipping sync run: ", err)
				continue
			}
			summary, err := scoreUpdater.SyncAll(ctx, ids, devMode)
			if err != nil {
				log.Println("Sync run failed: ", err)
				continue
			}
			log.Printf("Sync run done: synced=%d activated=%d deactivated=%d deleted=%d errors=%d in %.2fs",
				summary.Synced, summary.Activated, summary.Deactivated, summary.Deleted,
				len(summary.Errors), summary.Duration.Seconds())
		}
	}
}

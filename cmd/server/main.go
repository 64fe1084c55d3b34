package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"taskboard/internal/api"
	"taskboard/internal/db"
	"taskboard/pkg/activity"
	"taskboard/pkg/agent"
	"taskboard/pkg/notify"
	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	tasks := task.NewPgStore(pool)
	users := user.NewPgStore(pool)
	feed := activity.NewBus(activity.NewPgStore(pool))

	// Ensure tables exist
	if err := tasks.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure tasks table: %v", err)
	}
	if err := users.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure users table: %v", err)
	}
	if err := feed.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure activity table: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	llm := agent.NewOpenAIClient(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_MODEL"),
		os.Getenv("OPENAI_BASE_URL"),
	)

	var notifier notify.Notifier = notify.LogNotifier{}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     host,
			Port:     envOr("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		})
	}

	ag := agent.New(tasks, users, llm, feed, notifier)
	server := api.New(tasks, users, ag, feed, api.NewAuth(users, secret))

	port := envOr("PORT", "8080")
	log.Printf("taskboard listening on :%s", port)
	if err := http.ListenAndServe(":"+port, server); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

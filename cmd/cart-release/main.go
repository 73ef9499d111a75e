package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	bookstoreclient "github.com/Apurer/go-gin-bookstore/internal/clients/http/bookstore"
)

// cart-release is a one-shot job for schedulers (cron, Kubernetes CronJob). The ledger
// lives in the API process, so the job asks the API to release idle carts.
func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	baseURL := strings.TrimSpace(os.Getenv("BOOKSTORE_API_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client, err := bookstoreclient.NewClient(baseURL, nil)
	if err != nil {
		log.Fatalf("failed to build bookstore client: %v", err)
	}

	idle := cartIdleFromEnv()
	released, err := client.ReleaseIdleCarts(ctx, idle)
	if err != nil {
		log.Fatalf("failed to release idle carts: %v", err)
	}
	logger.Info("idle cart release completed", slog.String("api", baseURL), slog.Duration("idle", idle), slog.Int("carts", released))
}

// cartIdleFromEnv returns zero when CART_IDLE_MINUTES is unset or invalid, letting the API use its own default.
func cartIdleFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("CART_IDLE_MINUTES"))
	if raw == "" {
		return 0
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

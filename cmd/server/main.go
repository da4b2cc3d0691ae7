package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lotoemploi/loto-backend/internal/config"
	"github.com/lotoemploi/loto-backend/internal/database"
	"github.com/lotoemploi/loto-backend/internal/gateway"
	"github.com/lotoemploi/loto-backend/internal/handler"
	"github.com/lotoemploi/loto-backend/internal/messenger"
	"github.com/lotoemploi/loto-backend/internal/payment"
	"github.com/lotoemploi/loto-backend/internal/queue"
	"github.com/lotoemploi/loto-backend/internal/repository"
	"github.com/lotoemploi/loto-backend/internal/router"
	queue_publisher "github.com/lotoemploi/loto-backend/internal/service"
	"github.com/lotoemploi/loto-backend/internal/ticket"
)

func main() {
	_ = godotenv.Load() // load .env if present; real env always wins

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	// Redis is optional: without it the rate limiter passes through and
	// issuance relies on the counter's compare-and-swap alone.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and issuance lock disabled")
	}

	users := repository.NewUserRepo(db)
	payments := repository.NewPaymentRepo(db)
	counter := repository.NewCounterRepo(db)

	issuer := &ticket.Issuer{Counter: counter}
	if rdb != nil {
		issuer.Lock = ticket.NewRedisLock(rdb)
	}

	svc := &payment.Service{
		Payments:    payments,
		Users:       users,
		Gateway:     gateway.New(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayAPISecret),
		Issuer:      issuer,
		Publish:     queue_publisher.PublishTicketsIssued,
		Currency:    cfg.Currency,
		CallbackURL: cfg.PublicBaseURL + "/api/confirm-payment",
		ReturnURL:   cfg.PublicBaseURL + "/api/payment-return",
		CancelURL:   cfg.ErrorPageURL,
	}

	// Background notification consumer: paid events -> WhatsApp.
	wa := messenger.New(cfg.WhatsAppBaseURL, cfg.WhatsAppToken, cfg.WhatsAppSender)
	go func() {
		if err := queue.StartNotificationConsumer(wa); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, rdb, router.Handlers{
		Users:    handler.NewUserHandler(users),
		Payments: handler.NewPaymentHandler(svc, cfg.StatusPageURL, cfg.ErrorPageURL),
		Webhook:  handler.NewWebhookHandler(svc),
		Admin:    handler.NewAdminHandler(cfg, payments),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
